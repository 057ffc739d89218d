package sentiment

import (
	"strings"

	"CoinPulse/internal/domain/models"
)

var positiveWords = []string{
	"yükseliş", "artış", "kazanç", "büyüme", "olumlu", "güçlü", "başarı",
	"rally", "surge", "gain", "growth", "positive", "strong", "success",
	"bullish", "optimistic", "breakthrough", "support", "confident",
}

var negativeWords = []string{
	"düşüş", "kayıp", "zarar", "çöküş", "olumsuz", "zayıf", "başarısız",
	"crash", "drop", "loss", "decline", "negative", "weak", "fail",
	"bearish", "pessimistic", "breakdown", "resistance", "worried",
}

const (
	textWeight = 0.6
	voteWeight = 0.4
)

// ScoreByLexiconAndVotes blends a lexicon text score with a normalized vote
// score. The result is always within [-1,1].
func ScoreByLexiconAndVotes(text string, votes *models.VoteCounts) float64 {
	return textWeight*lexiconScore(text) + voteWeight*voteScore(votes)
}

// lexiconScore counts case-insensitive substring hits of each lexicon entry
// and returns (pos-neg)/(pos+neg), or 0 without hits.
func lexiconScore(text string) float64 {
	if text == "" {
		return 0
	}
	lower := strings.ToLower(text)

	var pos, neg int
	for _, w := range positiveWords {
		pos += strings.Count(lower, w)
	}
	for _, w := range negativeWords {
		neg += strings.Count(lower, w)
	}
	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}

// voteScore reduces the votes to their sign: -1, 0 or 1.
func voteScore(v *models.VoteCounts) float64 {
	if v == nil {
		return 0
	}
	raw := float64(v.Positive) + 0.5*float64(v.Important) + 0.3*float64(v.Liked) -
		float64(v.Negative) - 0.3*float64(v.Disliked) - 1.5*float64(v.Toxic)
	switch {
	case raw > 0:
		return 1
	case raw < 0:
		return -1
	default:
		return 0
	}
}
