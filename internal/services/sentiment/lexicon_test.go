package sentiment

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
)

func TestScoreByLexiconAndVotes(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		votes *models.VoteCounts
		want  float64
	}{
		{"no match no votes", "nothing to see", nil, 0},
		{"positive text only", "Bitcoin rally continues", nil, 0.6},
		{"negative text only", "Market crash", nil, -0.6},
		{"mixed text", "surge then drop", nil, 0},
		{"turkish lexicon", "Güçlü yükseliş", nil, 0.6},
		{"votes only", "plain", &models.VoteCounts{Positive: 3}, 0.4},
		{"toxic outweighs", "plain", &models.VoteCounts{Positive: 1, Toxic: 1}, -0.4},
		{"both", "strong gain", &models.VoteCounts{Important: 2}, 1},
		{"lol ignored", "plain", &models.VoteCounts{Lol: 10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ScoreByLexiconAndVotes(tt.text, tt.votes), 1e-9)
		})
	}
}

func TestScoreByLexiconAndVotesBounded(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	words := append(append([]string{"noise", "bitcoin"}, positiveWords...), negativeWords...)
	for i := 0; i < 500; i++ {
		text := ""
		for j := 0; j < r.Intn(12); j++ {
			text += words[r.Intn(len(words))] + " "
		}
		v := &models.VoteCounts{
			Positive:  r.Intn(1000),
			Negative:  r.Intn(1000),
			Important: r.Intn(1000),
			Liked:     r.Intn(1000),
			Disliked:  r.Intn(1000),
			Toxic:     r.Intn(1000),
		}
		got := ScoreByLexiconAndVotes(text, v)
		require.GreaterOrEqual(t, got, -1.0)
		require.LessOrEqual(t, got, 1.0)
	}
}

func TestLexiconStrategyEmptyDescription(t *testing.T) {
	res, err := NewLexiconStrategy().Analyze(context.Background(), models.NewsItem{Title: "Bullish breakthrough"})
	require.NoError(t, err)
	assert.Equal(t, "Bullish breakthrough", res.Summary)
	assert.Equal(t, models.Neutral, res.ContentSentiment)
	assert.Zero(t, res.ContentScore)
	assert.Equal(t, models.Positive, res.Sentiment)
	assert.Equal(t, StrategyLexicon, res.Strategy)
}
