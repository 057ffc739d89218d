package models

import "time"

// Sentiment is the polarity label of a scored text.
type Sentiment string

const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
	Neutral  Sentiment = "neutral"
)

// LabelFor maps a score in [-1,1] to a label using the ±0.1 dead zone.
func LabelFor(score float64) Sentiment {
	switch {
	case score > 0.1:
		return Positive
	case score < -0.1:
		return Negative
	default:
		return Neutral
	}
}

// VoteCounts are the engagement votes a news aggregator attaches to a post.
type VoteCounts struct {
	Positive  int `json:"positive" validate:"gte=0"`
	Negative  int `json:"negative" validate:"gte=0"`
	Important int `json:"important" validate:"gte=0"`
	Liked     int `json:"liked" validate:"gte=0"`
	Disliked  int `json:"disliked" validate:"gte=0"`
	Lol       int `json:"lol" validate:"gte=0"`
	Toxic     int `json:"toxic" validate:"gte=0"`
	Saved     int `json:"saved" validate:"gte=0"`
	Comments  int `json:"comments" validate:"gte=0"`
}

// NewsItem is the scorer input. A nil Votes counts as all-zero.
type NewsItem struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Votes       *VoteCounts `json:"votes,omitempty"`
}

// SentimentResult is produced once per analyzed item and never mutated.
type SentimentResult struct {
	Sentiment        Sentiment `json:"sentiment"`
	Score            float64   `json:"score"`
	Keywords         []string  `json:"keywords"`
	Summary          string    `json:"summary"`
	TitleSentiment   Sentiment `json:"titleSentiment"`
	ContentSentiment Sentiment `json:"contentSentiment"`
	TitleScore       float64   `json:"titleScore"`
	ContentScore     float64   `json:"contentScore"`
	Strategy         string    `json:"strategy"`
}

// NewsPost is a provider post as the API layer sees it.
type NewsPost struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	URL         string      `json:"url"`
	Source      string      `json:"source"`
	PublishedAt time.Time   `json:"publishedAt"`
	Currencies  []string    `json:"currencies"`
	ImageURL    string      `json:"imageUrl,omitempty"`
	Votes       *VoteCounts `json:"votes,omitempty"`
}

// Item returns the scorer input for the post.
func (p NewsPost) Item() NewsItem {
	return NewsItem{Title: p.Title, Description: p.Description, Votes: p.Votes}
}

// ScoredNews is a post together with its sentiment.
type ScoredNews struct {
	NewsPost
	Analysis SentimentResult `json:"analysis"`
}
