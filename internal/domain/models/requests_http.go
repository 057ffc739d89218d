package models

// Requests for the dashboard HTTP endpoints.

type MarketRequest struct {
	Symbol string `query:"symbol" json:"symbol"`
	Feed   string `query:"feed" json:"feed" default:"primary" validate:"oneof=primary secondary"`
}

type NewsRequest struct {
	Limit int `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=200"`
}

type SentimentRequest struct {
	CoinID string `query:"coinId" json:"coinId" default:"bitcoin" validate:"required"`
	Limit  int    `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=100"`
}

type AnalyzeRequest struct {
	Title       string      `json:"title" validate:"required_without=Description,max=2000"`
	Description string      `json:"description" validate:"max=20000"`
	Votes       *VoteCounts `json:"votes"`
	Strategy    string      `json:"strategy" validate:"omitempty,oneof=classifier lexicon"`
}
