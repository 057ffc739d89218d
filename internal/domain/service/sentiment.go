package service

import (
	"context"

	"CoinPulse/internal/domain/models"
)

// SentimentStrategy scores a single news item.
type SentimentStrategy interface {
	Name() string
	Analyze(ctx context.Context, item models.NewsItem) (models.SentimentResult, error)
}
