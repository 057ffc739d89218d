package repository

import (
	"context"

	"CoinPulse/internal/domain/models"
)

// MarketProvider fetches one normalized snapshot plus raw OHLC ticks for a coin.
type MarketProvider interface {
	Fetch(ctx context.Context, symbol string) (models.MarketData, error)
}

// CoinLister returns the top coins by market cap.
type CoinLister interface {
	TopCoins(ctx context.Context) ([]models.CoinListing, error)
}

type NewsProvider interface {
	Posts(ctx context.Context, currency string, limit int) ([]models.NewsPost, error)
}

type FearGreedProvider interface {
	FearGreed(ctx context.Context, limit int) (models.FearGreedIndex, error)
}

type VIXProvider interface {
	VIX(ctx context.Context) ([]models.IndexPoint, error)
}

// Publisher ships domain events to the message bus.
type Publisher interface {
	PublishMarket(ctx context.Context, ev *models.MarketEvent) error
	PublishScoredNews(ctx context.Context, news *models.ScoredNews) error
	Close() error
}

type Metrics interface {
	RecordPoll(feed, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	SetSubscribers(feed, symbol string, n int)
	RecordSentiment(strategy string, label models.Sentiment)
	RecordMessageSent(backend, topic string)
}
