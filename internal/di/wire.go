//go:build wireinject
// +build wireinject

package di

import (
	"CoinPulse/pkg/config"
	"CoinPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideTracker,
		ProvideMetrics,
		ProvideCacheStore,
		ProvideFallbackCache,

		// Upstreams
		ProvideLimiter,
		ProvideCoinGecko,
		ProvideCoinMarketCap,
		ProvideCryptoPanic,
		ProvideAlternative,
		ProvideYahoo,

		// Messaging
		ProvideKafkaProducer,
		ProvidePublisher,
		ProvideKafkaConsumer,
		ProvideEventPipeline,

		// Use cases
		ProvideMarketFeeds,
		ProvideMarketUseCase,
		ProvideIndicesUseCase,
		ProvideScorer,
		ProvideNewsUseCase,
		ProvideWatchlist,
		ProvideNewsScoringHandler,

		// HTTP
		ProvideRouter,
		ProvideHTTPServer,

		ProvideApp,
	)
	return &server.App{}, nil
}
