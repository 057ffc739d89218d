package di

import (
	"fmt"

	"CoinPulse/internal/domain/repository"
	"CoinPulse/internal/handler/api"
	mid "CoinPulse/internal/middleware"
	internalrepo "CoinPulse/internal/repository"
	"CoinPulse/internal/service/alternative"
	svccache "CoinPulse/internal/service/cache"
	"CoinPulse/internal/service/coingecko"
	"CoinPulse/internal/service/coinmarketcap"
	"CoinPulse/internal/service/cryptopanic"
	"CoinPulse/internal/service/ratelimit"
	"CoinPulse/internal/service/yahoo"
	"CoinPulse/internal/services/marketfeed"
	"CoinPulse/internal/services/sentiment"
	"CoinPulse/internal/usecase"
	pkgcache "CoinPulse/pkg/cache"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	pkgkafka "CoinPulse/pkg/kafka"
	applogger "CoinPulse/pkg/logger"
	"CoinPulse/pkg/metrics"
	"CoinPulse/pkg/server"
	"CoinPulse/pkg/tracker"
)

// MarketFeeds groups the two configured feeds.
type MarketFeeds struct {
	Primary   *marketfeed.Feed
	Secondary *marketfeed.Feed
}

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: "stdout",
	})
}

// ProvideTracker creates the Sentry tracker, a no-op one without DSN.
func ProvideTracker(cfg *config.Config) (tracker.Tracker, error) {
	t, err := tracker.New(tracker.Config{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Environment,
		SampleRate:  cfg.Sentry.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	return t, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New(nil)
}

// ProvideCacheStore returns a Redis backed layered cache when Redis is
// enabled, a process local one otherwise.
func ProvideCacheStore(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return pkgcache.NewMemoryCache(
			pkgcache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize),
			pkgcache.WithMemoryCleanup(cfg.Cache.CleanupInterval),
		), nil
	}
	redis, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisAddr(cfg.Cache.Redis.Addr),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
		pkgcache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(redis,
		pkgcache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize),
		pkgcache.WithLayeredMemoryTTL(cfg.Cache.MemoryTTL),
	), nil
}

// ProvideFallbackCache wraps the store with stale-on-error semantics.
func ProvideFallbackCache(store pkgcache.Service, cfg *config.Config, logger *applogger.Logger, m repository.Metrics) *svccache.Fallback {
	return svccache.NewFallback(store, cfg.Cache.Retention, logger, m)
}

// ProvideLimiter registers the per-minute budget of every upstream.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	l := ratelimit.New()
	p := cfg.Providers
	l.Register(coingecko.Name, p.CoinGecko.RatePerMinute, p.CoinGecko.Burst)
	l.Register(coinmarketcap.Name, p.CoinMarketCap.RatePerMinute, p.CoinMarketCap.Burst)
	l.Register(cryptopanic.Name, p.CryptoPanic.RatePerMinute, p.CryptoPanic.Burst)
	l.Register(alternative.Name, p.Alternative.RatePerMinute, p.Alternative.Burst)
	l.Register(yahoo.Name, p.Yahoo.RatePerMinute, p.Yahoo.Burst)
	return l
}

func ProvideCoinGecko(cfg *config.Config, l *ratelimit.Limiter) *coingecko.Client {
	p := cfg.Providers.CoinGecko
	return coingecko.New(p.BaseURL, p.APIKey, cfg.Providers.Timeout, l)
}

// ProvideCoinMarketCap creates the quotes client. Candles come from CoinGecko.
func ProvideCoinMarketCap(cfg *config.Config, l *ratelimit.Limiter, cg *coingecko.Client) *coinmarketcap.Client {
	p := cfg.Providers.CoinMarketCap
	return coinmarketcap.New(p.BaseURL, p.APIKey, cfg.Providers.Timeout, l, cg)
}

func ProvideCryptoPanic(cfg *config.Config, l *ratelimit.Limiter) *cryptopanic.Client {
	p := cfg.Providers.CryptoPanic
	return cryptopanic.New(p.BaseURL, p.APIKey, cfg.Providers.Timeout, l)
}

func ProvideAlternative(cfg *config.Config, l *ratelimit.Limiter) *alternative.Client {
	return alternative.New(cfg.Providers.Alternative.BaseURL, cfg.Providers.Timeout, l)
}

func ProvideYahoo(cfg *config.Config, l *ratelimit.Limiter) *yahoo.Client {
	return yahoo.New(cfg.Providers.Yahoo.BaseURL, cfg.Providers.Timeout, l)
}

// ProvideMarketFeeds builds the primary and secondary feeds from config.
func ProvideMarketFeeds(
	cfg *config.Config,
	cg *coingecko.Client,
	cmc *coinmarketcap.Client,
	logger *applogger.Logger,
	m repository.Metrics,
) (*MarketFeeds, error) {
	byName := map[string]repository.MarketProvider{
		coingecko.Name:     cg,
		coinmarketcap.Name: cmc,
	}
	build := func(name string, fc config.FeedConfig) (*marketfeed.Feed, error) {
		p, ok := byName[fc.Provider]
		if !ok {
			return nil, fmt.Errorf("feed %s: unknown provider %q", name, fc.Provider)
		}
		return marketfeed.New(p,
			marketfeed.WithName(name),
			marketfeed.WithInterval(fc.Interval),
			marketfeed.WithTimeout(fc.Timeout),
			marketfeed.WithCandles(fc.Window, fc.Bucket),
			marketfeed.WithDefaultSymbol(fc.DefaultSymbol),
			marketfeed.WithLogger(logger),
			marketfeed.WithMetrics(m),
		), nil
	}

	primary, err := build("primary", cfg.Feeds.Primary)
	if err != nil {
		return nil, err
	}
	secondary, err := build("secondary", cfg.Feeds.Secondary)
	if err != nil {
		return nil, err
	}
	return &MarketFeeds{Primary: primary, Secondary: secondary}, nil
}

func ProvideMarketUseCase(feeds *MarketFeeds) *usecase.MarketUseCase {
	return usecase.NewMarketUseCase(feeds.Primary, feeds.Secondary)
}

func ProvideIndicesUseCase(
	cfg *config.Config,
	cg *coingecko.Client,
	alt *alternative.Client,
	y *yahoo.Client,
	fb *svccache.Fallback,
) *usecase.IndicesUseCase {
	return usecase.NewIndicesUseCase(cg, alt, y, fb, usecase.IndicesTTL{
		Coins:     cfg.Cache.TTL.Coins,
		FearGreed: cfg.Cache.TTL.FearGreed,
		VIX:       cfg.Cache.TTL.VIX,
	})
}

// ProvideScorer creates the sentiment scorer with the configured default.
func ProvideScorer(cfg *config.Config, m repository.Metrics) (*sentiment.Scorer, error) {
	return sentiment.NewScorer(cfg.Sentiment.DefaultStrategy, sentiment.WithMetrics(m))
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePublisher publishes to Kafka, or drops events when it is disabled.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config, m repository.Metrics) repository.Publisher {
	if producer == nil {
		return internalrepo.NopPublisher{}
	}
	return internalrepo.NewKafkaPublisher(producer, internalrepo.Topics{
		Market:     cfg.Kafka.Topics.Market,
		ScoredNews: cfg.Kafka.Topics.ScoredNews,
	}, m)
}

func ProvideNewsUseCase(
	cfg *config.Config,
	cp *cryptopanic.Client,
	scorer *sentiment.Scorer,
	fb *svccache.Fallback,
	pub repository.Publisher,
	logger *applogger.Logger,
) *usecase.NewsUseCase {
	return usecase.NewNewsUseCase(cp, scorer, fb, pub, logger, usecase.NewsConfig{
		NewsStrategy: cfg.Sentiment.NewsStrategy,
		HotStrategy:  cfg.Sentiment.HotStrategy,
		NewsTTL:      cfg.Cache.TTL.News,
		HotTTL:       cfg.Cache.TTL.Sentiment,
	})
}

// ProvideEventPipeline buffers market events between the feeds and Kafka.
func ProvideEventPipeline(cfg *config.Config, pub repository.Publisher, m repository.Metrics, logger *applogger.Logger) *mid.EventPipeline {
	return mid.NewEventPipeline(pub, m,
		mid.WithBufferSize(cfg.Kafka.Producer.BufferSize),
		mid.WithPublishTimeout(cfg.Kafka.Producer.WriteTimeout),
		mid.WithPipelineLogger(logger),
	)
}

func ProvideWatchlist(cfg *config.Config, feeds *MarketFeeds, pipe *mid.EventPipeline, logger *applogger.Logger) *usecase.WatchlistCollector {
	return usecase.NewWatchlistCollector(feeds.Primary, cfg.Feeds.Watchlist, pipe, logger)
}

// ProvideKafkaConsumer creates the raw news consumer, or nil when disabled.
func ProvideKafkaConsumer(cfg *config.Config, logger *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.SetHook(pkgkafka.TraceHook{Logger: logger})
	return consumer, nil
}

func ProvideNewsScoringHandler(cfg *config.Config, news *usecase.NewsUseCase, m repository.Metrics) *usecase.NewsScoringHandler {
	return usecase.NewNewsScoringHandler(cfg.Kafka.Topics.RawNews, news, m)
}

func ProvideRouter(
	logger *applogger.Logger,
	market *usecase.MarketUseCase,
	indices *usecase.IndicesUseCase,
	news *usecase.NewsUseCase,
) *api.Router {
	return api.NewRouter(
		api.NewMarketHandler(logger, market),
		api.NewIndicesHandler(logger, indices),
		api.NewNewsHandler(logger, news),
	)
}

// ProvideHTTPServer creates the echo server with the API routes.
func ProvideHTTPServer(cfg *config.Config, router *api.Router, logger *applogger.Logger, t tracker.Tracker) *xhttp.Server {
	return xhttp.NewServer(router,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithCORS(cfg.Server.CORSOrigins...),
		xhttp.WithLogger(logger),
		xhttp.WithTracker(t),
	)
}

// ProvideApp creates the application server. Error logs are shipped to
// Kafka when a collect topic is configured.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	t tracker.Tracker,
	producer *pkgkafka.Producer,
	pub repository.Publisher,
	store pkgcache.Service,
	market *usecase.MarketUseCase,
	watchlist *usecase.WatchlistCollector,
	consumer *pkgkafka.Consumer,
	handler *usecase.NewsScoringHandler,
	httpServer *xhttp.Server,
) *server.App {
	if producer != nil && cfg.Log.CollectTopic != "" {
		logger.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Log.CollectInterval,
			CountThreshold: cfg.Log.CollectThreshold,
			Topic:          cfg.Log.CollectTopic,
			Publisher:      producer,
			Environment:    cfg.Environment,
		})
	}
	return server.New(server.Deps{
		Config:     cfg,
		Logger:     logger,
		Tracker:    t,
		Publisher:  pub,
		Cache:      store,
		Market:     market,
		Watchlist:  watchlist,
		Consumer:   consumer,
		Handler:    handler,
		HTTPServer: httpServer,
	})
}
