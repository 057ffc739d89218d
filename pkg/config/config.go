package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Sentiment strategy names accepted by the config.
var knownStrategies = map[string]bool{"classifier": true, "lexicon": true}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		SlowThreshold   time.Duration `yaml:"slow_threshold"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Log struct {
		Level            string        `yaml:"level"`
		Format           string        `yaml:"format"`
		CollectTopic     string        `yaml:"collect_topic"`
		CollectInterval  time.Duration `yaml:"collect_interval"`
		CollectThreshold int           `yaml:"collect_threshold"`
	} `yaml:"log"`
	Sentry struct {
		DSN        string  `yaml:"dsn"`
		SampleRate float64 `yaml:"sample_rate"`
	} `yaml:"sentry"`
	Feeds struct {
		Primary   FeedConfig `yaml:"primary"`
		Secondary FeedConfig `yaml:"secondary"`
		Watchlist []string   `yaml:"watchlist"`
	} `yaml:"feeds"`
	Providers struct {
		Timeout       time.Duration  `yaml:"timeout"`
		CoinGecko     ProviderConfig `yaml:"coingecko"`
		CoinMarketCap ProviderConfig `yaml:"coinmarketcap"`
		CryptoPanic   ProviderConfig `yaml:"cryptopanic"`
		Alternative   ProviderConfig `yaml:"alternative"`
		Yahoo         ProviderConfig `yaml:"yahoo"`
	} `yaml:"providers"`
	Sentiment struct {
		DefaultStrategy string `yaml:"default_strategy"`
		NewsStrategy    string `yaml:"news_strategy"`
		HotStrategy     string `yaml:"hot_strategy"`
	} `yaml:"sentiment"`
	Cache struct {
		Retention       time.Duration `yaml:"retention"`
		MemoryMaxSize   int           `yaml:"memory_max_size"`
		MemoryTTL       time.Duration `yaml:"memory_ttl"`
		CleanupInterval time.Duration `yaml:"cleanup_interval"`
		TTL             struct {
			Coins     time.Duration `yaml:"coins"`
			FearGreed time.Duration `yaml:"fear_greed"`
			VIX       time.Duration `yaml:"vix"`
			Sentiment time.Duration `yaml:"sentiment"`
			News      time.Duration `yaml:"news"`
		} `yaml:"ttl"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Topics       struct {
			Market     string `yaml:"market"`
			ScoredNews string `yaml:"scored_news"`
			RawNews    string `yaml:"raw_news"`
		} `yaml:"topics"`
		Producer struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
			BufferSize   int           `yaml:"buffer_size"`
		} `yaml:"producer"`
		Consumer struct {
			Enabled    bool          `yaml:"enabled"`
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
}

// FeedConfig configures one market feed.
type FeedConfig struct {
	Provider      string        `yaml:"provider"`
	Interval      time.Duration `yaml:"interval"`
	Timeout       time.Duration `yaml:"timeout"`
	DefaultSymbol string        `yaml:"default_symbol"`
	Window        time.Duration `yaml:"window"`
	Bucket        time.Duration `yaml:"bucket"`
}

// ProviderConfig configures one upstream HTTP API.
type ProviderConfig struct {
	BaseURL       string `yaml:"base_url"`
	APIKey        string `yaml:"api_key"`
	RatePerMinute int    `yaml:"rate_per_minute"`
	Burst         int    `yaml:"burst"`
}

// envOverrides lists settings that may come from the environment or a
// .env file. Empty values leave the YAML setting untouched.
type envOverrides struct {
	Environment      string   `envconfig:"APP_ENV"`
	LogLevel         string   `envconfig:"LOG_LEVEL"`
	Port             int      `envconfig:"PORT"`
	SentryDSN        string   `envconfig:"SENTRY_DSN"`
	CoinGeckoKey     string   `envconfig:"COINGECKO_API_KEY"`
	CoinMarketCapKey string   `envconfig:"COINMARKETCAP_API_KEY"`
	CryptoPanicKey   string   `envconfig:"CRYPTOPANIC_API_KEY"`
	DefaultStrategy  string   `envconfig:"SENTIMENT_STRATEGY"`
	RedisAddr        string   `envconfig:"REDIS_ADDR"`
	RedisPassword    string   `envconfig:"REDIS_PASSWORD"`
	KafkaEnabled     *bool    `envconfig:"KAFKA_ENABLED"`
	KafkaBrokers     []string `envconfig:"KAFKA_BROKERS"`
	Watchlist        []string `envconfig:"WATCHLIST"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML, then applies a .env file (if
// present) and environment variable overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	c.apply(env)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) apply(env envOverrides) {
	setString(&c.Environment, env.Environment)
	setString(&c.Log.Level, env.LogLevel)
	if env.Port > 0 {
		c.Server.Port = env.Port
	}
	setString(&c.Sentry.DSN, env.SentryDSN)
	setString(&c.Providers.CoinGecko.APIKey, env.CoinGeckoKey)
	setString(&c.Providers.CoinMarketCap.APIKey, env.CoinMarketCapKey)
	setString(&c.Providers.CryptoPanic.APIKey, env.CryptoPanicKey)
	setString(&c.Sentiment.DefaultStrategy, env.DefaultStrategy)
	setString(&c.Cache.Redis.Addr, env.RedisAddr)
	setString(&c.Cache.Redis.Password, env.RedisPassword)
	if env.KafkaEnabled != nil {
		c.Kafka.Enabled = *env.KafkaEnabled
	}
	if len(env.KafkaBrokers) > 0 {
		c.Kafka.Brokers = env.KafkaBrokers
	}
	if len(env.Watchlist) > 0 {
		c.Feeds.Watchlist = env.Watchlist
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Default returns the configuration used for any key the YAML file omits.
func Default() *Config {
	c := &Config{Environment: "development"}

	c.Server.Host = "0.0.0.0"
	c.Server.Port = 8080
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.WriteTimeout = 10 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Server.SlowThreshold = 2 * time.Second
	c.Server.CORSOrigins = []string{"*"}

	c.Log.Level = "info"
	c.Log.Format = "json"
	c.Log.CollectInterval = 30 * time.Second
	c.Log.CollectThreshold = 100

	c.Feeds.Primary = FeedConfig{
		Provider:      "coingecko",
		Interval:      15 * time.Minute,
		Timeout:       5 * time.Second,
		DefaultSymbol: "bitcoin",
		Window:        24 * time.Hour,
		Bucket:        15 * time.Minute,
	}
	c.Feeds.Secondary = FeedConfig{
		Provider:      "coinmarketcap",
		Interval:      time.Minute,
		Timeout:       5 * time.Second,
		DefaultSymbol: "BTC",
		Window:        24 * time.Hour,
		Bucket:        15 * time.Minute,
	}

	c.Providers.Timeout = 5 * time.Second
	c.Providers.CoinGecko = ProviderConfig{BaseURL: "https://api.coingecko.com/api/v3", RatePerMinute: 30, Burst: 5}
	c.Providers.CoinMarketCap = ProviderConfig{BaseURL: "https://pro-api.coinmarketcap.com", RatePerMinute: 30, Burst: 5}
	c.Providers.CryptoPanic = ProviderConfig{BaseURL: "https://cryptopanic.com/api/v1", RatePerMinute: 60, Burst: 5}
	c.Providers.Alternative = ProviderConfig{BaseURL: "https://api.alternative.me"}
	c.Providers.Yahoo = ProviderConfig{BaseURL: "https://query1.finance.yahoo.com"}

	c.Sentiment.DefaultStrategy = "classifier"
	c.Sentiment.NewsStrategy = "classifier"
	c.Sentiment.HotStrategy = "lexicon"

	c.Cache.Retention = 24 * time.Hour
	c.Cache.MemoryMaxSize = 1000
	c.Cache.MemoryTTL = 30 * time.Second
	c.Cache.CleanupInterval = time.Minute
	c.Cache.TTL.Coins = time.Minute
	c.Cache.TTL.FearGreed = 5 * time.Minute
	c.Cache.TTL.VIX = 5 * time.Minute
	c.Cache.TTL.Sentiment = 5 * time.Minute
	c.Cache.TTL.News = 2 * time.Minute
	c.Cache.Redis.Addr = "localhost:6379"
	c.Cache.Redis.Prefix = "coinpulse"

	c.Kafka.RequiredAcks = -1
	c.Kafka.Compression = "snappy"
	c.Kafka.Topics.Market = "market_updates"
	c.Kafka.Topics.ScoredNews = "scored_news"
	c.Kafka.Topics.RawNews = "raw_news"
	c.Kafka.Producer.MaxAttempts = 3
	c.Kafka.Producer.Linger = 50 * time.Millisecond
	c.Kafka.Producer.BatchSize = 100
	c.Kafka.Producer.BatchBytes = 1 << 20
	c.Kafka.Producer.WriteTimeout = 10 * time.Second
	c.Kafka.Producer.ReadTimeout = 10 * time.Second
	c.Kafka.Producer.BufferSize = 256
	c.Kafka.Consumer.GroupID = "coinpulse-scorer"
	c.Kafka.Consumer.Workers = 4
	c.Kafka.Consumer.BufferSize = 100
	c.Kafka.Consumer.RetryMax = 3
	c.Kafka.Consumer.BackoffMin = 100 * time.Millisecond
	c.Kafka.Consumer.BackoffMax = 5 * time.Second
	c.Kafka.Consumer.MinBytes = 1
	c.Kafka.Consumer.MaxBytes = 10 << 20

	return c
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("log.format must be 'json' or 'console', got '%s'", c.Log.Format)
	}
	for name, s := range map[string]string{
		"sentiment.default_strategy": c.Sentiment.DefaultStrategy,
		"sentiment.news_strategy":    c.Sentiment.NewsStrategy,
		"sentiment.hot_strategy":     c.Sentiment.HotStrategy,
	} {
		if !knownStrategies[s] {
			return fmt.Errorf("%s must be 'classifier' or 'lexicon', got '%s'", name, s)
		}
	}
	for name, f := range map[string]FeedConfig{"feeds.primary": c.Feeds.Primary, "feeds.secondary": c.Feeds.Secondary} {
		if err := f.validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if c.Cache.Redis.Enabled && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required when redis is enabled")
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
		}
		if c.Kafka.Topics.Market == "" || c.Kafka.Topics.ScoredNews == "" {
			return fmt.Errorf("kafka.topics.market and kafka.topics.scored_news are required")
		}
		if c.Kafka.Consumer.Enabled && c.Kafka.Topics.RawNews == "" {
			return fmt.Errorf("kafka.topics.raw_news is required when the consumer is enabled")
		}
	}
	return nil
}

func (f FeedConfig) validate() error {
	switch f.Provider {
	case "coingecko", "coinmarketcap":
	default:
		return fmt.Errorf("provider must be 'coingecko' or 'coinmarketcap', got '%s'", f.Provider)
	}
	if f.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if f.Bucket <= 0 || f.Window < f.Bucket {
		return fmt.Errorf("window (%s) must be at least one bucket (%s)", f.Window, f.Bucket)
	}
	if f.Window%f.Bucket != 0 {
		return fmt.Errorf("window (%s) must be a multiple of bucket (%s)", f.Window, f.Bucket)
	}
	return nil
}
