package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "environment: test\nserver:\n  port: 9090\n")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, 15*time.Minute, c.Feeds.Primary.Interval)
	assert.Equal(t, time.Minute, c.Feeds.Secondary.Interval)
	assert.Equal(t, "classifier", c.Sentiment.DefaultStrategy)
	assert.Equal(t, time.Minute, c.Cache.TTL.Coins)
}

func TestLoadRepoConfig(t *testing.T) {
	c, err := Load("../../config/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"bitcoin", "ethereum"}, c.Feeds.Watchlist)
	assert.Equal(t, 24*time.Hour, c.Feeds.Primary.Window)
}

func TestValidateRejectsUnknownStrategy(t *testing.T) {
	path := writeConfig(t, "environment: test\nsentiment:\n  default_strategy: vibes\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sentiment.default_strategy")
}

func TestValidateRejectsUnevenWindow(t *testing.T) {
	c := Default()
	c.Feeds.Primary.Window = 100 * time.Minute
	require.Error(t, c.Validate())
}

func TestValidateKafkaNeedsBrokers(t *testing.T) {
	c := Default()
	c.Kafka.Enabled = true
	require.Error(t, c.Validate())

	c.Kafka.Brokers = []string{"localhost:9092"}
	require.NoError(t, c.Validate())
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "environment: test\n")
	t.Setenv("COINGECKO_API_KEY", "cg-key")
	t.Setenv("SENTIMENT_STRATEGY", "lexicon")
	t.Setenv("WATCHLIST", "solana,cardano")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "cg-key", c.Providers.CoinGecko.APIKey)
	assert.Equal(t, "lexicon", c.Sentiment.DefaultStrategy)
	assert.Equal(t, []string{"solana", "cardano"}, c.Feeds.Watchlist)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
}

func TestLoadWithEnvRejectsInvalidOverride(t *testing.T) {
	path := writeConfig(t, "environment: test\n")
	t.Setenv("SENTIMENT_STRATEGY", "astrology")

	_, err := LoadWithEnv(path)
	require.Error(t, err)
}
