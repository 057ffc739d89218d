package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/domain/repository"
	pkgcache "CoinPulse/pkg/cache"
)

func newTestFallback(t *testing.T) (*Fallback, *time.Time) {
	t.Helper()
	store := pkgcache.NewMemoryCache(pkgcache.WithMemoryCleanup(0))
	t.Cleanup(func() { _ = store.Close() })
	now := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	f := NewFallback(store, time.Hour, nil, nil)
	f.now = func() time.Time { return now }
	return f, &now
}

func TestLoadServesFreshWithoutCallingUpstream(t *testing.T) {
	f, now := newTestFallback(t)
	ctx := context.Background()
	calls := 0
	load := func(context.Context) ([]models.IndexPoint, error) {
		calls++
		return []models.IndexPoint{{Timestamp: 1, Value: 17.5}}, nil
	}

	v, fr, err := Load(ctx, f, "vix", 5*time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, Refreshed, fr)
	assert.Equal(t, 17.5, v[0].Value)

	*now = now.Add(time.Minute)
	_, fr, err = Load(ctx, f, "vix", 5*time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, Fresh, fr)
	assert.Equal(t, 1, calls)
}

func TestLoadServesStaleOnUpstreamError(t *testing.T) {
	f, now := newTestFallback(t)
	ctx := context.Background()

	_, _, err := Load(ctx, f, "coins", time.Minute, func(context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)

	*now = now.Add(10 * time.Minute)
	v, fr, err := Load(ctx, f, "coins", time.Minute, func(context.Context) (int, error) {
		return 0, models.ErrUpstreamUnavailable
	})
	require.NoError(t, err)
	assert.Equal(t, Stale, fr)
	assert.Equal(t, 42, v)
}

func TestLoadPropagatesErrorWithoutCopy(t *testing.T) {
	f, _ := newTestFallback(t)
	_, _, err := Load(context.Background(), f, "fng", time.Minute, func(context.Context) (int, error) {
		return 0, models.ErrMalformedPayload
	})
	require.True(t, errors.Is(err, models.ErrMalformedPayload))
}

func TestLoadReturnsStaleWhileLocked(t *testing.T) {
	f, now := newTestFallback(t)
	ctx := context.Background()

	_, _, err := Load(ctx, f, "k", time.Minute, func(context.Context) (string, error) { return "old", nil })
	require.NoError(t, err)
	*now = now.Add(time.Hour - time.Second)

	ok, err := f.store.TryLock(ctx, "lock:k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	v, fr, err := Load(ctx, f, "k", time.Minute, func(context.Context) (string, error) {
		t.Fatal("upstream must not be called while another refresh holds the lock")
		return "", nil
	})
	require.NoError(t, err)
	assert.Equal(t, Stale, fr)
	assert.Equal(t, "old", v)
}

type errorKinds struct {
	repository.Metrics
	kinds []string
}

func (m *errorKinds) RecordError(kind string) { m.kinds = append(m.kinds, kind) }

func TestLoadErrorKindDropsKeyParameters(t *testing.T) {
	f, _ := newTestFallback(t)
	m := &errorKinds{}
	f.metrics = m

	fail := func(context.Context) (int, error) { return 0, models.ErrUpstreamUnavailable }
	for _, coin := range []string{"bitcoin", "junk-1", "junk-2"} {
		_, _, err := Load(context.Background(), f, pkgcache.Key("news:hot", coin, 20), time.Minute, fail)
		require.Error(t, err)
	}
	_, _, err := Load(context.Background(), f, "coins:top", time.Minute, fail)
	require.Error(t, err)

	assert.Equal(t, []string{"upstream_news_hot", "upstream_news_hot", "upstream_news_hot", "upstream_coins_top"}, m.kinds)
}
