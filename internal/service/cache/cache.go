package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"CoinPulse/internal/domain/repository"
	pkgcache "CoinPulse/pkg/cache"
	applogger "CoinPulse/pkg/logger"
)

// Freshness tells the caller where a value came from.
type Freshness string

const (
	Fresh     Freshness = "HIT"
	Refreshed Freshness = "MISS"
	Stale     Freshness = "STALE"
)

type envelope struct {
	StoredAt time.Time       `json:"stored_at"`
	Data     json.RawMessage `json:"data"`
}

// Fallback caches upstream responses. A value younger than the fresh TTL is
// served directly; an older one triggers a reload, and when the reload fails
// the old value is served instead of the error for up to the retention period.
type Fallback struct {
	store     pkgcache.Service
	retention time.Duration
	lockTTL   time.Duration
	logger    *applogger.Logger
	metrics   repository.Metrics
	now       func() time.Time
}

// NewFallback wraps store. retention bounds how long stale copies survive.
func NewFallback(store pkgcache.Service, retention time.Duration, logger *applogger.Logger, metrics repository.Metrics) *Fallback {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	if logger == nil {
		logger = applogger.NewNop()
	}
	return &Fallback{
		store:     store,
		retention: retention,
		lockTTL:   10 * time.Second,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

// SetClock replaces the time source used to age entries.
func (f *Fallback) SetClock(now func() time.Time) { f.now = now }

// Load returns the cached value under key or calls load to refresh it. While
// another caller holds the refresh lock a stale copy is returned immediately.
func Load[T any](ctx context.Context, f *Fallback, key string, fresh time.Duration, load func(context.Context) (T, error)) (T, Freshness, error) {
	var zero T

	var env envelope
	cached := f.store.Get(ctx, key, &env) == nil
	var old T
	if cached {
		if err := json.Unmarshal(env.Data, &old); err != nil {
			cached = false
		}
	}
	if cached && f.now().Sub(env.StoredAt) < fresh {
		return old, Fresh, nil
	}

	lk := "lock:" + key
	if ok, err := f.store.TryLock(ctx, lk, f.lockTTL); err == nil && !ok && cached {
		return old, Stale, nil
	} else if err == nil && ok {
		defer func() { _ = f.store.Unlock(context.Background(), lk) }()
	}

	v, err := load(ctx)
	if err != nil {
		if f.metrics != nil {
			f.metrics.RecordError(errorKind(key))
		}
		if cached {
			f.logger.Warn("upstream failed, serving stale copy",
				applogger.String("key", key),
				applogger.Duration("age_ms", f.now().Sub(env.StoredAt)),
				applogger.Error(err))
			return old, Stale, nil
		}
		return zero, "", err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return zero, "", fmt.Errorf("encode %s: %w", key, err)
	}
	if err := f.store.Set(ctx, key, envelope{StoredAt: f.now(), Data: data}, f.retention); err != nil {
		f.logger.Warn("cache write failed", applogger.String("key", key), applogger.Error(err))
	}
	return v, Refreshed, nil
}

// errorKind reduces a cache key to its first two segments so request
// parameters such as coin ids never become metric labels.
func errorKind(key string) string {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return "upstream_" + strings.Join(parts, "_")
}
