package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter holds one token bucket per upstream. Keys without a registered
// bucket are not limited.
type Limiter struct {
	mu sync.RWMutex
	m  map[string]*rate.Limiter
}

func New() *Limiter { return &Limiter{m: make(map[string]*rate.Limiter)} }

// Register sets the budget for key in requests per minute. Burst defaults to
// a tenth of the per-minute budget, at least one.
func (l *Limiter) Register(key string, perMinute, burst int) {
	if perMinute <= 0 {
		return
	}
	if burst <= 0 {
		burst = perMinute / 10
	}
	if burst < 1 {
		burst = 1
	}
	l.mu.Lock()
	l.m[key] = rate.NewLimiter(rate.Limit(float64(perMinute)/60), burst)
	l.mu.Unlock()
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.m[key]
}

// Wait blocks until key may issue one request or ctx is done.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	lim := l.get(key)
	if lim == nil {
		return nil
	}
	if err := lim.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter %s: %w", key, err)
	}
	return nil
}

// Allow reports whether one token can be consumed for key right now.
func (l *Limiter) Allow(key string) bool {
	lim := l.get(key)
	return lim == nil || lim.Allow()
}
