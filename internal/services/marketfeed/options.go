package marketfeed

import (
	"time"

	"CoinPulse/internal/domain/repository"
	applogger "CoinPulse/pkg/logger"
)

// Option configures a Feed.
type Option func(*Feed)

// WithName sets the feed name, e.g. primary or secondary.
func WithName(name string) Option {
	return func(f *Feed) { f.name = name }
}

func WithClock(c Clock) Option {
	return func(f *Feed) { f.clock = c }
}

// WithInterval sets the polling period.
func WithInterval(d time.Duration) Option {
	return func(f *Feed) {
		if d > 0 {
			f.interval = d
		}
	}
}

// WithTimeout bounds a single provider fetch.
func WithTimeout(d time.Duration) Option {
	return func(f *Feed) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithCandles sets the candle window and bucket width.
func WithCandles(window, bucket time.Duration) Option {
	return func(f *Feed) {
		if bucket > 0 && window >= bucket {
			f.window, f.bucket = window, bucket
		}
	}
}

func WithDefaultSymbol(s string) Option {
	return func(f *Feed) {
		if s != "" {
			f.defaultSymbol = s
		}
	}
}

func WithLogger(l *applogger.Logger) Option {
	return func(f *Feed) {
		if l != nil {
			f.logger = l
		}
	}
}

func WithMetrics(m repository.Metrics) Option {
	return func(f *Feed) { f.metrics = m }
}
