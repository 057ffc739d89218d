package tracker

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
)

// Tracker reports errors to an external error tracking service.
type Tracker interface {
	CaptureError(ctx context.Context, err error, tags map[string]string)
	CaptureMessage(ctx context.Context, msg string, tags map[string]string)
	Flush(timeout time.Duration) bool
}

// Config configures the Sentry tracker.
type Config struct {
	DSN         string
	Environment string
	Release     string
	SampleRate  float64
}

// New returns a Sentry tracker, or a no-op one when no DSN is configured.
func New(cfg Config) (Tracker, error) {
	if cfg.DSN == "" {
		return Noop{}, nil
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 1
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		SampleRate:  cfg.SampleRate,
	}); err != nil {
		return nil, err
	}
	return &Sentry{hub: sentry.CurrentHub()}, nil
}

// Sentry implements Tracker with sentry-go.
type Sentry struct {
	hub *sentry.Hub
}

func (s *Sentry) CaptureError(ctx context.Context, err error, tags map[string]string) {
	if err == nil {
		return
	}
	s.scoped(ctx, tags, sentry.LevelError).CaptureException(err)
}

func (s *Sentry) CaptureMessage(ctx context.Context, msg string, tags map[string]string) {
	s.scoped(ctx, tags, sentry.LevelWarning).CaptureMessage(msg)
}

func (s *Sentry) Flush(timeout time.Duration) bool {
	return s.hub.Flush(timeout)
}

func (s *Sentry) scoped(ctx context.Context, tags map[string]string, level sentry.Level) *sentry.Hub {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = s.hub
	}
	hub = hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetLevel(level)
		for k, v := range tags {
			scope.SetTag(k, v)
		}
	})
	return hub
}

// Noop discards everything.
type Noop struct{}

func (Noop) CaptureError(context.Context, error, map[string]string)    {}
func (Noop) CaptureMessage(context.Context, string, map[string]string) {}
func (Noop) Flush(time.Duration) bool                                  { return true }
