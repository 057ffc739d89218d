package upstream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/service/ratelimit"
	xhttp "CoinPulse/pkg/http"
)

// Base is the shared foundation of every upstream API client: one HTTP
// client, one base URL and an optional rate limiter key.
type Base struct {
	name      string
	baseURL   string
	headers   map[string]string
	userAgent string
	client    *xhttp.Client
	limiter   *ratelimit.Limiter
}

// Attempts is how often idempotent reads are tried before giving up.
const Attempts = 3

// Option configures Base.
type Option func(*Base)

// WithLimiter makes every request wait on the named token bucket.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(b *Base) { b.limiter = l }
}

// WithHeader adds a header sent on every request. Empty values are skipped.
func WithHeader(key, value string) Option {
	return func(b *Base) {
		if value != "" {
			b.headers[key] = value
		}
	}
}

// WithUserAgent overrides the client's default User-Agent.
func WithUserAgent(ua string) Option {
	return func(b *Base) { b.userAgent = ua }
}

// NewBase builds a client for the API at baseURL. A non-positive timeout
// defaults to 5s.
func NewBase(name, baseURL string, timeout time.Duration, opts ...Option) *Base {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	b := &Base{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(b)
	}
	clientOpts := []xhttp.ClientOption{xhttp.WithTimeout(timeout)}
	if b.userAgent != "" {
		clientOpts = append(clientOpts, xhttp.WithUserAgent(b.userAgent))
	}
	b.client = xhttp.NewClient(clientOpts...)
	return b
}

// Name identifies the upstream in logs, metrics and limiter keys.
func (b *Base) Name() string { return b.name }

// GetJSON issues GET baseURL+path and decodes the JSON body into dest.
// Transport failures and non-2xx answers wrap models.ErrUpstreamUnavailable;
// an undecodable body wraps models.ErrMalformedPayload.
func (b *Base) GetJSON(ctx context.Context, path string, query map[string][]string, dest interface{}) error {
	if b.baseURL == "" {
		return fmt.Errorf("%s: base url not configured: %w", b.name, models.ErrUpstreamUnavailable)
	}
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx, b.name); err != nil {
			return fmt.Errorf("%s: %v: %w", b.name, err, models.ErrUpstreamUnavailable)
		}
	}

	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         b.baseURL + path,
		Headers:     b.headers,
		QueryParams: query,
	}, dest)
	if err == nil {
		return nil
	}
	if errors.Is(err, xhttp.ErrDecode) {
		return fmt.Errorf("%s GET %s: %w: %w", b.name, path, models.ErrMalformedPayload, err)
	}
	return fmt.Errorf("%s GET %s: %w: %w", b.name, path, models.ErrUpstreamUnavailable, err)
}

// GetJSONWithRetry retries GetJSON on temporary upstream failures.
func (b *Base) GetJSONWithRetry(ctx context.Context, path string, query map[string][]string, dest interface{}, attempts int) error {
	var err error
	for i := 1; ; i++ {
		err = b.GetJSON(ctx, path, query, dest)
		if err == nil || i >= attempts || !temporary(err) {
			return err
		}
		select {
		case <-time.After(time.Duration(i) * 200 * time.Millisecond):
		case <-ctx.Done():
			return err
		}
	}
}

func temporary(err error) bool {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	// transport errors and timeouts
	return errors.Is(err, models.ErrUpstreamUnavailable) && !errors.Is(err, context.Canceled)
}
