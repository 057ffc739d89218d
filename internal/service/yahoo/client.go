package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/service/ratelimit"
	"CoinPulse/internal/service/upstream"
)

const (
	Name      = "yahoo"
	VIXSymbol = "^VIX"

	// Yahoo rejects requests without a browser-like agent.
	userAgent = "Mozilla/5.0 (compatible; CoinPulse/1.0)"
)

// Client reads intraday index charts from Yahoo Finance.
type Client struct {
	base *upstream.Base
}

func New(baseURL string, timeout time.Duration, limiter *ratelimit.Limiter) *Client {
	return &Client{base: upstream.NewBase(Name, baseURL, timeout,
		upstream.WithLimiter(limiter),
		upstream.WithUserAgent(userAgent),
	)}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

// VIX returns today's 5 minute ^VIX closes.
func (c *Client) VIX(ctx context.Context) ([]models.IndexPoint, error) {
	return c.Chart(ctx, VIXSymbol, "1d", "5m")
}

// Chart returns the close series of symbol in unix ms. Empty or zero closes
// are dropped.
func (c *Client) Chart(ctx context.Context, symbol, rng, interval string) ([]models.IndexPoint, error) {
	var resp chartResponse
	err := c.base.GetJSONWithRetry(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), map[string][]string{
		"range":          {rng},
		"interval":       {interval},
		"includePrePost": {"false"},
	}, &resp, upstream.Attempts)
	if err != nil {
		return nil, err
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%s: chart for %s has no quotes: %w", Name, symbol, models.ErrMalformedPayload)
	}

	res := resp.Chart.Result[0]
	closes := res.Indicators.Quote[0].Close
	points := make([]models.IndexPoint, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= len(closes) || closes[i] == nil || *closes[i] == 0 {
			continue
		}
		points = append(points, models.IndexPoint{Timestamp: ts * 1000, Value: *closes[i]})
	}
	return points, nil
}
