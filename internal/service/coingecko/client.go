package coingecko

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/service/ratelimit"
	"CoinPulse/internal/service/upstream"

	"golang.org/x/sync/errgroup"
)

// Name is the limiter and metrics key of this upstream.
const Name = "coingecko"

// Client talks to the CoinGecko v3 API. It implements
// repository.MarketProvider and repository.CoinLister.
type Client struct {
	base *upstream.Base
	days string
}

// New creates a CoinGecko client. apiKey is sent as x-cg-demo-api-key.
func New(baseURL, apiKey string, timeout time.Duration, limiter *ratelimit.Limiter) *Client {
	return &Client{
		base: upstream.NewBase(Name, baseURL, timeout,
			upstream.WithHeader("x-cg-demo-api-key", apiKey),
			upstream.WithLimiter(limiter),
		),
		days: "1",
	}
}

// Fetch loads the coin details and its OHLC rows in parallel.
func (c *Client) Fetch(ctx context.Context, id string) (models.MarketData, error) {
	var (
		coin  Coin
		ticks []models.OHLCTick
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		coin, err = c.coin(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		ticks, err = c.OHLC(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.MarketData{}, err
	}

	snap, err := ToSnapshot(coin)
	if err != nil {
		return models.MarketData{}, err
	}
	return models.MarketData{Snapshot: snap, Ticks: ticks}, nil
}

func (c *Client) coin(ctx context.Context, id string) (Coin, error) {
	var out Coin
	err := c.base.GetJSON(ctx, "/coins/"+url.PathEscape(id), map[string][]string{
		"localization":   {"false"},
		"tickers":        {"false"},
		"community_data": {"false"},
		"developer_data": {"false"},
		"sparkline":      {"false"},
	}, &out)
	return out, err
}

// OHLC returns the raw OHLC rows of the last day in unix ms.
func (c *Client) OHLC(ctx context.Context, id string) ([]models.OHLCTick, error) {
	var rows [][]float64
	err := c.base.GetJSON(ctx, "/coins/"+url.PathEscape(id)+"/ohlc", map[string][]string{
		"vs_currency": {"usd"},
		"days":        {c.days},
	}, &rows)
	if err != nil {
		return nil, err
	}

	ticks := make([]models.OHLCTick, 0, len(rows))
	for i, r := range rows {
		if len(r) < 5 {
			return nil, fmt.Errorf("%s ohlc row %d has %d fields: %w", Name, i, len(r), models.ErrMalformedPayload)
		}
		ticks = append(ticks, models.OHLCTick{
			Timestamp: int64(r[0]),
			Open:      r[1],
			High:      r[2],
			Low:       r[3],
			Close:     r[4],
		})
	}
	return ticks, nil
}

// TopCoins returns the first 100 coins by market cap.
func (c *Client) TopCoins(ctx context.Context) ([]models.CoinListing, error) {
	var rows []marketRow
	err := c.base.GetJSONWithRetry(ctx, "/coins/markets", map[string][]string{
		"vs_currency":             {"usd"},
		"order":                   {"market_cap_desc"},
		"per_page":                {"100"},
		"page":                    {"1"},
		"sparkline":               {"false"},
		"price_change_percentage": {"24h"},
	}, &rows, upstream.Attempts)
	if err != nil {
		return nil, err
	}

	out := make([]models.CoinListing, 0, len(rows))
	for _, r := range rows {
		if r.ID == "" || r.CurrentPrice == nil {
			continue
		}
		out = append(out, models.CoinListing{
			ID:          r.ID,
			Name:        r.Name,
			Symbol:      strings.ToUpper(r.Symbol),
			Rank:        r.MarketCapRank,
			Price:       *r.CurrentPrice,
			Change24h:   r.PriceChangePercentage24h,
			Volume24h:   r.TotalVolume,
			MarketCap:   r.MarketCap,
			LastUpdated: r.LastUpdated,
		})
	}
	return out, nil
}
