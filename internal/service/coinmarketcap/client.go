package coinmarketcap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/service/ratelimit"
	"CoinPulse/internal/service/upstream"
)

const Name = "coinmarketcap"

// OHLCSource supplies raw OHLC rows by coin slug. CoinMarketCap quotes
// carry no history, so candles come from elsewhere when configured.
type OHLCSource interface {
	OHLC(ctx context.Context, id string) ([]models.OHLCTick, error)
}

// Client implements repository.MarketProvider over the quotes/latest API.
type Client struct {
	base *upstream.Base
	ohlc OHLCSource
}

// New creates a client. ohlc may be nil, in which case the feed renders a
// flat series at the live price.
func New(baseURL, apiKey string, timeout time.Duration, limiter *ratelimit.Limiter, ohlc OHLCSource) *Client {
	return &Client{
		base: upstream.NewBase(Name, baseURL, timeout,
			upstream.WithHeader("X-CMC_PRO_API_KEY", apiKey),
			upstream.WithLimiter(limiter),
		),
		ohlc: ohlc,
	}
}

type quote struct {
	Price            *float64 `json:"price"`
	Volume24h        float64  `json:"volume_24h"`
	MarketCap        float64  `json:"market_cap"`
	PercentChange24h float64  `json:"percent_change_24h"`
	LastUpdated      string   `json:"last_updated"`
}

type asset struct {
	ID                int              `json:"id"`
	Name              string           `json:"name"`
	Symbol            string           `json:"symbol"`
	Slug              string           `json:"slug"`
	CMCRank           int              `json:"cmc_rank"`
	MaxSupply         *float64         `json:"max_supply"`
	CirculatingSupply float64          `json:"circulating_supply"`
	TotalSupply       float64          `json:"total_supply"`
	Quote             map[string]quote `json:"quote"`
}

type quotesResponse struct {
	Data map[string][]asset `json:"data"`
}

// Symbol normalizes a trading pair such as "btcusdt" to "BTC".
func Symbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if trimmed := strings.TrimSuffix(s, "USDT"); trimmed != "" {
		s = trimmed
	}
	return s
}

// Fetch loads the latest USD quote for symbol and, when an OHLC source is
// set, the day's OHLC rows. An OHLC failure fails the whole fetch so the feed
// keeps its previous candles.
func (c *Client) Fetch(ctx context.Context, symbol string) (models.MarketData, error) {
	sym := Symbol(symbol)

	var resp quotesResponse
	if err := c.base.GetJSON(ctx, "/v2/cryptocurrency/quotes/latest", map[string][]string{"symbol": {sym}}, &resp); err != nil {
		return models.MarketData{}, err
	}

	assets := resp.Data[sym]
	if len(assets) == 0 {
		return models.MarketData{}, fmt.Errorf("%s: no data for %s: %w", Name, sym, models.ErrMalformedPayload)
	}
	a := assets[0]
	usd, ok := a.Quote["USD"]
	if !ok || usd.Price == nil {
		return models.MarketData{}, fmt.Errorf("%s: %s has no USD price: %w", Name, sym, models.ErrMalformedPayload)
	}

	md := models.MarketData{Snapshot: models.MarketSnapshot{
		ID:                a.Slug,
		Name:              a.Name,
		Symbol:            a.Symbol,
		Price:             *usd.Price,
		Volume24h:         usd.Volume24h,
		MarketCap:         usd.MarketCap,
		PercentChange24h:  usd.PercentChange24h,
		LastUpdated:       usd.LastUpdated,
		TotalSupply:       a.TotalSupply,
		CirculatingSupply: a.CirculatingSupply,
		MaxSupply:         a.MaxSupply,
		Rank:              a.CMCRank,
	}}

	if c.ohlc != nil && a.Slug != "" {
		ticks, err := c.ohlc.OHLC(ctx, a.Slug)
		if err != nil {
			return models.MarketData{}, fmt.Errorf("%s: ohlc for %s: %w: %w", Name, a.Slug, models.ErrUpstreamUnavailable, err)
		}
		md.Ticks = ticks
	}
	return md, nil
}
