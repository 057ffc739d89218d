package coingecko

import (
	"fmt"
	"strings"

	"CoinPulse/internal/domain/models"
)

type usdValue struct {
	USD *float64 `json:"usd"`
}

type usdString struct {
	USD string `json:"usd"`
}

type CoinMarketData struct {
	CurrentPrice             usdValue  `json:"current_price"`
	TotalVolume              usdValue  `json:"total_volume"`
	MarketCap                usdValue  `json:"market_cap"`
	PriceChangePercentage24h float64   `json:"price_change_percentage_24h"`
	ATH                      usdValue  `json:"ath"`
	ATHChangePercentage      usdValue  `json:"ath_change_percentage"`
	ATHDate                  usdString `json:"ath_date"`
	TotalSupply              float64   `json:"total_supply"`
	CirculatingSupply        float64   `json:"circulating_supply"`
	MaxSupply                *float64  `json:"max_supply"`
}

// Coin is the /coins/{id} payload.
type Coin struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Symbol        string          `json:"symbol"`
	MarketCapRank int             `json:"market_cap_rank"`
	LastUpdated   string          `json:"last_updated"`
	MarketData    *CoinMarketData `json:"market_data"`
}

type marketRow struct {
	ID                       string   `json:"id"`
	Name                     string   `json:"name"`
	Symbol                   string   `json:"symbol"`
	MarketCapRank            int      `json:"market_cap_rank"`
	CurrentPrice             *float64 `json:"current_price"`
	PriceChangePercentage24h float64  `json:"price_change_percentage_24h"`
	TotalVolume              float64  `json:"total_volume"`
	MarketCap                float64  `json:"market_cap"`
	LastUpdated              string   `json:"last_updated"`
}

// ToSnapshot normalizes a /coins/{id} payload. The id, market_data and
// current USD price are required.
func ToSnapshot(c Coin) (models.MarketSnapshot, error) {
	if c.ID == "" || c.MarketData == nil || c.MarketData.CurrentPrice.USD == nil {
		return models.MarketSnapshot{}, fmt.Errorf("%s coin %q missing id or price: %w", Name, c.ID, models.ErrMalformedPayload)
	}
	md := c.MarketData
	return models.MarketSnapshot{
		ID:                  c.ID,
		Name:                c.Name,
		Symbol:              strings.ToUpper(c.Symbol),
		Price:               *md.CurrentPrice.USD,
		Volume24h:           deref(md.TotalVolume.USD),
		MarketCap:           deref(md.MarketCap.USD),
		PercentChange24h:    md.PriceChangePercentage24h,
		LastUpdated:         c.LastUpdated,
		ATH:                 deref(md.ATH.USD),
		ATHChangePercentage: deref(md.ATHChangePercentage.USD),
		ATHDate:             md.ATHDate.USD,
		TotalSupply:         md.TotalSupply,
		CirculatingSupply:   md.CirculatingSupply,
		MaxSupply:           md.MaxSupply,
		Rank:                c.MarketCapRank,
	}, nil
}

// FromSnapshot maps a snapshot back to CoinGecko field names. Numeric
// fields survive ToSnapshot(FromSnapshot(s)) unchanged. The symbol keeps
// its normalized upper case.
func FromSnapshot(s models.MarketSnapshot) Coin {
	return Coin{
		ID:            s.ID,
		Name:          s.Name,
		Symbol:        s.Symbol,
		MarketCapRank: s.Rank,
		LastUpdated:   s.LastUpdated,
		MarketData: &CoinMarketData{
			CurrentPrice:             usdValue{USD: ptr(s.Price)},
			TotalVolume:              usdValue{USD: ptr(s.Volume24h)},
			MarketCap:                usdValue{USD: ptr(s.MarketCap)},
			PriceChangePercentage24h: s.PercentChange24h,
			ATH:                      usdValue{USD: ptr(s.ATH)},
			ATHChangePercentage:      usdValue{USD: ptr(s.ATHChangePercentage)},
			ATHDate:                  usdString{USD: s.ATHDate},
			TotalSupply:              s.TotalSupply,
			CirculatingSupply:        s.CirculatingSupply,
			MaxSupply:                s.MaxSupply,
		},
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func ptr(v float64) *float64 { return &v }
