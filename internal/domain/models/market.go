package models

import "time"

// MarketSnapshot is the latest full market state for one asset. It is
// replaced wholesale on every successful poll.
type MarketSnapshot struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Symbol              string   `json:"symbol"`
	Price               float64  `json:"price"`
	Volume24h           float64  `json:"volume24h"`
	MarketCap           float64  `json:"marketCap"`
	PercentChange24h    float64  `json:"percentChange24h"`
	LastUpdated         string   `json:"lastUpdated"`
	ATH                 float64  `json:"ath"`
	ATHChangePercentage float64  `json:"athChangePercentage"`
	ATHDate             string   `json:"athDate"`
	TotalSupply         float64  `json:"totalSupply"`
	CirculatingSupply   float64  `json:"circulatingSupply"`
	MaxSupply           *float64 `json:"maxSupply,omitempty"`
	Rank                int      `json:"rank"`
}

// Candle is an OHLC aggregate over one bucket. Timestamp is the bucket start in unix ms.
type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
}

// OHLCTick is one raw provider OHLC row, timestamp in unix ms.
type OHLCTick struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
}

// MarketData is what a provider returns for one poll.
type MarketData struct {
	Snapshot MarketSnapshot
	Ticks    []OHLCTick
}

// CandleStats summarizes a candle series.
type CandleStats struct {
	Count              int     `json:"count"`
	LastClose          float64 `json:"lastClose"`
	RealizedVolatility float64 `json:"realizedVolatility"`
}

// MarketEvent is published for every feed update.
type MarketEvent struct {
	EventID     string         `json:"event_id"`
	Feed        string         `json:"feed"`
	Symbol      string         `json:"symbol"`
	Snapshot    MarketSnapshot `json:"snapshot"`
	Candles     []Candle       `json:"candles"`
	PublishedAt time.Time      `json:"published_at"`
}

// CoinListing is one row of the top coins table.
type CoinListing struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	Rank        int     `json:"rank"`
	Price       float64 `json:"price"`
	Change24h   float64 `json:"change24h"`
	Volume24h   float64 `json:"volume24h"`
	MarketCap   float64 `json:"marketCap"`
	LastUpdated string  `json:"lastUpdate"`
}

// FearGreedPoint is one Fear & Greed index reading.
type FearGreedPoint struct {
	Value     int    `json:"value"`
	ValueText string `json:"valueText"`
	Timestamp int64  `json:"timestamp"`
}

// FearGreedIndex is the latest reading plus history.
type FearGreedIndex struct {
	FearGreedPoint
	PreviousValues []FearGreedPoint `json:"previousValues"`
}

// IndexPoint is one sample of an index time series such as VIX.
type IndexPoint struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}
