package coinmarketcap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/services/marketfeed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quotesBody = `{"data":{"BTC":[{"id":1,"name":"Bitcoin","symbol":"BTC","slug":"bitcoin","cmc_rank":1,
"max_supply":21000000,"circulating_supply":19765432,"total_supply":19765432,
"quote":{"USD":{"price":62831.17,"volume_24h":1.5e10,"market_cap":1.24e12,"percent_change_24h":2.5,"last_updated":"2024-10-10T10:10:00.000Z"}}}]}}`

type stubOHLC struct {
	id    string
	ticks []models.OHLCTick
	err   error
}

func (s *stubOHLC) OHLC(_ context.Context, id string) ([]models.OHLCTick, error) {
	s.id = id
	return s.ticks, s.err
}

func quotesServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/cryptocurrency/quotes/latest", r.URL.Path)
		assert.Equal(t, "cmc-key", r.Header.Get("X-CMC_PRO_API_KEY"))
		assert.Equal(t, "BTC", r.URL.Query().Get("symbol"))
		_, _ = w.Write([]byte(body))
	}))
}

func TestSymbol(t *testing.T) {
	assert.Equal(t, "BTC", Symbol("btcusdt"))
	assert.Equal(t, "ETH", Symbol(" eth "))
	assert.Equal(t, "USDT", Symbol("usdt"))
}

func TestFetchWithOHLC(t *testing.T) {
	srv := quotesServer(t, quotesBody)
	defer srv.Close()

	src := &stubOHLC{ticks: []models.OHLCTick{{Timestamp: 1, Close: 62000}}}
	md, err := New(srv.URL, "cmc-key", time.Second, nil, src).Fetch(context.Background(), "BTCUSDT")
	require.NoError(t, err)

	assert.Equal(t, "bitcoin", src.id)
	assert.Equal(t, 62831.17, md.Snapshot.Price)
	assert.Equal(t, 1, md.Snapshot.Rank)
	assert.Len(t, md.Ticks, 1)
}

func TestFetchOHLCFailureFailsFetch(t *testing.T) {
	srv := quotesServer(t, quotesBody)
	defer srv.Close()

	src := &stubOHLC{err: errors.New("coingecko 429")}
	_, err := New(srv.URL, "cmc-key", time.Second, nil, src).Fetch(context.Background(), "btc")
	require.ErrorIs(t, err, models.ErrUpstreamUnavailable)
	assert.Contains(t, err.Error(), "coingecko 429")
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func (c fixedClock) NewTicker(d time.Duration) marketfeed.Ticker {
	return marketfeed.SystemClock{}.NewTicker(d)
}

func TestFeedKeepsCandlesWhenOHLCFails(t *testing.T) {
	srv := quotesServer(t, quotesBody)
	defer srv.Close()

	now := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	first := now.Add(-95 * 15 * time.Minute)
	ticks := make([]models.OHLCTick, 0, 96)
	for i := 0; i < 96; i++ {
		px := 60000 + float64(i)*10
		ticks = append(ticks, models.OHLCTick{
			Timestamp: first.Add(time.Duration(i) * 15 * time.Minute).UnixMilli(),
			Open:      px,
			High:      px,
			Low:       px,
			Close:     px,
		})
	}
	src := &stubOHLC{ticks: ticks}
	f := marketfeed.New(New(srv.URL, "cmc-key", time.Second, nil, src),
		marketfeed.WithClock(fixedClock{now: now}))
	defer f.Close()

	require.NoError(t, f.Refresh(context.Background(), "btc"))
	_, before := f.Current("btc")
	require.Len(t, before, 96)
	require.Equal(t, 60100.0, before[10].Close)

	src.ticks, src.err = nil, errors.New("coingecko 429")
	err := f.Refresh(context.Background(), "btc")
	require.ErrorIs(t, err, models.ErrUpstreamUnavailable)

	_, after := f.Current("btc")
	assert.Equal(t, before, after)
}

func TestFetchMissingSymbolIsMalformed(t *testing.T) {
	srv := quotesServer(t, `{"data":{}}`)
	defer srv.Close()

	_, err := New(srv.URL, "cmc-key", time.Second, nil, nil).Fetch(context.Background(), "btc")
	require.ErrorIs(t, err, models.ErrMalformedPayload)
}
