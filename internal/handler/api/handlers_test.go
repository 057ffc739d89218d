package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
	svccache "CoinPulse/internal/service/cache"
	"CoinPulse/internal/services/marketfeed"
	"CoinPulse/internal/services/sentiment"
	"CoinPulse/internal/usecase"
	pkgcache "CoinPulse/pkg/cache"
	xhttp "CoinPulse/pkg/http"
)

type stubMarket struct {
	mu    sync.Mutex
	price float64
	err   error
}

func (s *stubMarket) Fetch(_ context.Context, symbol string) (models.MarketData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return models.MarketData{}, s.err
	}
	return models.MarketData{Snapshot: models.MarketSnapshot{ID: symbol, Price: s.price}}, nil
}

type stubIndices struct {
	mu    sync.Mutex
	coins []models.CoinListing
	err   error
}

func (s *stubIndices) set(coins []models.CoinListing, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coins, s.err = coins, err
}

func (s *stubIndices) TopCoins(context.Context) ([]models.CoinListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coins, s.err
}

func (s *stubIndices) FearGreed(context.Context, int) (models.FearGreedIndex, error) {
	return models.FearGreedIndex{FearGreedPoint: models.FearGreedPoint{Value: 72, ValueText: "Greed"}}, nil
}

func (s *stubIndices) VIX(context.Context) ([]models.IndexPoint, error) {
	return nil, models.ErrMalformedPayload
}

type stubNews struct{}

func (stubNews) Posts(context.Context, string, int) ([]models.NewsPost, error) {
	return []models.NewsPost{{ID: "1", Title: "Bitcoin rally continues"}}, nil
}

type nopPublisher struct{}

func (nopPublisher) PublishMarket(context.Context, *models.MarketEvent) error    { return nil }
func (nopPublisher) PublishScoredNews(context.Context, *models.ScoredNews) error { return nil }
func (nopPublisher) Close() error                                                { return nil }

type fixture struct {
	server  *xhttp.Server
	feed    *marketfeed.Feed
	market  *stubMarket
	indices *stubIndices
	fb      *svccache.Fallback
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := pkgcache.NewMemoryCache()
	t.Cleanup(func() { _ = store.Close() })
	fb := svccache.NewFallback(store, time.Hour, nil, nil)

	m := &stubMarket{price: 64000}
	feed := marketfeed.New(m, marketfeed.WithInterval(time.Hour))
	t.Cleanup(feed.Close)

	idx := &stubIndices{coins: []models.CoinListing{{ID: "bitcoin", Rank: 1, Price: 64000}}}
	scorer, err := sentiment.NewScorer(sentiment.StrategyLexicon)
	require.NoError(t, err)

	router := NewRouter(
		NewMarketHandler(nil, usecase.NewMarketUseCase(feed)),
		NewIndicesHandler(nil, usecase.NewIndicesUseCase(idx, idx, idx, fb, usecase.IndicesTTL{
			Coins:     time.Minute,
			FearGreed: 5 * time.Minute,
			VIX:       5 * time.Minute,
		})),
		NewNewsHandler(nil, usecase.NewNewsUseCase(stubNews{}, scorer, fb, nopPublisher{}, nil, usecase.NewsConfig{
			NewsStrategy: sentiment.StrategyLexicon,
			HotStrategy:  sentiment.StrategyLexicon,
			NewsTTL:      2 * time.Minute,
			HotTTL:       5 * time.Minute,
		})),
	)
	return &fixture{server: xhttp.NewServer(router), feed: feed, market: m, indices: idx, fb: fb}
}

func (f *fixture) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, xhttp.APIResponse) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	f.server.Echo().ServeHTTP(rec, req)

	var resp xhttp.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec, resp
}

func TestMarketEndpoint(t *testing.T) {
	f := newFixture(t)
	rec, resp := f.do(t, http.MethodGet, "/api/market", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xhttp.CacheControlNone, rec.Header().Get(echo.HeaderCacheControl))

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, usecase.StateReady, data["state"])
	assert.Equal(t, "bitcoin", data["symbol"])
	assert.Len(t, data["candles"], 96)
}

func TestMarketEndpointPending(t *testing.T) {
	f := newFixture(t)
	f.market.mu.Lock()
	f.market.err = models.ErrUpstreamUnavailable
	f.market.mu.Unlock()

	rec, resp := f.do(t, http.MethodGet, "/api/market?symbol=solana", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, usecase.StatePending, data["state"])
	assert.Equal(t, "solana", data["symbol"])
}

func TestMarketEndpointRejectsFeeds(t *testing.T) {
	f := newFixture(t)
	rec, _ := f.do(t, http.MethodGet, "/api/market?feed=tertiary", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// valid name but not configured in this fixture
	rec, _ = f.do(t, http.MethodGet, "/api/market?feed=secondary", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCoinsServesStaleOnUpstreamError(t *testing.T) {
	f := newFixture(t)
	rec, _ := f.do(t, http.MethodGet, "/api/coins", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get(xhttp.HeaderCache))
	assert.Equal(t, "public, s-maxage=60, stale-while-revalidate=30", rec.Header().Get(echo.HeaderCacheControl))

	rec, _ = f.do(t, http.MethodGet, "/api/coins", "")
	assert.Equal(t, "HIT", rec.Header().Get(xhttp.HeaderCache))

	f.fb.SetClock(func() time.Time { return time.Now().Add(2 * time.Minute) })
	f.indices.set(nil, models.ErrUpstreamUnavailable)

	rec, resp := f.do(t, http.MethodGet, "/api/coins", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "STALE", rec.Header().Get(xhttp.HeaderCache))
	assert.Equal(t, "public, s-maxage=30, stale-while-revalidate=15", rec.Header().Get(echo.HeaderCacheControl))
	assert.Len(t, resp.Data, 1)
}

func TestVIXWithoutCacheIsBadGateway(t *testing.T) {
	f := newFixture(t)
	rec, _ := f.do(t, http.MethodGet, "/api/vix", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestFearGreed(t *testing.T) {
	f := newFixture(t)
	rec, resp := f.do(t, http.MethodGet, "/api/fear-greed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, s-maxage=300, stale-while-revalidate=150", rec.Header().Get(echo.HeaderCacheControl))
	assert.EqualValues(t, 72, resp.Data.(map[string]interface{})["value"])
}

func TestNewsAndSentiment(t *testing.T) {
	f := newFixture(t)
	rec, resp := f.do(t, http.MethodGet, "/api/news?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := resp.Data.([]interface{})
	require.Len(t, items, 1)
	analysis := items[0].(map[string]interface{})["analysis"].(map[string]interface{})
	assert.Equal(t, "positive", analysis["sentiment"])

	rec, _ = f.do(t, http.MethodGet, "/api/news?limit=500", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = f.do(t, http.MethodGet, "/api/sentiment?coinId=ethereum", "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "ethereum", data["coinId"])
	assert.Equal(t, "positive", data["summary"].(map[string]interface{})["overall"])
}

func TestAnalyze(t *testing.T) {
	f := newFixture(t)
	rec, resp := f.do(t, http.MethodPost, "/api/sentiment/analyze", `{"title":"Market crash","strategy":"lexicon"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "negative", data["sentiment"])
	assert.Equal(t, "lexicon", data["strategy"])

	rec, _ = f.do(t, http.MethodPost, "/api/sentiment/analyze", `{"description":"no title"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/sentiment/analyze", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/sentiment/analyze", `{"title":"x","strategy":"oracle"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarketStream(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.server.Echo())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/market?symbol=bitcoin"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return f.feed.Subscribers("bitcoin") == 1 }, 2*time.Second, 10*time.Millisecond)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame struct {
		Type string             `json:"type"`
		Data usecase.MarketView `json:"data"`
	}
	for frame.Data.State != usecase.StateReady {
		require.NoError(t, conn.ReadJSON(&frame))
	}
	assert.Equal(t, "market", frame.Type)
	assert.Equal(t, 64000.0, frame.Data.Snapshot.Price)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return f.feed.Subscribers("bitcoin") == 0 }, 2*time.Second, 10*time.Millisecond)
}
