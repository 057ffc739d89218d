package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/services/marketfeed"
	"CoinPulse/internal/usecase"
	pkgcache "CoinPulse/pkg/cache"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
)

type flatProvider struct{}

func (flatProvider) Fetch(_ context.Context, symbol string) (models.MarketData, error) {
	return models.MarketData{Snapshot: models.MarketSnapshot{ID: symbol, Price: 1}}, nil
}

type closeRecorder struct {
	pkgcache.Service
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return c.Service.Close()
}

func TestAppRunShutsDownOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Feeds.Watchlist = []string{"bitcoin"}

	feed := marketfeed.New(flatProvider{}, marketfeed.WithInterval(time.Hour))
	store := &closeRecorder{Service: pkgcache.NewMemoryCache()}
	app := New(Deps{
		Config:     cfg,
		Cache:      store,
		Market:     usecase.NewMarketUseCase(feed),
		Watchlist:  usecase.NewWatchlistCollector(feed, cfg.Feeds.Watchlist, nil, nil),
		HTTPServer: xhttp.NewServer(nil, xhttp.WithHost("127.0.0.1"), xhttp.WithPort(0)),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool { return app.Watchlist.Watching() == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.Equal(t, 0, app.Watchlist.Watching())
	assert.True(t, store.closed)
	assert.Equal(t, 0, feed.Subscribers("bitcoin"))
}
