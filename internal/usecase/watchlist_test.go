package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mid "CoinPulse/internal/middleware"
)

func TestWatchlistForwardsUpdates(t *testing.T) {
	p := &stubMarket{price: 100}
	feed := newFeed(t, "primary", p)
	pub := &recordingPublisher{}
	pipe := mid.NewEventPipeline(pub, nil)

	c := NewWatchlistCollector(feed, []string{"bitcoin", "ethereum"}, pipe, nil)
	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, 2, c.Watching())
	assert.Equal(t, 1, feed.Subscribers("bitcoin"))

	require.Eventually(t, func() bool { return pub.marketCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Shutdown(ctx))
	assert.Equal(t, 0, c.Watching())
	assert.Equal(t, 0, feed.Subscribers("bitcoin"))

	pub.mu.Lock()
	defer pub.mu.Unlock()
	for _, ev := range pub.market {
		assert.NotEmpty(t, ev.EventID)
		assert.Equal(t, "primary", ev.Feed)
		assert.Len(t, ev.Candles, 96)
	}
}

func TestWatchlistStartFailsOnClosedFeed(t *testing.T) {
	feed := newFeed(t, "primary", &stubMarket{price: 1})
	feed.Close()

	c := NewWatchlistCollector(feed, []string{"bitcoin"}, nil, nil)
	assert.Error(t, c.Start(context.Background()))
	assert.Equal(t, 0, c.Watching())
}
