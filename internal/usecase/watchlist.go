package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"CoinPulse/internal/domain/models"
	mid "CoinPulse/internal/middleware"
	"CoinPulse/internal/services/marketfeed"
	applogger "CoinPulse/pkg/logger"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// WatchlistCollector keeps a fixed set of symbols subscribed on a feed and
// forwards every update to the event pipeline.
type WatchlistCollector struct {
	feed    *marketfeed.Feed
	symbols []string
	pipe    *mid.EventPipeline
	logger  *applogger.Logger
	now     func() time.Time

	mu   sync.Mutex
	subs []*marketfeed.Subscription
}

func NewWatchlistCollector(feed *marketfeed.Feed, symbols []string, pipe *mid.EventPipeline, logger *applogger.Logger) *WatchlistCollector {
	if logger == nil {
		logger = applogger.NewNop()
	}
	return &WatchlistCollector{feed: feed, symbols: symbols, pipe: pipe, logger: logger, now: time.Now}
}

// Start subscribes every watchlist symbol. Subscriptions made before a
// failure are rolled back.
func (c *WatchlistCollector) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.subs) > 0 {
		return nil
	}
	if c.pipe != nil {
		c.pipe.Start()
	}
	for _, sym := range c.symbols {
		sub, err := c.feed.Subscribe(sym, c.onUpdate)
		if err != nil {
			for _, s := range c.subs {
				s.Unsubscribe()
			}
			c.subs = nil
			return fmt.Errorf("watch %s: %w", sym, err)
		}
		c.subs = append(c.subs, sub)
	}
	c.logger.Info("watchlist started",
		applogger.String("feed", c.feed.Name()),
		applogger.Strings("symbols", c.symbols),
	)
	return nil
}

func (c *WatchlistCollector) onUpdate(st marketfeed.State) {
	c.logger.Info("market update",
		applogger.String("feed", c.feed.Name()),
		applogger.String("symbol", st.Symbol),
		applogger.String("price", "$"+humanize.CommafWithDigits(st.Snapshot.Price, 2)),
		applogger.String("volume_24h", "$"+humanize.Comma(int64(st.Snapshot.Volume24h))),
		applogger.Int("candles", len(st.Candles)),
	)
	if c.pipe == nil {
		return
	}
	c.pipe.Enqueue(&models.MarketEvent{
		EventID:     uuid.NewString(),
		Feed:        c.feed.Name(),
		Symbol:      st.Symbol,
		Snapshot:    st.Snapshot,
		Candles:     st.Candles,
		PublishedAt: c.now().UTC(),
	})
}

// Watching returns the number of active subscriptions.
func (c *WatchlistCollector) Watching() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Shutdown unsubscribes and flushes the pipeline.
func (c *WatchlistCollector) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	for _, s := range c.subs {
		s.Unsubscribe()
	}
	c.subs = nil
	c.mu.Unlock()

	if c.pipe != nil {
		return c.pipe.Stop(ctx)
	}
	return nil
}
