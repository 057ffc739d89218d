package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/services/candles"
	"CoinPulse/internal/services/marketfeed"
)

// View states of a market response.
const (
	StateReady   = "ready"
	StatePending = "pending"
)

// ErrUnknownFeed is returned for a feed name that is not configured.
var ErrUnknownFeed = errors.New("unknown market feed")

// MarketUseCase reads market state from the configured feeds.
type MarketUseCase struct {
	feeds       map[string]*marketfeed.Feed
	warmTimeout time.Duration
}

func NewMarketUseCase(feeds ...*marketfeed.Feed) *MarketUseCase {
	uc := &MarketUseCase{
		feeds:       make(map[string]*marketfeed.Feed, len(feeds)),
		warmTimeout: 5 * time.Second,
	}
	for _, f := range feeds {
		uc.feeds[f.Name()] = f
	}
	return uc
}

// MarketView is the API shape of one feed entry.
type MarketView struct {
	State     string                 `json:"state"`
	Feed      string                 `json:"feed"`
	Symbol    string                 `json:"symbol"`
	Snapshot  *models.MarketSnapshot `json:"snapshot,omitempty"`
	Candles   []models.Candle        `json:"candles"`
	Stats     *models.CandleStats    `json:"stats,omitempty"`
	UpdatedAt *time.Time             `json:"updatedAt,omitempty"`
}

// Feeds lists configured feed names.
func (uc *MarketUseCase) Feeds() []string {
	names := make([]string, 0, len(uc.feeds))
	for n := range uc.feeds {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (uc *MarketUseCase) feed(name string) (*marketfeed.Feed, error) {
	f, ok := uc.feeds[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFeed, name)
	}
	return f, nil
}

// Market returns the cached state for symbol. A symbol nobody has polled
// yet gets one synchronous warm-up poll; if that does not produce data the
// view is pending rather than an error.
func (uc *MarketUseCase) Market(ctx context.Context, feedName, symbol string) (*MarketView, error) {
	f, err := uc.feed(feedName)
	if err != nil {
		return nil, err
	}

	st := f.State(symbol)
	if st == nil {
		wctx, cancel := context.WithTimeout(ctx, uc.warmTimeout)
		_ = f.Refresh(wctx, symbol)
		cancel()
		st = f.State(symbol)
	}
	if st == nil {
		return pendingView(f, symbol), nil
	}
	return ViewOf(f, *st), nil
}

// Cached returns the view of whatever the feed holds for symbol without
// polling. ok is false before the first successful poll.
func (uc *MarketUseCase) Cached(feedName, symbol string) (*MarketView, bool, error) {
	f, err := uc.feed(feedName)
	if err != nil {
		return nil, false, err
	}
	st := f.State(symbol)
	if st == nil {
		return pendingView(f, symbol), false, nil
	}
	return ViewOf(f, *st), true, nil
}

func pendingView(f *marketfeed.Feed, symbol string) *MarketView {
	return &MarketView{State: StatePending, Feed: f.Name(), Symbol: f.Resolve(symbol), Candles: []models.Candle{}}
}

// ViewOf renders a feed state.
func ViewOf(f *marketfeed.Feed, st marketfeed.State) *MarketView {
	snap := st.Snapshot
	stats := candles.Summarize(st.Candles, f.Bucket())
	updated := st.UpdatedAt
	return &MarketView{
		State:     StateReady,
		Feed:      f.Name(),
		Symbol:    st.Symbol,
		Snapshot:  &snap,
		Candles:   st.Candles,
		Stats:     &stats,
		UpdatedAt: &updated,
	}
}

// Subscribe registers cb on the named feed. The first view is delivered
// with the next poll.
func (uc *MarketUseCase) Subscribe(feedName, symbol string, cb func(*MarketView)) (*marketfeed.Subscription, error) {
	f, err := uc.feed(feedName)
	if err != nil {
		return nil, err
	}
	return f.Subscribe(symbol, func(st marketfeed.State) {
		cb(ViewOf(f, st))
	})
}

// Close stops every feed.
func (uc *MarketUseCase) Close() {
	for _, f := range uc.feeds {
		f.Close()
	}
}
