package marketfeed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/domain/repository"
	"CoinPulse/internal/services/candles"
	applogger "CoinPulse/pkg/logger"
)

// ErrInFlight is returned by Refresh when a poll for the symbol is already running.
var ErrInFlight = errors.New("poll already in flight")

// State is one immutable cache entry. Subscribers must not modify Candles.
type State struct {
	Symbol    string
	Snapshot  models.MarketSnapshot
	Candles   []models.Candle
	UpdatedAt time.Time
}

// UpdateFunc receives every successful poll. It runs on the symbol's worker
// goroutine, so a slow callback delays the next poll of that symbol.
type UpdateFunc func(State)

// Subscription identifies one registered callback.
type Subscription struct {
	feed   *Feed
	symbol string
	id     uint64
	once   sync.Once
}

// Symbol returns the symbol the subscription is bound to.
func (s *Subscription) Symbol() string { return s.symbol }

// Unsubscribe removes the callback. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() { s.feed.unsubscribe(s) })
}

// entry holds everything the feed tracks for one symbol.
type entry struct {
	symbol   string
	state    atomic.Pointer[State]
	inFlight atomic.Bool
	pending  atomic.Bool

	// guarded by Feed.mu
	subs   map[uint64]UpdateFunc
	order  []uint64
	ticker Ticker
	stop   chan struct{}
	kick   chan struct{}
}

// Feed polls a market provider per symbol, caches the latest state and fans
// it out to subscribers. Each symbol with at least one subscriber has its own
// worker goroutine and ticker.
type Feed struct {
	name          string
	provider      repository.MarketProvider
	clock         Clock
	interval      time.Duration
	timeout       time.Duration
	window        time.Duration
	bucket        time.Duration
	defaultSymbol string
	logger        *applogger.Logger
	metrics       repository.Metrics

	mu      sync.Mutex
	entries map[string]*entry
	nextID  uint64
	closed  bool
	wg      sync.WaitGroup
}

// New creates a feed over provider.
func New(provider repository.MarketProvider, opts ...Option) *Feed {
	f := &Feed{
		name:          "primary",
		provider:      provider,
		clock:         SystemClock{},
		interval:      15 * time.Minute,
		timeout:       5 * time.Second,
		window:        candles.DefaultWindow,
		bucket:        candles.DefaultBucket,
		defaultSymbol: "bitcoin",
		logger:        applogger.NewNop(),
		entries:       make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the feed name used in logs and metrics.
func (f *Feed) Name() string { return f.name }

// Interval returns the polling period.
func (f *Feed) Interval() time.Duration { return f.interval }

// Bucket returns the candle width.
func (f *Feed) Bucket() time.Duration { return f.bucket }

// Resolve returns the symbol the feed uses for s, the default when blank.
func (f *Feed) Resolve(s string) string { return f.normalize(s) }

func (f *Feed) normalize(symbol string) string {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return f.defaultSymbol
	}
	return symbol
}

// entryLocked returns the entry for symbol, creating it. f.mu must be held.
func (f *Feed) entryLocked(symbol string) *entry {
	e, ok := f.entries[symbol]
	if !ok {
		e = &entry{symbol: symbol, subs: make(map[uint64]UpdateFunc)}
		f.entries[symbol] = e
	}
	return e
}

// Subscribe registers cb for symbol (the default symbol when empty). The
// first subscriber starts the symbol's worker, which polls immediately and
// then on every tick. Later subscribers request one coalesced refresh.
func (f *Feed) Subscribe(symbol string, cb UpdateFunc) (*Subscription, error) {
	if cb == nil {
		return nil, fmt.Errorf("marketfeed: nil callback")
	}
	symbol = f.normalize(symbol)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, fmt.Errorf("marketfeed %s: closed", f.name)
	}

	e := f.entryLocked(symbol)
	f.nextID++
	sub := &Subscription{feed: f, symbol: symbol, id: f.nextID}
	e.subs[sub.id] = cb
	e.order = append(e.order, sub.id)

	if e.ticker == nil {
		e.ticker = f.clock.NewTicker(f.interval)
		e.stop = make(chan struct{})
		e.kick = make(chan struct{}, 1)
		f.wg.Add(1)
		go f.run(e, e.ticker, e.stop, e.kick)
		f.logger.Info("market feed started",
			applogger.String("feed", f.name),
			applogger.String("symbol", symbol),
			applogger.Duration("interval_ms", f.interval))
	} else {
		select {
		case e.kick <- struct{}{}:
		default:
		}
	}

	if f.metrics != nil {
		f.metrics.SetSubscribers(f.name, symbol, len(e.subs))
	}
	return sub, nil
}

// Unsubscribe is shorthand for sub.Unsubscribe.
func (f *Feed) Unsubscribe(sub *Subscription) {
	if sub != nil {
		sub.Unsubscribe()
	}
}

func (f *Feed) unsubscribe(sub *Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.entries[sub.symbol]
	if !ok {
		return
	}
	if _, ok := e.subs[sub.id]; !ok {
		return
	}
	delete(e.subs, sub.id)
	for i, id := range e.order {
		if id == sub.id {
			e.order = append(e.order[:i:i], e.order[i+1:]...)
			break
		}
	}

	if f.metrics != nil {
		f.metrics.SetSubscribers(f.name, sub.symbol, len(e.subs))
	}
	if len(e.subs) == 0 {
		f.stopLocked(e)
		if e.state.Load() == nil {
			delete(f.entries, e.symbol)
		}
		f.logger.Info("market feed idle",
			applogger.String("feed", f.name),
			applogger.String("symbol", sub.symbol))
	}
}

// stopLocked stops the entry's ticker and signals its worker. The cached
// state is kept so the next subscriber does not start cold.
func (f *Feed) stopLocked(e *entry) {
	if e.ticker == nil {
		return
	}
	e.ticker.Stop()
	close(e.stop)
	e.ticker, e.stop, e.kick = nil, nil, nil
}

// Current returns the cached snapshot and candles for symbol. The snapshot is
// nil before the first successful poll.
func (f *Feed) Current(symbol string) (*models.MarketSnapshot, []models.Candle) {
	st := f.State(symbol)
	if st == nil {
		return nil, nil
	}
	snap := st.Snapshot
	return &snap, st.Candles
}

// State returns the cached state for symbol, or nil.
func (f *Feed) State(symbol string) *State {
	symbol = f.normalize(symbol)
	f.mu.Lock()
	e, ok := f.entries[symbol]
	f.mu.Unlock()
	if !ok {
		return nil
	}
	return e.state.Load()
}

// Subscribers returns the number of callbacks registered for symbol.
func (f *Feed) Subscribers(symbol string) int {
	symbol = f.normalize(symbol)
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.entries[symbol]; ok {
		return len(e.subs)
	}
	return 0
}

// Refresh polls symbol synchronously and notifies subscribers on success.
// It returns ErrInFlight instead of starting a second concurrent poll. A
// symbol that has never polled successfully and has no subscribers is
// forgotten again when the poll fails.
func (f *Feed) Refresh(ctx context.Context, symbol string) error {
	symbol = f.normalize(symbol)
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return fmt.Errorf("marketfeed %s: closed", f.name)
	}
	e := f.entryLocked(symbol)
	f.mu.Unlock()

	err := f.poll(ctx, e)
	if err != nil && !errors.Is(err, ErrInFlight) {
		f.dropUnused(e)
	}
	return err
}

func (f *Feed) dropUnused(e *entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(e.subs) == 0 && e.ticker == nil && e.state.Load() == nil && f.entries[e.symbol] == e {
		delete(f.entries, e.symbol)
	}
}

// Close stops every worker and waits for them to exit.
func (f *Feed) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	for _, e := range f.entries {
		f.stopLocked(e)
	}
	f.mu.Unlock()

	f.wg.Wait()
	f.logger.Info("market feed closed", applogger.String("feed", f.name))
}

func (f *Feed) run(e *entry, ticker Ticker, stop, kick chan struct{}) {
	defer f.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	f.tick(ctx, e)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			select {
			case <-stop:
				return
			default:
			}
			f.tick(ctx, e)
		case <-kick:
			f.tick(ctx, e)
		}
	}
}

// tick polls on behalf of the worker. A tick that finds another poll in
// flight is queued once and re-run if that poll fails.
func (f *Feed) tick(ctx context.Context, e *entry) {
	if err := f.poll(ctx, e); !errors.Is(err, ErrInFlight) {
		return
	}
	e.pending.Store(true)
	if !e.inFlight.Load() && e.pending.CompareAndSwap(true, false) {
		f.requeue(e)
	}
	f.logger.Debug("poll skipped, previous still in flight",
		applogger.String("feed", f.name),
		applogger.String("symbol", e.symbol))
}

// requeue wakes the entry's worker unless it is stopped.
func (f *Feed) requeue(e *entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.kick == nil {
		return
	}
	select {
	case e.kick <- struct{}{}:
	default:
	}
}

// poll fetches once under the entry's in-flight latch. On failure the cached
// state is left untouched and no callback runs.
func (f *Feed) poll(ctx context.Context, e *entry) (err error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		return ErrInFlight
	}
	defer func() {
		e.inFlight.Store(false)
		if e.pending.CompareAndSwap(true, false) && err != nil {
			f.requeue(e)
		}
	}()

	start := f.clock.Now()
	fctx, cancel := context.WithTimeout(ctx, f.timeout)
	data, err := f.provider.Fetch(fctx, e.symbol)
	cancel()

	if f.metrics != nil {
		label := e.symbol
		if err != nil && e.state.Load() == nil {
			label = "unknown"
		}
		f.metrics.RecordPoll(f.name, label)
		f.metrics.RecordLatency("feed_poll_"+f.name, f.clock.Now().Sub(start).Seconds())
	}
	if err != nil {
		if f.metrics != nil {
			f.metrics.RecordError("feed_poll")
		}
		f.logger.Warn("market poll failed, keeping cached state",
			applogger.String("feed", f.name),
			applogger.String("symbol", e.symbol),
			applogger.Bool("has_cache", e.state.Load() != nil),
			applogger.Error(err))
		return err
	}

	now := f.clock.Now()
	st := &State{
		Symbol:    e.symbol,
		Snapshot:  data.Snapshot,
		Candles:   candles.Series(data.Ticks, now, f.window, f.bucket, data.Snapshot.Price),
		UpdatedAt: now,
	}
	e.state.Store(st)
	if f.metrics != nil {
		f.metrics.RecordLastPrice(e.symbol, st.Snapshot.Price)
	}

	for _, cb := range f.callbacks(e) {
		cb(*st)
	}
	return nil
}

func (f *Feed) callbacks(e *entry) []UpdateFunc {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]UpdateFunc, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.subs[id])
	}
	return out
}
