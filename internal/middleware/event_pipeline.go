package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	applogger "CoinPulse/pkg/logger"
)

// EventPipeline sits between the market feed and the publisher. Feed
// callbacks run on the feed worker, so Enqueue never blocks: events go to
// a bounded buffer drained by one background goroutine. Bursts for the
// same symbol closer than minGap are collapsed to the first event.
type EventPipeline struct {
	pub     domrepo.Publisher
	metrics domrepo.Metrics
	logger  *applogger.Logger

	bufSize    int
	minGap     time.Duration
	maxRetries int
	timeout    time.Duration

	bufCh  chan *models.MarketEvent
	stopCh chan struct{}
	wg     sync.WaitGroup

	mu       sync.Mutex
	started  bool
	lastSeen map[string]time.Time
	now      func() time.Time
}

type PipelineOption func(*EventPipeline)

// WithBufferSize sets how many events may wait for the publisher.
func WithBufferSize(n int) PipelineOption {
	return func(p *EventPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithMinGap drops events for a symbol that arrive sooner than d after the
// previous accepted one.
func WithMinGap(d time.Duration) PipelineOption {
	return func(p *EventPipeline) { p.minGap = d }
}

// WithRetries sets publish attempts per event.
func WithRetries(n int) PipelineOption {
	return func(p *EventPipeline) {
		if n > 0 {
			p.maxRetries = n
		}
	}
}

func WithPublishTimeout(d time.Duration) PipelineOption {
	return func(p *EventPipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func WithPipelineLogger(l *applogger.Logger) PipelineOption {
	return func(p *EventPipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewEventPipeline creates a new pipeline.
func NewEventPipeline(pub domrepo.Publisher, metrics domrepo.Metrics, opts ...PipelineOption) *EventPipeline {
	p := &EventPipeline{
		pub:        pub,
		metrics:    metrics,
		logger:     applogger.NewNop(),
		bufSize:    256,
		maxRetries: 3,
		timeout:    10 * time.Second,
		stopCh:     make(chan struct{}),
		lastSeen:   make(map[string]time.Time),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.MarketEvent, p.bufSize)
	return p
}

// Start launches the background publisher.
func (p *EventPipeline) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	p.wg.Add(1)
	go p.drain()
}

// Stop publishes what is already buffered, bounded by ctx, and stops.
func (p *EventPipeline) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return nil
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event pipeline stop: %w", ctx.Err())
	}
}

// Enqueue validates and buffers ev. It reports false when the event was
// rejected, collapsed or dropped because the buffer is full.
func (p *EventPipeline) Enqueue(ev *models.MarketEvent) bool {
	if err := validateEvent(ev); err != nil {
		p.recordError("pipeline_validate")
		p.logger.Warn("market event rejected", applogger.Error(err))
		return false
	}
	if !p.allow(ev.Feed+"/"+ev.Symbol, p.now()) {
		p.recordError("pipeline_throttle")
		return false
	}

	select {
	case p.bufCh <- ev:
		return true
	default:
		p.recordError("pipeline_buffer_full")
		p.logger.Warn("market event dropped, buffer full",
			applogger.String("symbol", ev.Symbol),
			applogger.Int("buffer", p.bufSize),
		)
		return false
	}
}

// Pending returns the number of buffered events.
func (p *EventPipeline) Pending() int { return len(p.bufCh) }

func (p *EventPipeline) drain() {
	defer p.wg.Done()
	for {
		select {
		case ev := <-p.bufCh:
			p.publish(ev)
		case <-p.stopCh:
			for {
				select {
				case ev := <-p.bufCh:
					p.publish(ev)
				default:
					return
				}
			}
		}
	}
}

func (p *EventPipeline) publish(ev *models.MarketEvent) {
	start := time.Now()
	backoff := 50 * time.Millisecond
	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		err := p.pub.PublishMarket(ctx, ev)
		cancel()
		if err == nil {
			if p.metrics != nil {
				p.metrics.RecordLatency("pipeline_publish", time.Since(start).Seconds())
			}
			return
		}
		if attempt >= p.maxRetries {
			p.recordError("pipeline_publish")
			p.logger.Error("market event publish failed",
				applogger.String("symbol", ev.Symbol),
				applogger.String("event_id", ev.EventID),
				applogger.Int("attempts", attempt),
				applogger.Error(err),
			)
			return
		}
		select {
		case <-time.After(backoff):
		case <-p.stopCh:
			// stopping: retry without waiting
		}
		if backoff < 2*time.Second {
			backoff *= 2
		}
	}
}

func (p *EventPipeline) recordError(kind string) {
	if p.metrics != nil {
		p.metrics.RecordError(kind)
	}
}

func validateEvent(ev *models.MarketEvent) error {
	if ev == nil {
		return fmt.Errorf("event nil")
	}
	if ev.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if ev.Snapshot.Price < 0 {
		return fmt.Errorf("negative price")
	}
	if ev.PublishedAt.IsZero() {
		return fmt.Errorf("published_at missing")
	}
	return nil
}

func (p *EventPipeline) allow(key string, now time.Time) bool {
	if p.minGap <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last, ok := p.lastSeen[key]
	if ok && now.Sub(last) < p.minGap {
		return false
	}
	p.lastSeen[key] = now
	return true
}
