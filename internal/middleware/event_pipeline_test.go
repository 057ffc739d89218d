package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"CoinPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu      sync.Mutex
	events  []*models.MarketEvent
	failFor int
	calls   int
	block   chan struct{}
}

func (f *fakePublisher) PublishMarket(ctx context.Context, ev *models.MarketEvent) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failFor {
		return errors.New("broker down")
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) PublishScoredNews(context.Context, *models.ScoredNews) error { return nil }
func (f *fakePublisher) Close() error                                                { return nil }

func (f *fakePublisher) published() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func event(symbol string) *models.MarketEvent {
	return &models.MarketEvent{
		EventID:     symbol + "-1",
		Feed:        "primary",
		Symbol:      symbol,
		Snapshot:    models.MarketSnapshot{Price: 1},
		PublishedAt: time.Unix(1728554400, 0),
	}
}

func TestPipelinePublishesAndDrainsOnStop(t *testing.T) {
	pub := &fakePublisher{}
	p := NewEventPipeline(pub, nil)
	p.Start()

	require.True(t, p.Enqueue(event("bitcoin")))
	require.True(t, p.Enqueue(event("ethereum")))
	require.NoError(t, p.Stop(context.Background()))

	assert.Equal(t, 2, pub.published())
}

func TestPipelineRetriesPublish(t *testing.T) {
	pub := &fakePublisher{failFor: 2}
	p := NewEventPipeline(pub, nil, WithRetries(3))
	p.Start()

	require.True(t, p.Enqueue(event("bitcoin")))
	require.NoError(t, p.Stop(context.Background()))

	assert.Equal(t, 1, pub.published())
	assert.Equal(t, 3, pub.calls)
}

func TestPipelineRejectsInvalidEvents(t *testing.T) {
	p := NewEventPipeline(&fakePublisher{}, nil)
	assert.False(t, p.Enqueue(nil))
	assert.False(t, p.Enqueue(&models.MarketEvent{Symbol: "bitcoin"}))
}

func TestPipelineEnqueueNeverBlocks(t *testing.T) {
	pub := &fakePublisher{block: make(chan struct{})}
	p := NewEventPipeline(pub, nil, WithBufferSize(1))

	// not started: nothing drains the buffer
	assert.True(t, p.Enqueue(event("bitcoin")))
	assert.False(t, p.Enqueue(event("ethereum")))
	assert.Equal(t, 1, p.Pending())
}

func TestPipelineCollapsesBursts(t *testing.T) {
	p := NewEventPipeline(&fakePublisher{}, nil, WithMinGap(time.Minute))
	now := time.Unix(1728554400, 0)
	p.now = func() time.Time { return now }

	assert.True(t, p.Enqueue(event("bitcoin")))
	assert.False(t, p.Enqueue(event("bitcoin")))
	assert.True(t, p.Enqueue(event("ethereum")))

	now = now.Add(time.Minute)
	assert.True(t, p.Enqueue(event("bitcoin")))
}
