package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	Price float64 `json:"price"`
	Rank  int     `json:"rank"`
}

func newTestMemory(t *testing.T, opts ...MemoryOption) (*MemoryCache, *time.Time) {
	t.Helper()
	now := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	mc := NewMemoryCache(append([]MemoryOption{WithMemoryCleanup(0)}, opts...)...)
	mc.now = func() time.Time { return now }
	t.Cleanup(func() { _ = mc.Close() })
	return mc, &now
}

func TestMemoryRoundTrip(t *testing.T) {
	mc, _ := newTestMemory(t)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "btc", point{Price: 64123.45, Rank: 1}, time.Minute))

	var got point
	require.NoError(t, mc.Get(ctx, "btc", &got))
	assert.Equal(t, point{Price: 64123.45, Rank: 1}, got)

	var missing point
	require.ErrorIs(t, mc.Get(ctx, "eth", &missing), ErrCacheMiss)
}

func TestMemoryExpiry(t *testing.T) {
	mc, now := newTestMemory(t)
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", 1, time.Minute))
	*now = now.Add(2 * time.Minute)

	var v int
	require.ErrorIs(t, mc.Get(ctx, "k", &v), ErrCacheMiss)
	ok, err := mc.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryEvictsLeastRecentlyUsed(t *testing.T) {
	mc, now := newTestMemory(t, WithMemoryMaxSize(2))
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", 1, 0))
	*now = now.Add(time.Second)
	require.NoError(t, mc.Set(ctx, "b", 2, 0))
	*now = now.Add(time.Second)

	var v int
	require.NoError(t, mc.Get(ctx, "a", &v))
	*now = now.Add(time.Second)
	require.NoError(t, mc.Set(ctx, "c", 3, 0))

	assert.Equal(t, 2, mc.Len())
	require.ErrorIs(t, mc.Get(ctx, "b", &v), ErrCacheMiss)
	require.NoError(t, mc.Get(ctx, "a", &v))
}

func TestMemoryTryLock(t *testing.T) {
	mc, now := newTestMemory(t)
	ctx := context.Background()

	ok, err := mc.TryLock(ctx, "lock:x", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = mc.TryLock(ctx, "lock:x", time.Second)
	assert.False(t, ok)

	*now = now.Add(2 * time.Second)
	ok, _ = mc.TryLock(ctx, "lock:x", time.Second)
	assert.True(t, ok, "expired lock is reacquirable")

	require.NoError(t, mc.Unlock(ctx, "lock:x"))
	ok, _ = mc.TryLock(ctx, "lock:x", time.Second)
	assert.True(t, ok)
}

func TestLayeredReadsThroughToL2(t *testing.T) {
	l2, _ := newTestMemory(t)
	lc := NewLayeredCache(l2, WithLayeredMemoryTTL(time.Second))
	defer lc.l1.Close()
	ctx := context.Background()

	require.NoError(t, l2.Set(ctx, "k", point{Price: 2}, time.Hour))

	var got point
	require.NoError(t, lc.Get(ctx, "k", &got))
	assert.Equal(t, 2.0, got.Price)

	ok, _ := lc.l1.Exists(ctx, "k")
	assert.True(t, ok, "L2 hit populates L1")

	require.NoError(t, lc.Delete(ctx, "k"))
	require.ErrorIs(t, lc.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "news:btc:20", Key("news", "btc", 20))
	assert.Equal(t, "coins", Key("coins"))
}
