package candles

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
)

var base = time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)

func ms(t time.Time) int64 { return t.UnixMilli() }

func TestBucketStart(t *testing.T) {
	ts := ms(base.Add(17*time.Minute + 3*time.Second))
	assert.Equal(t, ms(base.Add(15*time.Minute)), BucketStart(ts, DefaultBucket))
	assert.Equal(t, int64(-900000), BucketStart(-1, DefaultBucket))
}

func TestAggregate(t *testing.T) {
	ticks := []models.OHLCTick{
		{Timestamp: ms(base.Add(5 * time.Minute)), Open: 11, High: 13, Low: 10, Close: 12},
		{Timestamp: ms(base.Add(1 * time.Minute)), Open: 10, High: 11, Low: 9, Close: 11},
		{Timestamp: ms(base.Add(16 * time.Minute)), Open: 20, High: 21, Low: 19, Close: 20},
		{Timestamp: ms(base.Add(5 * time.Minute)), Open: 12, High: 12, Low: 8, Close: 14},
	}

	got := Aggregate(ticks, DefaultBucket)
	require.Len(t, got, 2)
	assert.Equal(t, models.Candle{Timestamp: ms(base), Open: 10, High: 13, Low: 8, Close: 14}, got[0])
	assert.Equal(t, models.Candle{Timestamp: ms(base.Add(15 * time.Minute)), Open: 20, High: 21, Low: 19, Close: 20}, got[1])
}

func TestAggregateEmpty(t *testing.T) {
	assert.Nil(t, Aggregate(nil, DefaultBucket))
}

func TestSeriesFillsMissingBucket(t *testing.T) {
	now := base.Add(24*time.Hour - time.Minute)
	start := now.Add(-DefaultWindow).Add(time.Minute)

	var ticks []models.OHLCTick
	missing := 40
	for i := 0; i < 96; i++ {
		if i == missing {
			continue
		}
		p := float64(100 + i)
		ts := start.Add(time.Duration(i) * DefaultBucket)
		ticks = append(ticks,
			models.OHLCTick{Timestamp: ms(ts), Open: p, High: p + 1, Low: p - 1, Close: p + 0.5},
			models.OHLCTick{Timestamp: ms(ts.Add(7 * time.Minute)), Open: p + 0.5, High: p + 2, Low: p, Close: p + 0.25},
		)
	}

	got := Series(ticks, now, DefaultWindow, DefaultBucket, 999)
	require.Len(t, got, 96)

	for i := 1; i < len(got); i++ {
		require.Equal(t, DefaultBucket.Milliseconds(), got[i].Timestamp-got[i-1].Timestamp)
	}

	prev := got[missing-1]
	gap := got[missing]
	assert.Equal(t, prev.Close, gap.Open)
	assert.Equal(t, prev.Close, gap.High)
	assert.Equal(t, prev.Close, gap.Low)
	assert.Equal(t, prev.Close, gap.Close)
	assert.Equal(t, 100.0+float64(missing-1)+0.25, gap.Close)
}

func TestSeriesUsesLivePriceBeforeFirstBucket(t *testing.T) {
	now := base.Add(24 * time.Hour)
	ticks := []models.OHLCTick{
		{Timestamp: ms(now.Add(-30 * time.Minute)), Open: 5, High: 6, Low: 4, Close: 5.5},
	}

	got := Series(ticks, now, DefaultWindow, DefaultBucket, 42)
	require.Len(t, got, 96)
	assert.Equal(t, 42.0, got[0].Close)
	assert.Equal(t, 5.5, got[93].Close)
	assert.Equal(t, 5.5, got[95].Open)
}

func TestSeriesDropsTicksOutsideWindow(t *testing.T) {
	now := base.Add(24 * time.Hour)
	ticks := []models.OHLCTick{
		{Timestamp: ms(now.Add(-48 * time.Hour)), Open: 1, High: 1, Low: 1, Close: 1},
		{Timestamp: ms(now.Add(time.Hour)), Open: 2, High: 2, Low: 2, Close: 2},
	}

	got := Series(ticks, now, DefaultWindow, DefaultBucket, 7)
	require.Len(t, got, 96)
	for _, c := range got {
		assert.Equal(t, 7.0, c.Close)
	}
	assert.Equal(t, BucketStart(ms(now), DefaultBucket), got[95].Timestamp)
}

func TestFillSeedsFromEarlierCandle(t *testing.T) {
	end := base.Add(time.Hour)
	candles := []models.Candle{{Timestamp: ms(base.Add(-2 * time.Hour)), Close: 3}}

	got := Fill(candles, end, time.Hour, DefaultBucket, 9)
	require.Len(t, got, 4)
	for _, c := range got {
		assert.Equal(t, 3.0, c.Close)
	}
}
