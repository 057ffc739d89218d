package candles

import (
	"sort"
	"time"

	"CoinPulse/internal/domain/models"
)

const (
	// DefaultBucket and DefaultWindow give the 96 candle primary series.
	DefaultBucket = 15 * time.Minute
	DefaultWindow = 24 * time.Hour
)

// BucketStart returns floor(ts/bucket)*bucket in unix ms.
func BucketStart(ts int64, bucket time.Duration) int64 {
	b := bucket.Milliseconds()
	start := (ts / b) * b
	if ts < 0 && ts%b != 0 {
		start -= b
	}
	return start
}

// Aggregate groups ticks into fixed buckets. Open comes from the earliest
// tick of a bucket and close from the latest; on equal timestamps the tick
// that appears later in the input wins. The result is sorted by timestamp.
func Aggregate(ticks []models.OHLCTick, bucket time.Duration) []models.Candle {
	if len(ticks) == 0 || bucket <= 0 {
		return nil
	}

	sorted := make([]models.OHLCTick, len(ticks))
	copy(sorted, ticks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	out := make([]models.Candle, 0, len(sorted))
	for _, t := range sorted {
		key := BucketStart(t.Timestamp, bucket)
		if n := len(out); n > 0 && out[n-1].Timestamp == key {
			c := &out[n-1]
			if t.High > c.High {
				c.High = t.High
			}
			if t.Low < c.Low {
				c.Low = t.Low
			}
			c.Close = t.Close
			continue
		}
		out = append(out, models.Candle{
			Timestamp: key,
			Open:      t.Open,
			High:      t.High,
			Low:       t.Low,
			Close:     t.Close,
		})
	}
	return out
}

// Fill walks window/bucket buckets ending at the bucket that contains end.
// Missing buckets become flat candles at the previous close, or at fallback
// when no earlier candle exists. Candles outside the window are ignored
// except to seed the carried close.
func Fill(candles []models.Candle, end time.Time, window, bucket time.Duration, fallback float64) []models.Candle {
	if bucket <= 0 || window < bucket {
		return nil
	}

	n := int(window / bucket)
	step := bucket.Milliseconds()
	last := BucketStart(end.UnixMilli(), bucket)
	first := last - int64(n-1)*step

	byStart := make(map[int64]models.Candle, len(candles))
	prevClose := fallback
	seedTs := int64(0)
	seeded := false
	for _, c := range candles {
		switch {
		case c.Timestamp >= first && c.Timestamp <= last:
			byStart[c.Timestamp] = c
		case c.Timestamp < first && (!seeded || c.Timestamp > seedTs):
			prevClose, seedTs, seeded = c.Close, c.Timestamp, true
		}
	}

	out := make([]models.Candle, 0, n)
	for ts := first; ts <= last; ts += step {
		c, ok := byStart[ts]
		if !ok {
			c = models.Candle{Timestamp: ts, Open: prevClose, High: prevClose, Low: prevClose, Close: prevClose}
		}
		out = append(out, c)
		prevClose = c.Close
	}
	return out
}

// Series filters ticks to the window ending at now, aggregates them and fills
// gaps so the result always has exactly window/bucket candles.
func Series(ticks []models.OHLCTick, now time.Time, window, bucket time.Duration, livePrice float64) []models.Candle {
	last := BucketStart(now.UnixMilli(), bucket)
	first := last - int64(window/bucket-1)*bucket.Milliseconds()
	limit := last + bucket.Milliseconds()

	inWindow := make([]models.OHLCTick, 0, len(ticks))
	for _, t := range ticks {
		if t.Timestamp >= first && t.Timestamp < limit {
			inWindow = append(inWindow, t)
		}
	}
	return Fill(Aggregate(inWindow, bucket), now, window, bucket, livePrice)
}
