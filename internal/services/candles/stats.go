package candles

import (
	"math"
	"time"

	"CoinPulse/internal/domain/models"
)

// LogReturns computes r_t = ln(C_t / C_{t-1}). Non-positive closes yield 0.
// It returns nil for fewer than two candles.
func LogReturns(candles []models.Candle) []float64 {
	if len(candles) < 2 {
		return nil
	}
	out := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		cur := candles[i].Close
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// RealizedVolatility is the annualized sample deviation of the last window returns.
func RealizedVolatility(logReturns []float64, window int, barsPerYear float64) float64 {
	if window <= 1 || len(logReturns) < window {
		return 0
	}
	var sum, sum2 float64
	for _, r := range logReturns[len(logReturns)-window:] {
		sum += r
		sum2 += r * r
	}
	n := float64(window)
	mean := sum / n
	variance := (sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance * barsPerYear)
}

// BarsPerYear returns how many buckets of the given width fit in 365 days.
func BarsPerYear(bucket time.Duration) float64 {
	if bucket <= 0 {
		return 0
	}
	return float64(365*24*time.Hour) / float64(bucket)
}

// Summarize computes stats over the whole series.
func Summarize(candles []models.Candle, bucket time.Duration) models.CandleStats {
	st := models.CandleStats{Count: len(candles)}
	if len(candles) == 0 {
		return st
	}
	st.LastClose = candles[len(candles)-1].Close
	rets := LogReturns(candles)
	st.RealizedVolatility = RealizedVolatility(rets, len(rets), BarsPerYear(bucket))
	return st
}
