package alternative

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/service/ratelimit"
	"CoinPulse/internal/service/upstream"
	"CoinPulse/pkg/util"
)

const Name = "alternative"

// Client reads the alternative.me Crypto Fear & Greed index.
type Client struct {
	base *upstream.Base
}

func New(baseURL string, timeout time.Duration, limiter *ratelimit.Limiter) *Client {
	return &Client{base: upstream.NewBase(Name, baseURL, timeout, upstream.WithLimiter(limiter))}
}

type fngRow struct {
	Value               string `json:"value"`
	ValueClassification string `json:"value_classification"`
	Timestamp           string `json:"timestamp"`
}

type fngResponse struct {
	Data []fngRow `json:"data"`
}

// FearGreed returns the latest reading followed by up to limit-1 older ones.
// Timestamps are converted to unix ms.
func (c *Client) FearGreed(ctx context.Context, limit int) (models.FearGreedIndex, error) {
	if limit <= 0 {
		limit = 1
	}
	var resp fngResponse
	err := c.base.GetJSONWithRetry(ctx, "/fng/", map[string][]string{"limit": {strconv.Itoa(limit)}}, &resp, upstream.Attempts)
	if err != nil {
		return models.FearGreedIndex{}, err
	}
	if len(resp.Data) == 0 {
		return models.FearGreedIndex{}, fmt.Errorf("%s: empty index: %w", Name, models.ErrMalformedPayload)
	}

	points := make([]models.FearGreedPoint, 0, len(resp.Data))
	for i, row := range resp.Data {
		v := util.ParseIntDefault(row.Value, -1)
		if v < 0 {
			return models.FearGreedIndex{}, fmt.Errorf("%s: row %d value %q: %w", Name, i, row.Value, models.ErrMalformedPayload)
		}
		points = append(points, models.FearGreedPoint{
			Value:     v,
			ValueText: row.ValueClassification,
			Timestamp: util.UnixSecondsToMillis(row.Timestamp),
		})
	}
	return models.FearGreedIndex{
		FearGreedPoint: points[0],
		PreviousValues: points[1:],
	}, nil
}
