package metrics

import (
	"testing"

	"CoinPulse/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordPoll("primary", "bitcoin")
	r.RecordPoll("primary", "bitcoin")
	r.RecordSentiment("lexicon", models.Positive)
	r.SetSubscribers("primary", "bitcoin", 3)
	r.RecordLastPrice("bitcoin", 64000.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.polls.WithLabelValues("primary", "bitcoin")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.sentiments.WithLabelValues("lexicon", "positive")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.subscribers.WithLabelValues("primary", "bitcoin")))
	assert.Equal(t, 64000.5, testutil.ToFloat64(r.lastPrice.WithLabelValues("bitcoin")))
}

func TestRecordersOnSeparateRegistries(t *testing.T) {
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}
