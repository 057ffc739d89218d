package metrics

import (
	"CoinPulse/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	polls        *prometheus.CounterVec
	subscribers  *prometheus.GaugeVec
	sentiments   *prometheus.CounterVec
	messagesSent *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastPrice    *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New registers the CoinPulse collectors on reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		polls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpulse_feed_polls_total",
				Help: "Market feed polls, successful or not",
			},
			[]string{"feed", "symbol"},
		),
		subscribers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinpulse_feed_subscribers",
				Help: "Active subscribers per feed and symbol",
			},
			[]string{"feed", "symbol"},
		),
		sentiments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpulse_sentiment_results_total",
				Help: "Scored news items by strategy and label",
			},
			[]string{"strategy", "label"},
		),
		messagesSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpulse_messages_sent_total",
				Help: "Total number of messages sent to backend",
			},
			[]string{"backend", "topic"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinpulse_last_price_usd",
				Help: "Last polled USD price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordPoll(feed, symbol string) {
	r.polls.WithLabelValues(feed, symbol).Inc()
}

func (r *Recorder) SetSubscribers(feed, symbol string, n int) {
	r.subscribers.WithLabelValues(feed, symbol).Set(float64(n))
}

func (r *Recorder) RecordSentiment(strategy string, label models.Sentiment) {
	r.sentiments.WithLabelValues(strategy, string(label)).Inc()
}

// RecordMessageSent records a message sent to a backend.
func (r *Recorder) RecordMessageSent(backend, topic string) {
	r.messagesSent.WithLabelValues(backend, topic).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
