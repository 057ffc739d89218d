package sentiment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/domain/repository"
	"CoinPulse/internal/domain/service"
)

// Scorer dispatches news items to a named strategy.
type Scorer struct {
	strategies map[string]service.SentimentStrategy
	def        string
	metrics    repository.Metrics
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithStrategy registers an additional or replacement strategy.
func WithStrategy(s service.SentimentStrategy) Option {
	return func(sc *Scorer) { sc.strategies[s.Name()] = s }
}

// WithMetrics records one observation per analyzed item.
func WithMetrics(m repository.Metrics) Option {
	return func(sc *Scorer) { sc.metrics = m }
}

// NewScorer builds a scorer with both built-in strategies and def as the default.
func NewScorer(def string, opts ...Option) (*Scorer, error) {
	sc := &Scorer{
		strategies: map[string]service.SentimentStrategy{
			StrategyClassifier: NewClassifierStrategy(),
			StrategyLexicon:    NewLexiconStrategy(),
		},
		def: def,
	}
	for _, opt := range opts {
		opt(sc)
	}
	if _, ok := sc.strategies[def]; !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownStrategy, def)
	}
	return sc, nil
}

// Default returns the name of the configured default strategy.
func (sc *Scorer) Default() string { return sc.def }

// Strategies lists registered strategy names in sorted order.
func (sc *Scorer) Strategies() []string {
	names := make([]string, 0, len(sc.strategies))
	for n := range sc.strategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Analyze scores with the default strategy.
func (sc *Scorer) Analyze(ctx context.Context, item models.NewsItem) (models.SentimentResult, error) {
	return sc.AnalyzeWith(ctx, sc.def, item)
}

// AnalyzeWith scores with the named strategy; an empty name means the default.
func (sc *Scorer) AnalyzeWith(ctx context.Context, name string, item models.NewsItem) (models.SentimentResult, error) {
	if name == "" {
		name = sc.def
	}
	st, ok := sc.strategies[name]
	if !ok {
		return models.SentimentResult{}, fmt.Errorf("%w: %q", models.ErrUnknownStrategy, name)
	}

	start := time.Now()
	res, err := st.Analyze(ctx, item)
	if sc.metrics != nil {
		sc.metrics.RecordLatency("sentiment_"+name, time.Since(start).Seconds())
		if err != nil {
			sc.metrics.RecordError("sentiment")
		} else {
			sc.metrics.RecordSentiment(name, res.Sentiment)
		}
	}
	return res, err
}
