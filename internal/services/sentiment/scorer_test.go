package sentiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
)

type recordingMetrics struct {
	labels map[string][]models.Sentiment
	errors int
}

func (m *recordingMetrics) RecordPoll(string, string)          {}
func (m *recordingMetrics) RecordError(string)                 { m.errors++ }
func (m *recordingMetrics) RecordLastPrice(string, float64)    {}
func (m *recordingMetrics) RecordLatency(string, float64)      {}
func (m *recordingMetrics) SetSubscribers(string, string, int) {}
func (m *recordingMetrics) RecordMessageSent(string, string)   {}
func (m *recordingMetrics) RecordSentiment(s string, l models.Sentiment) {
	if m.labels == nil {
		m.labels = make(map[string][]models.Sentiment)
	}
	m.labels[s] = append(m.labels[s], l)
}

func TestNewScorerUnknownDefault(t *testing.T) {
	_, err := NewScorer("oracle")
	require.ErrorIs(t, err, models.ErrUnknownStrategy)
}

func TestScorerStrategies(t *testing.T) {
	sc, err := NewScorer(StrategyLexicon)
	require.NoError(t, err)
	assert.Equal(t, []string{StrategyClassifier, StrategyLexicon}, sc.Strategies())
	assert.Equal(t, StrategyLexicon, sc.Default())
}

func TestScorerClassifierWeights(t *testing.T) {
	m := &recordingMetrics{}
	sc, err := NewScorer(StrategyClassifier, WithMetrics(m))
	require.NoError(t, err)

	item := models.NewsItem{
		Title:       "Bitcoin hits record high",
		Description: "Analysts fear a security breach. The exchange denied any hack.",
	}
	res, err := sc.Analyze(context.Background(), item)
	require.NoError(t, err)

	assert.InDelta(t, 0.4*res.TitleScore+0.6*res.ContentScore, res.Score, 1e-12)
	assert.Equal(t, models.LabelFor(res.Score), res.Sentiment)
	assert.Equal(t, models.Positive, res.TitleSentiment)
	assert.Equal(t, models.Negative, res.ContentSentiment)
	assert.Equal(t, []string{"bitcoin", "exchange"}, res.Keywords)
	assert.Equal(t, "Analysts fear a security breach.", res.Summary)
	assert.Equal(t, []models.Sentiment{res.Sentiment}, m.labels[StrategyClassifier])
}

func TestScorerEmptyDescription(t *testing.T) {
	sc, err := NewScorer(StrategyClassifier)
	require.NoError(t, err)

	for _, name := range sc.Strategies() {
		res, err := sc.AnalyzeWith(context.Background(), name, models.NewsItem{Title: "Price crash ahead"})
		require.NoError(t, err)
		assert.Equal(t, "Price crash ahead", res.Summary, name)
		assert.Equal(t, models.Neutral, res.ContentSentiment, name)
		assert.Zero(t, res.ContentScore, name)
	}
}

func TestScorerUnknownStrategy(t *testing.T) {
	m := &recordingMetrics{}
	sc, err := NewScorer(StrategyLexicon, WithMetrics(m))
	require.NoError(t, err)

	_, err = sc.AnalyzeWith(context.Background(), "oracle", models.NewsItem{Title: "x"})
	require.ErrorIs(t, err, models.ErrUnknownStrategy)
	assert.Empty(t, m.labels)
}

func TestScorerEmptyInputNeutral(t *testing.T) {
	sc, err := NewScorer(StrategyClassifier)
	require.NoError(t, err)

	res, err := sc.Analyze(context.Background(), models.NewsItem{})
	require.NoError(t, err)
	assert.Equal(t, models.Neutral, res.Sentiment)
	assert.Zero(t, res.Score)
	assert.Empty(t, res.Keywords)
}
