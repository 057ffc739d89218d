package sentiment

import (
	"context"
	"fmt"

	"CoinPulse/internal/domain/models"
)

const (
	StrategyClassifier = "classifier"
	StrategyLexicon    = "lexicon"

	titleWeight   = 0.4
	contentWeight = 0.6
)

// ClassifierStrategy scores title and description independently with the
// trained classifier and blends the two sub-scores.
type ClassifierStrategy struct {
	clf *Classifier
}

// NewClassifierStrategy trains a classifier and wraps it.
func NewClassifierStrategy() *ClassifierStrategy {
	return &ClassifierStrategy{clf: NewClassifier()}
}

func (s *ClassifierStrategy) Name() string { return StrategyClassifier }

func (s *ClassifierStrategy) Analyze(_ context.Context, item models.NewsItem) (models.SentimentResult, error) {
	titleLabel, titleScore, err := s.clf.Classify(item.Title)
	if err != nil {
		return models.SentimentResult{}, fmt.Errorf("classify title: %w", err)
	}
	contentLabel, contentScore, err := s.clf.Classify(item.Description)
	if err != nil {
		return models.SentimentResult{}, fmt.Errorf("classify description: %w", err)
	}

	score := titleWeight*titleScore + contentWeight*contentScore
	return models.SentimentResult{
		Sentiment:        models.LabelFor(score),
		Score:            score,
		Keywords:         CryptoKeywords(item.Title + " " + item.Description),
		Summary:          Summarize(item.Title, item.Description),
		TitleSentiment:   titleLabel,
		ContentSentiment: contentLabel,
		TitleScore:       titleScore,
		ContentScore:     contentScore,
		Strategy:         StrategyClassifier,
	}, nil
}

// LexiconStrategy scores with the bilingual keyword lexicon and engagement
// votes. It needs no training.
type LexiconStrategy struct{}

func NewLexiconStrategy() *LexiconStrategy { return &LexiconStrategy{} }

func (s *LexiconStrategy) Name() string { return StrategyLexicon }

func (s *LexiconStrategy) Analyze(_ context.Context, item models.NewsItem) (models.SentimentResult, error) {
	text := item.Title
	if item.Description != "" {
		text += " " + item.Description
	}

	score := ScoreByLexiconAndVotes(text, item.Votes)
	titleScore := lexiconScore(item.Title)
	contentScore := lexiconScore(item.Description)

	return models.SentimentResult{
		Sentiment:        models.LabelFor(score),
		Score:            score,
		Keywords:         CommonKeywords(text),
		Summary:          Summarize(item.Title, item.Description),
		TitleSentiment:   models.LabelFor(titleScore),
		ContentSentiment: models.LabelFor(contentScore),
		TitleScore:       titleScore,
		ContentScore:     contentScore,
		Strategy:         StrategyLexicon,
	}, nil
}
