package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	pkgkafka "CoinPulse/pkg/kafka"

	"github.com/google/uuid"
)

// NewsScoringHandler consumes raw news posts, scores them with the default
// strategy and republishes them as scored news.
type NewsScoringHandler struct {
	topic   string
	news    *NewsUseCase
	metrics domrepo.Metrics
}

func NewNewsScoringHandler(topic string, news *NewsUseCase, metrics domrepo.Metrics) *NewsScoringHandler {
	return &NewsScoringHandler{topic: topic, news: news, metrics: metrics}
}

func (h *NewsScoringHandler) Topic() string { return h.topic }

// Handle accepts a NewsPost or a bare NewsItem document.
func (h *NewsScoringHandler) Handle(ctx context.Context, b []byte) error {
	var post models.NewsPost
	if err := json.Unmarshal(b, &post); err != nil {
		h.recordError("consumer_unmarshal")
		return fmt.Errorf("decode raw news: %w", err)
	}
	if strings.TrimSpace(post.Title) == "" && strings.TrimSpace(post.Description) == "" {
		h.recordError("consumer_empty_news")
		return fmt.Errorf("raw news has neither title nor description")
	}
	if post.ID == "" {
		post.ID = uuid.NewString()
	}

	start := time.Now()
	if _, err := h.news.ScoreAndPublish(ctx, post); err != nil {
		h.recordError("consumer_score")
		return err
	}
	if h.metrics != nil {
		h.metrics.RecordLatency("news_scoring", time.Since(start).Seconds())
		if !post.PublishedAt.IsZero() {
			h.metrics.RecordLatency("news_e2e", time.Since(post.PublishedAt).Seconds())
		}
	}
	return nil
}

func (h *NewsScoringHandler) recordError(kind string) {
	if h.metrics != nil {
		h.metrics.RecordError(kind)
	}
}

var _ pkgkafka.MessageHandler = (*NewsScoringHandler)(nil)
