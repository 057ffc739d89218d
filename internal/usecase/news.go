package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	svccache "CoinPulse/internal/service/cache"
	"CoinPulse/internal/services/sentiment"
	pkgcache "CoinPulse/pkg/cache"
	applogger "CoinPulse/pkg/logger"
)

// NewsConfig selects strategies and cache lifetimes for the news endpoints.
type NewsConfig struct {
	NewsStrategy string
	HotStrategy  string
	NewsTTL      time.Duration
	HotTTL       time.Duration
}

// NewsUseCase fetches provider posts and scores them.
type NewsUseCase struct {
	news   domrepo.NewsProvider
	scorer *sentiment.Scorer
	cache  *svccache.Fallback
	pub    domrepo.Publisher
	logger *applogger.Logger
	cfg    NewsConfig
}

func NewNewsUseCase(news domrepo.NewsProvider, scorer *sentiment.Scorer, cache *svccache.Fallback, pub domrepo.Publisher, logger *applogger.Logger, cfg NewsConfig) *NewsUseCase {
	if logger == nil {
		logger = applogger.NewNop()
	}
	return &NewsUseCase{news: news, scorer: scorer, cache: cache, pub: pub, logger: logger, cfg: cfg}
}

func (uc *NewsUseCase) Config() NewsConfig { return uc.cfg }

// SentimentSummary aggregates the labels of a scored page.
type SentimentSummary struct {
	Positive     int              `json:"positive"`
	Negative     int              `json:"negative"`
	Neutral      int              `json:"neutral"`
	AverageScore float64          `json:"averageScore"`
	Overall      models.Sentiment `json:"overall"`
}

// CoinSentiment is the response of the per-coin sentiment endpoint.
type CoinSentiment struct {
	CoinID  string              `json:"coinId"`
	Summary SentimentSummary    `json:"summary"`
	Items   []models.ScoredNews `json:"items"`
}

// LatestNews scores the latest posts with the news strategy. Freshly scored
// pages are also published as scored news events.
func (uc *NewsUseCase) LatestNews(ctx context.Context, limit int) ([]models.ScoredNews, svccache.Freshness, error) {
	key := pkgcache.Key("news:latest", limit)
	return svccache.Load(ctx, uc.cache, key, uc.cfg.NewsTTL, func(ctx context.Context) ([]models.ScoredNews, error) {
		scored, err := uc.fetchAndScore(ctx, "", limit, uc.cfg.NewsStrategy)
		if err != nil {
			return nil, err
		}
		uc.publish(ctx, scored)
		return scored, nil
	})
}

// CoinSentiment scores the hot posts of one coin with the hot strategy.
func (uc *NewsUseCase) CoinSentiment(ctx context.Context, coinID string, limit int) (*CoinSentiment, svccache.Freshness, error) {
	key := pkgcache.Key("news:hot", coinID, limit)
	items, fresh, err := svccache.Load(ctx, uc.cache, key, uc.cfg.HotTTL, func(ctx context.Context) ([]models.ScoredNews, error) {
		return uc.fetchAndScore(ctx, coinID, limit, uc.cfg.HotStrategy)
	})
	if err != nil {
		return nil, "", err
	}
	return &CoinSentiment{CoinID: coinID, Summary: Summarize(items), Items: items}, fresh, nil
}

// Analyze scores one item with strategy, or the default strategy when empty.
func (uc *NewsUseCase) Analyze(ctx context.Context, item models.NewsItem, strategy string) (models.SentimentResult, error) {
	return uc.scorer.AnalyzeWith(ctx, strategy, item)
}

// ScoreAndPublish scores one incoming post with the default strategy and
// publishes the result.
func (uc *NewsUseCase) ScoreAndPublish(ctx context.Context, post models.NewsPost) (*models.ScoredNews, error) {
	res, err := uc.scorer.Analyze(ctx, post.Item())
	if err != nil {
		return nil, err
	}
	scored := &models.ScoredNews{NewsPost: post, Analysis: res}
	if err := uc.pub.PublishScoredNews(ctx, scored); err != nil {
		return nil, fmt.Errorf("publish scored news %s: %w", post.ID, err)
	}
	return scored, nil
}

func (uc *NewsUseCase) fetchAndScore(ctx context.Context, currency string, limit int, strategy string) ([]models.ScoredNews, error) {
	posts, err := uc.news.Posts(ctx, currency, limit)
	if err != nil {
		return nil, err
	}
	out := make([]models.ScoredNews, 0, len(posts))
	for _, p := range posts {
		res, err := uc.scorer.AnalyzeWith(ctx, strategy, p.Item())
		if err != nil {
			return nil, fmt.Errorf("score post %s: %w", p.ID, err)
		}
		out = append(out, models.ScoredNews{NewsPost: p, Analysis: res})
	}

	s := Summarize(out)
	uc.logger.Debug("news scored",
		applogger.String("currency", currency),
		applogger.String("strategy", strategy),
		applogger.Int("positive", s.Positive),
		applogger.Int("negative", s.Negative),
		applogger.Int("neutral", s.Neutral),
	)
	return out, nil
}

func (uc *NewsUseCase) publish(ctx context.Context, scored []models.ScoredNews) {
	if uc.pub == nil {
		return
	}
	for i := range scored {
		if err := uc.pub.PublishScoredNews(ctx, &scored[i]); err != nil {
			uc.logger.Warn("publish scored news failed", applogger.String("id", scored[i].ID), applogger.Error(err))
			return
		}
	}
}

// Summarize counts labels and averages scores. An empty page is neutral.
func Summarize(items []models.ScoredNews) SentimentSummary {
	var s SentimentSummary
	var total float64
	for _, it := range items {
		switch it.Analysis.Sentiment {
		case models.Positive:
			s.Positive++
		case models.Negative:
			s.Negative++
		default:
			s.Neutral++
		}
		total += it.Analysis.Score
	}
	if len(items) > 0 {
		s.AverageScore = math.Round(total/float64(len(items))*1e4) / 1e4
	}
	s.Overall = models.LabelFor(s.AverageScore)
	return s
}
