package usecase

import (
	"context"
	"time"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	svccache "CoinPulse/internal/service/cache"
)

// IndicesTTL sets how long each dashboard dataset counts as fresh.
type IndicesTTL struct {
	Coins     time.Duration
	FearGreed time.Duration
	VIX       time.Duration
}

// IndicesUseCase serves the market-wide datasets: top coins, Fear & Greed
// and VIX. Each is cached and served stale when its upstream fails.
type IndicesUseCase struct {
	coins     domrepo.CoinLister
	fearGreed domrepo.FearGreedProvider
	vix       domrepo.VIXProvider
	cache     *svccache.Fallback
	ttl       IndicesTTL
	history   int
}

func NewIndicesUseCase(
	coins domrepo.CoinLister,
	fearGreed domrepo.FearGreedProvider,
	vix domrepo.VIXProvider,
	cache *svccache.Fallback,
	ttl IndicesTTL,
) *IndicesUseCase {
	return &IndicesUseCase{
		coins:     coins,
		fearGreed: fearGreed,
		vix:       vix,
		cache:     cache,
		ttl:       ttl,
		history:   7,
	}
}

func (uc *IndicesUseCase) TTL() IndicesTTL { return uc.ttl }

func (uc *IndicesUseCase) TopCoins(ctx context.Context) ([]models.CoinListing, svccache.Freshness, error) {
	return svccache.Load(ctx, uc.cache, "coins:top", uc.ttl.Coins, uc.coins.TopCoins)
}

// FearGreed returns the latest index with a week of history.
func (uc *IndicesUseCase) FearGreed(ctx context.Context) (models.FearGreedIndex, svccache.Freshness, error) {
	return svccache.Load(ctx, uc.cache, "index:fear_greed", uc.ttl.FearGreed, func(ctx context.Context) (models.FearGreedIndex, error) {
		return uc.fearGreed.FearGreed(ctx, uc.history)
	})
}

func (uc *IndicesUseCase) VIX(ctx context.Context) ([]models.IndexPoint, svccache.Freshness, error) {
	return svccache.Load(ctx, uc.cache, "index:vix", uc.ttl.VIX, uc.vix.VIX)
}
