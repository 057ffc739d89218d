package api

import (
	"time"

	svccache "CoinPulse/internal/service/cache"
	"CoinPulse/internal/usecase"
	xhttp "CoinPulse/pkg/http"
	applogger "CoinPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// IndicesHandler serves the market-wide datasets.
type IndicesHandler struct {
	logger  *applogger.Logger
	indices *usecase.IndicesUseCase
}

func NewIndicesHandler(logger *applogger.Logger, indices *usecase.IndicesUseCase) *IndicesHandler {
	if logger == nil {
		logger = applogger.NewNop()
	}
	return &IndicesHandler{logger: logger, indices: indices}
}

func (h *IndicesHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/coins", h.Coins)
	g.GET("/fear-greed", h.FearGreed)
	g.GET("/vix", h.VIX)
}

func (h *IndicesHandler) Coins(c echo.Context) error {
	coins, fresh, err := h.indices.TopCoins(c.Request().Context())
	if err != nil {
		return failure(c, h.logger, "coins", err)
	}
	return cached(c, coins, h.indices.TTL().Coins, fresh)
}

func (h *IndicesHandler) FearGreed(c echo.Context) error {
	idx, fresh, err := h.indices.FearGreed(c.Request().Context())
	if err != nil {
		return failure(c, h.logger, "fear & greed index", err)
	}
	return cached(c, idx, h.indices.TTL().FearGreed, fresh)
}

func (h *IndicesHandler) VIX(c echo.Context) error {
	points, fresh, err := h.indices.VIX(c.Request().Context())
	if err != nil {
		return failure(c, h.logger, "vix", err)
	}
	return cached(c, points, h.indices.TTL().VIX, fresh)
}

// cached writes data with shared-cache headers. Stale copies get half the
// max age and a quarter of it as revalidation window.
func cached(c echo.Context, data interface{}, ttl time.Duration, fresh svccache.Freshness) error {
	maxAge, staleFor := ttl, ttl/2
	if fresh == svccache.Stale {
		maxAge, staleFor = ttl/2, ttl/4
	}
	return xhttp.CachedResponse(c, data, maxAge, staleFor, string(fresh))
}
