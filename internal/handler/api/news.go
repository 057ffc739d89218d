package api

import (
	"errors"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/usecase"
	xhttp "CoinPulse/pkg/http"
	applogger "CoinPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// NewsHandler serves scored news and ad-hoc sentiment analysis.
type NewsHandler struct {
	logger *applogger.Logger
	news   *usecase.NewsUseCase
}

func NewNewsHandler(logger *applogger.Logger, news *usecase.NewsUseCase) *NewsHandler {
	if logger == nil {
		logger = applogger.NewNop()
	}
	return &NewsHandler{logger: logger, news: news}
}

func (h *NewsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/news", h.News)
	g.GET("/sentiment", h.Sentiment)
	g.POST("/sentiment/analyze", h.Analyze)
}

func (h *NewsHandler) News(c echo.Context) error {
	req := &models.NewsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	items, fresh, err := h.news.LatestNews(c.Request().Context(), req.Limit)
	if err != nil {
		return failure(c, h.logger, "news", err)
	}
	return cached(c, items, h.news.Config().NewsTTL, fresh)
}

func (h *NewsHandler) Sentiment(c echo.Context) error {
	req := &models.SentimentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, fresh, err := h.news.CoinSentiment(c.Request().Context(), req.CoinID, req.Limit)
	if err != nil {
		return failure(c, h.logger, "sentiment", err)
	}
	return cached(c, res, h.news.Config().HotTTL, fresh)
}

func (h *NewsHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	item := models.NewsItem{Title: req.Title, Description: req.Description, Votes: req.Votes}
	res, err := h.news.Analyze(c.Request().Context(), item, req.Strategy)
	if errors.Is(err, models.ErrUnknownStrategy) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithParam("strategy", req.Strategy))
	}
	if err != nil {
		return failure(c, h.logger, "analyze", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, xhttp.CacheControlNone)
	return xhttp.SuccessResponse(c, res)
}
