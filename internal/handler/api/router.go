package api

import (
	"context"
	"errors"

	"CoinPulse/internal/domain/models"
	xhttp "CoinPulse/pkg/http"
	applogger "CoinPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Router registers every API handler on one echo instance.
type Router struct {
	handlers []xhttp.Handler
}

func NewRouter(market *MarketHandler, indices *IndicesHandler, news *NewsHandler) *Router {
	return &Router{handlers: []xhttp.Handler{market, indices, news}}
}

func (r *Router) RegisterRoutes(e *echo.Echo) {
	for _, h := range r.handlers {
		h.RegisterRoutes(e)
	}
}

var _ xhttp.Handler = (*Router)(nil)

// failure maps a use case error onto the response envelope. Upstream and
// payload errors become 502 since nothing usable was cached.
func failure(c echo.Context, l *applogger.Logger, op string, err error) error {
	switch {
	case errors.Is(err, models.ErrUpstreamUnavailable), errors.Is(err, models.ErrMalformedPayload):
		l.Warn(op+" upstream failed", applogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError(op+" is unavailable").WithError(err))
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		l.Warn(op+" timed out", applogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError(op+" timed out").WithError(err))
	default:
		l.Error(op+" failed", applogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError(op+" failed").WithError(err))
	}
}
