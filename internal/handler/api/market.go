package api

import (
	"errors"
	"net/http"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/usecase"
	xhttp "CoinPulse/pkg/http"
	applogger "CoinPulse/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

// MarketHandler serves feed state over HTTP and WebSocket.
type MarketHandler struct {
	logger   *applogger.Logger
	market   *usecase.MarketUseCase
	upgrader websocket.Upgrader
}

func NewMarketHandler(logger *applogger.Logger, market *usecase.MarketUseCase) *MarketHandler {
	if logger == nil {
		logger = applogger.NewNop()
	}
	return &MarketHandler{
		logger: logger,
		market: market,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// origins are enforced by the CORS middleware
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *MarketHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/market", h.Market)
	e.GET("/ws/market", h.Stream)
}

func (h *MarketHandler) Market(c echo.Context) error {
	req := &models.MarketRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	view, err := h.market.Market(c.Request().Context(), req.Feed, req.Symbol)
	if errors.Is(err, usecase.ErrUnknownFeed) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithParam("feed", req.Feed))
	}
	if err != nil {
		return failure(c, h.logger, "market", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, xhttp.CacheControlNone)
	return xhttp.SuccessResponse(c, view)
}

type wsFrame struct {
	Type string              `json:"type"`
	Data *usecase.MarketView `json:"data"`
}

// Stream upgrades to a WebSocket and pushes every feed update for the
// requested symbol until the client goes away. Only the latest pending view
// is kept, so a slow client skips updates instead of blocking the feed.
func (h *MarketHandler) Stream(c echo.Context) error {
	req := &models.MarketRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	first, _, err := h.market.Cached(req.Feed, req.Symbol)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithParam("feed", req.Feed))
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", applogger.Error(err))
		return nil
	}
	defer conn.Close()

	updates := make(chan *usecase.MarketView, 1)
	sub, err := h.market.Subscribe(req.Feed, req.Symbol, func(v *usecase.MarketView) {
		select {
		case updates <- v:
			return
		default:
		}
		select {
		case <-updates:
		default:
		}
		select {
		case updates <- v:
		default:
		}
	})
	if err != nil {
		h.logger.Warn("websocket subscribe failed", applogger.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscribe failed"),
			time.Now().Add(wsWriteWait))
		return nil
	}
	defer sub.Unsubscribe()

	log := h.logger.With(
		applogger.String("feed", req.Feed),
		applogger.String("symbol", sub.Symbol()),
		applogger.String("remote", c.RealIP()),
	)
	log.Debug("websocket subscribed")

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(v *usecase.MarketView) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(wsFrame{Type: "market", Data: v})
	}
	if err := write(first); err != nil {
		return nil
	}

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-closed:
			log.Debug("websocket closed by client")
			return nil
		case v := <-updates:
			if err := write(v); err != nil {
				log.Debug("websocket write failed", applogger.Error(err))
				return nil
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return nil
			}
		}
	}
}
