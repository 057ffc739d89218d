package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CoinPulse/internal/domain/repository"
	"CoinPulse/internal/usecase"
	pkgcache "CoinPulse/pkg/cache"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	pkgkafka "CoinPulse/pkg/kafka"
	applogger "CoinPulse/pkg/logger"
	"CoinPulse/pkg/tracker"
)

// Deps are the components the application runs. Consumer is nil when
// Kafka consumption is disabled.
type Deps struct {
	Config     *config.Config
	Logger     *applogger.Logger
	Tracker    tracker.Tracker
	Publisher  repository.Publisher
	Cache      pkgcache.Service
	Market     *usecase.MarketUseCase
	Watchlist  *usecase.WatchlistCollector
	Consumer   *pkgkafka.Consumer
	Handler    pkgkafka.MessageHandler
	HTTPServer *xhttp.Server
}

// App encapsulates the entire application lifecycle.
type App struct {
	Deps
}

// New creates a new App instance with all dependencies.
func New(d Deps) *App {
	if d.Logger == nil {
		d.Logger = applogger.NewNop()
	}
	if d.Tracker == nil {
		d.Tracker = tracker.Noop{}
	}
	return &App{Deps: d}
}

// Run starts the application and blocks until ctx is done or an interrupt
// arrives, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.start(ctx); err != nil {
		a.shutdown()
		return err
	}

	<-ctx.Done()
	a.Logger.Info("shutdown signal received")
	a.shutdown()
	return nil
}

func (a *App) start(ctx context.Context) error {
	if err := a.Watchlist.Start(ctx); err != nil {
		a.Logger.Error("watchlist start failed", applogger.Error(err))
		return err
	}
	a.Logger.Info("watchlist started", applogger.Strings("symbols", a.Config.Feeds.Watchlist))

	if a.Consumer != nil && a.Handler != nil {
		a.Consumer.RegisterHandler(a.Handler)
		if err := a.Consumer.Start(); err != nil {
			a.Logger.Error("kafka consumer start failed", applogger.Error(err))
			return err
		}
		a.Logger.Info("kafka consumer started", applogger.String("topic", a.Handler.Topic()))
	}

	if err := a.HTTPServer.Start(); err != nil {
		a.Logger.Error("http server start error", applogger.Error(err))
		return err
	}
	return nil
}

// shutdown stops producers of work before the sinks they write to.
func (a *App) shutdown() {
	timeout := a.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a.Logger.Info("shutting down")

	if err := a.HTTPServer.Stop(ctx); err != nil {
		a.Logger.Error("http shutdown error", applogger.Error(err))
	}
	if a.Consumer != nil {
		if err := a.Consumer.Stop(ctx); err != nil {
			a.Logger.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	if err := a.Watchlist.Shutdown(ctx); err != nil {
		a.Logger.Warn("watchlist stop error", applogger.Error(err))
	}
	a.Market.Close()

	a.Logger.RemoveCollector()
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			a.Logger.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Logger.Warn("cache close error", applogger.Error(err))
		}
	}
	a.Tracker.Flush(2 * time.Second)

	a.Logger.Info("shutdown complete")
}
