package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	drepo "MacroLens/internal/domain/repository"
	"MacroLens/pkg/cache"
	"MacroLens/pkg/config"
	xhttp "MacroLens/pkg/http"
	applogger "MacroLens/pkg/logger"
)

// App encapsulates the application lifecycle: the HTTP server plus the
// infrastructure it must close on the way down.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	handler    xhttp.Handler
	store      drepo.SeriesStore
	cache      cache.Service
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. store and cacheSvc
// may be nil when the deployment runs without them.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	store drepo.SeriesStore,
	cacheSvc cache.Service,
) *App {
	return &App{
		cfg:     cfg,
		logger:  l,
		handler: handler,
		store:   store,
		cache:   cacheSvc,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	a.httpServer = xhttp.NewServer(a.handler, a.logger,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(a.cfg.Metrics.Enabled),
	)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("cache close error", applogger.Error(err))
		}
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("series store close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
