package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/planeet/internal/domain/availability"
	"github.com/yanqian/planeet/internal/infra/config"
)

// App encapsulates the plan API server lifecycle.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server
	oracle availability.Oracle
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, oracle availability.Oracle) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, oracle: oracle}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := a.oracle.Ping(pingCtx); err != nil {
		a.logger.Warn("availability oracle unreachable at startup", "backend", a.cfg.Oracle.Backend, "error", err)
	}
	cancel()

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address, "places", a.cfg.Places.Provider, "oracle", a.cfg.Oracle.Backend)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
