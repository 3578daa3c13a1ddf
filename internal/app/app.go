package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/dmchat-server/internal/config"
	"github.com/vovakirdan/dmchat-server/internal/core"
	"github.com/vovakirdan/dmchat-server/internal/store"
	"github.com/vovakirdan/dmchat-server/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/dmchat-server/internal/transport/http"
	"github.com/vovakirdan/dmchat-server/internal/upload"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	// Startup reconciliation: the presence table starts empty by
	// construction, so stale durable online flags from a prior crash must
	// be cleared before any connection is accepted.
	reconCtx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
	cleaned, err := st.MarkAllOffline(reconCtx)
	cancel()
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("reconcile identities: %w", err)
	}
	if cleaned > 0 {
		logger.Info().Int64("count", cleaned).Msg("cleared stale online identities")
	}

	uploads, err := upload.New(cfg.UploadDir, cfg.UploadMaxBytes)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init uploads: %w", err)
	}

	hub := core.NewHub(st, logger, core.Options{
		StoreTimeout: cfg.StoreTimeout,
		HistoryLimit: cfg.HistoryLimit,
	})
	server := transporthttp.NewServer(hub, uploads, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
