package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/fuzichat/fuzichat-server/internal/auth"
	"github.com/fuzichat/fuzichat-server/internal/config"
	"github.com/fuzichat/fuzichat-server/internal/core"
	"github.com/fuzichat/fuzichat-server/internal/media"
	"github.com/fuzichat/fuzichat-server/internal/store"
	mongostore "github.com/fuzichat/fuzichat-server/internal/store/mongo"
	sqlitestore "github.com/fuzichat/fuzichat-server/internal/store/sqlite"
	transporthttp "github.com/fuzichat/fuzichat-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.MessageStore
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := newStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	authorizer := auth.NewAuthorizer(cfg.ModeratorName, cfg.ModeratorSecret)

	opts := core.Options{
		HistoryLimit:          cfg.HistoryLimit,
		RejectEmptyPosts:      cfg.RejectEmptyPosts,
		RequireModeratorToken: !cfg.TrustClientModerator,
	}
	if !cfg.TrustClientModerator {
		if cfg.TokenSecret == "" {
			return nil, fmt.Errorf("token_secret is required when trust_client_moderator is disabled")
		}
		opts.Tokens = &auth.TokenConfig{
			Secret: []byte(cfg.TokenSecret),
			TTL:    cfg.TokenTTL,
		}
	}

	hub := core.NewHub(st, authorizer, opts, logger)

	uploads, err := newUploadHandler(ctx, cfg, logger)
	if err != nil {
		st.Close()
		return nil, err
	}

	server := transporthttp.NewServer(hub, uploads, *cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}, nil
}

// newStore opens the configured message store backend. An unreachable
// MongoDB at startup is logged, not fatal: the driver reconnects on its own.
func newStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (store.MessageStore, error) {
	switch cfg.StoreDriver {
	case "mongo":
		st, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("init mongo store: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := st.Ping(pingCtx); err != nil {
			logger.Warn().Err(err).Msg("mongo unreachable at startup, continuing")
		} else {
			logger.Info().Str("db", cfg.MongoDB).Msg("mongo store initialized")
		}
		return st, nil
	case "sqlite", "":
		st, err := sqlitestore.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("init sqlite store: %w", err)
		}
		logger.Info().Str("db_path", cfg.SQLitePath).Msg("sqlite store initialized")
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// newUploadHandler builds the media upload handler, or nil when object
// storage is not configured.
func newUploadHandler(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*transporthttp.UploadHandler, error) {
	if cfg.Media.Endpoint == "" {
		logger.Info().Msg("media storage not configured, upload endpoint disabled")
		return nil, nil
	}

	storage, err := media.NewStorage(media.Config{
		Endpoint:  cfg.Media.Endpoint,
		AccessKey: cfg.Media.AccessKey,
		SecretKey: cfg.Media.SecretKey,
		Bucket:    cfg.Media.Bucket,
		UseSSL:    cfg.Media.UseSSL,
		PublicURL: cfg.Media.PublicURL,
	})
	if err != nil {
		return nil, fmt.Errorf("init media storage: %w", err)
	}

	if err := storage.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Str("bucket", cfg.Media.Bucket).Msg("failed to ensure media bucket")
	}

	return transporthttp.NewUploadHandler(storage, logger), nil
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

// cleanup closes the store and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
