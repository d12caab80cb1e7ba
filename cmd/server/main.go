package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bcnelson/passgate/internal/api"
	"github.com/bcnelson/passgate/internal/api/middleware"
	"github.com/bcnelson/passgate/internal/auth"
	"github.com/bcnelson/passgate/internal/config"
	"github.com/bcnelson/passgate/internal/logging"
	"github.com/bcnelson/passgate/internal/service"
	"github.com/bcnelson/passgate/internal/storage"
	"github.com/bcnelson/passgate/internal/storage/memory"
	"github.com/bcnelson/passgate/internal/storage/sql"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	store, err := openStore(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize storage")
	}
	defer store.Close()

	accessService := service.NewAccessService(store, logger)

	opts := api.Options{
		Store:        store,
		Service:      accessService,
		Logger:       logger,
		BootstrapKey: cfg.Access.BootstrapAPIKey,
		LoginLimiter: middleware.NewRateLimiter(
			cfg.Access.LoginRatePerMinute,
			cfg.Access.LoginRateBurst,
			cfg.Access.LoginLimiterTTL,
			logger,
		),
	}

	if cfg.OIDC.Enabled {
		components, err := setupOIDC(&cfg.OIDC)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize OIDC")
		}
		opts.OIDC = components
		logger.WithField("issuer", cfg.OIDC.IssuerURL).Info("OIDC admin sign-in enabled")
	}

	if cfg.Access.BootstrapAPIKey == "" && !cfg.OIDC.Enabled {
		logger.Warn("Neither BOOTSTRAP_API_KEY nor OIDC is configured; admin routes are unreachable until an API key exists")
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(opts),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Infof("Starting passgate on http://%s", cfg.Server.Addr())

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

func openStore(cfg config.DatabaseConfig) (storage.Storage, error) {
	if cfg.Driver == "memory" {
		return memory.New(), nil
	}

	// Create data directory if needed (for SQLite)
	if cfg.Driver == "sqlite3" {
		path := strings.TrimPrefix(cfg.DSN, "file:")
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
	}

	return sql.New(cfg.Driver, cfg.DSN)
}

func setupOIDC(cfg *config.OIDCConfig) (*api.OIDCComponents, error) {
	key, err := cfg.GetSessionSecretBytes()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	provider, err := auth.NewOIDCProvider(ctx,
		cfg.IssuerURL,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.RedirectURL,
		cfg.GetScopes(),
		cfg.GetAllowedDomains(),
	)
	if err != nil {
		return nil, err
	}

	states, err := auth.NewStateStore(key, cfg.SecureCookies)
	if err != nil {
		return nil, err
	}

	sessions, err := auth.NewSessionManager(key, cfg.SessionDuration, cfg.SecureCookies)
	if err != nil {
		return nil, err
	}

	return &api.OIDCComponents{Provider: provider, States: states, Sessions: sessions}, nil
}
