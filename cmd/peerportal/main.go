package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/peerportal/internal/adapter/driven/identity"
	"github.com/ericfisherdev/peerportal/internal/adapter/driven/memory"
	redisadapter "github.com/ericfisherdev/peerportal/internal/adapter/driven/redis"
	sqliteadapter "github.com/ericfisherdev/peerportal/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/peerportal/internal/adapter/driving/http"
	"github.com/ericfisherdev/peerportal/internal/adapter/driving/sessioncookie"
	webhandler "github.com/ericfisherdev/peerportal/internal/adapter/driving/web"
	"github.com/ericfisherdev/peerportal/internal/application"
	"github.com/ericfisherdev/peerportal/internal/config"
	"github.com/ericfisherdev/peerportal/internal/domain/port/driven"
)

// purgeInterval is how often idle SQLite sessions are swept.
const purgeInterval = time.Hour

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (.env first, real environment wins).
	config.LoadDotEnv(".env")
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"backend_url", cfg.BackendURL,
		"store", cfg.Store,
		"verify_timeout", cfg.VerifyTimeout,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the credential store backend.
	stores, closer, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closer.Close(); closeErr != nil {
			logger.Error("error closing credential store", "error", closeErr)
		}
	}()

	// 4. Wire the backend client and services.
	client, err := identity.NewClient(cfg.BackendURL, cfg.VerifyTimeout)
	if err != nil {
		return err
	}
	loginSvc := application.NewLoginService(client, logger)
	cookies := sessioncookie.New(cfg.SessionCookie, cfg.CookieSecure)

	// 5. Register API and web routes.
	apiHandler := httphandler.NewHandler(stores, client, cookies, logger)
	webHandler := webhandler.NewHandler(stores, client, loginSvc, cookies, cfg.Notice, logger)
	backend := webhandler.NewBackendProxy(client.BaseURL(), stores, cookies, logger)
	handler := httphandler.NewServeMux(apiHandler, logger, func(mux *http.ServeMux) {
		webhandler.RegisterRoutes(mux, webHandler, backend)
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	logger.Info("peerportal started", "listen_addr", cfg.ListenAddr)

	// 6. Wait for shutdown signal.
	<-ctx.Done()
	logger.Info("shutting down")

	// 7. Graceful shutdown with 10s timeout for in-flight page loads.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// openStores opens the configured store backend. The returned closer releases
// its connections.
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (driven.SessionStores, io.Closer, error) {
	switch cfg.Store {
	case config.StoreRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		stores := redisadapter.NewStores(client, cfg.RedisPrefix)
		if err := stores.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		logger.Info("redis store connected", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		return stores, client, nil

	case config.StoreMemory:
		logger.Warn("memory store selected, sessions are lost on restart")
		return memory.NewStores(), io.NopCloser(nil), nil

	default:
		db, err := sqliteadapter.NewDB(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		version, err := sqliteadapter.RunMigrations(db.Writer)
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate %s: %w", cfg.DBPath, err)
		}
		logger.Info("database opened", "path", db.Path(), "schema_version", version)

		repo := sqliteadapter.NewCredentialRepo(db)
		if cfg.SessionPurgeAfter > 0 {
			go purgeIdleSessions(ctx, repo, cfg.SessionPurgeAfter, logger)
		}
		return repo, db, nil
	}
}

// purgeIdleSessions drops sessions untouched for longer than idle, once at
// startup and then every purgeInterval until ctx is done.
func purgeIdleSessions(ctx context.Context, repo *sqliteadapter.CredentialRepo, idle time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		n, err := repo.PurgeIdle(ctx, time.Now().Add(-idle))
		switch {
		case err != nil && ctx.Err() == nil:
			logger.Error("session purge failed", "error", err)
		case n > 0:
			logger.Info("idle sessions purged", "count", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
