// Command peerctl signs in to the peer-review backend from a terminal and
// inspects the cached session. It shares the portal's SQLite store; each
// --profile is its own session scope.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/peerportal/internal/adapter/driven/identity"
	sqliteadapter "github.com/ericfisherdev/peerportal/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/peerportal/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "peerctl:", err)
		os.Exit(exitCode(err))
	}
}

func run() error {
	config.LoadDotEnv(".env")
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Diagnostics go to stderr so command output stays scriptable.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()
	if _, err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return fmt.Errorf("migrate %s: %w", cfg.DBPath, err)
	}

	client, err := identity.NewClient(cfg.BackendURL, cfg.VerifyTimeout)
	if err != nil {
		return err
	}

	repo := sqliteadapter.NewCredentialRepo(db)
	app := newApp(&deps{
		stores:   repo,
		sessions: repo,
		verifier: client,
		auth:     client,
		logger:   logger,
		out:      os.Stdout,
	})
	return app.RunContext(ctx, os.Args)
}
