// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends selectable with PEERPORTAL_STORE.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr    string
	BackendURL    string
	VerifyTimeout time.Duration

	Store         string
	DBPath        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	SessionCookie     string
	CookieSecure      bool
	SessionPurgeAfter time.Duration

	// Notice is markdown shown above every page; empty disables it.
	Notice string

	LogLevel  slog.Level
	LogFormat string
}

// LoadDotEnv loads variables from the given .env files when they exist.
// Variables already set in the environment win.
func LoadDotEnv(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// Load reads configuration from environment variables and returns a validated Config.
// Optional variables with defaults: PEERPORTAL_LISTEN_ADDR (127.0.0.1:8080),
// PEERPORTAL_BACKEND_URL (http://127.0.0.1:8000), PEERPORTAL_VERIFY_TIMEOUT (5s),
// PEERPORTAL_STORE (sqlite), PEERPORTAL_DB_PATH (peerportal.db),
// PEERPORTAL_REDIS_ADDR (127.0.0.1:6379), PEERPORTAL_REDIS_PASSWORD, PEERPORTAL_REDIS_DB (0),
// PEERPORTAL_REDIS_PREFIX (peerportal), PEERPORTAL_SESSION_COOKIE (peerportal_session),
// PEERPORTAL_COOKIE_SECURE (false), PEERPORTAL_SESSION_PURGE_AFTER (720h, 0 disables),
// PEERPORTAL_NOTICE, PEERPORTAL_LOG_LEVEL (info), PEERPORTAL_LOG_FORMAT (text).
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:        envOr("PEERPORTAL_LISTEN_ADDR", "127.0.0.1:8080"),
		BackendURL:        envOr("PEERPORTAL_BACKEND_URL", "http://127.0.0.1:8000"),
		Store:             strings.ToLower(envOr("PEERPORTAL_STORE", StoreSQLite)),
		DBPath:            envOr("PEERPORTAL_DB_PATH", "peerportal.db"),
		RedisAddr:         envOr("PEERPORTAL_REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:     os.Getenv("PEERPORTAL_REDIS_PASSWORD"),
		RedisPrefix:       envOr("PEERPORTAL_REDIS_PREFIX", "peerportal"),
		SessionCookie:     envOr("PEERPORTAL_SESSION_COOKIE", "peerportal_session"),
		Notice:            os.Getenv("PEERPORTAL_NOTICE"),
		LogFormat:         strings.ToLower(envOr("PEERPORTAL_LOG_FORMAT", "text")),
		VerifyTimeout:     5 * time.Second,
		SessionPurgeAfter: 720 * time.Hour,
	}

	u, err := url.Parse(cfg.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("PEERPORTAL_BACKEND_URL must be an absolute http(s) URL, got %q", cfg.BackendURL)
	}

	if v, ok := os.LookupEnv("PEERPORTAL_VERIFY_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("PEERPORTAL_VERIFY_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("PEERPORTAL_VERIFY_TIMEOUT must be positive, got %q", v)
		}
		cfg.VerifyTimeout = parsed
	}

	if v, ok := os.LookupEnv("PEERPORTAL_SESSION_PURGE_AFTER"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("PEERPORTAL_SESSION_PURGE_AFTER has invalid duration %q: %w", v, err)
		}
		cfg.SessionPurgeAfter = parsed
	}

	switch cfg.Store {
	case StoreSQLite, StoreRedis, StoreMemory:
	default:
		return nil, fmt.Errorf("PEERPORTAL_STORE must be one of sqlite, redis, memory, got %q", cfg.Store)
	}

	if v, ok := os.LookupEnv("PEERPORTAL_REDIS_DB"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("PEERPORTAL_REDIS_DB has invalid database index %q", v)
		}
		cfg.RedisDB = parsed
	}

	if v, ok := os.LookupEnv("PEERPORTAL_COOKIE_SECURE"); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("PEERPORTAL_COOKIE_SECURE has invalid boolean %q: %w", v, err)
		}
		cfg.CookieSecure = parsed
	}

	if v, ok := os.LookupEnv("PEERPORTAL_LOG_LEVEL"); ok {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("PEERPORTAL_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("PEERPORTAL_LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	return cfg, nil
}

// NewLogger builds the slog.Logger described by the config.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
