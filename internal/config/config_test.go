package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every PEERPORTAL_ env var that Load() reads.
var allConfigKeys = []string{
	"PEERPORTAL_LISTEN_ADDR",
	"PEERPORTAL_BACKEND_URL",
	"PEERPORTAL_VERIFY_TIMEOUT",
	"PEERPORTAL_STORE",
	"PEERPORTAL_DB_PATH",
	"PEERPORTAL_REDIS_ADDR",
	"PEERPORTAL_REDIS_PASSWORD",
	"PEERPORTAL_REDIS_DB",
	"PEERPORTAL_REDIS_PREFIX",
	"PEERPORTAL_SESSION_COOKIE",
	"PEERPORTAL_COOKIE_SECURE",
	"PEERPORTAL_SESSION_PURGE_AFTER",
	"PEERPORTAL_NOTICE",
	"PEERPORTAL_LOG_LEVEL",
	"PEERPORTAL_LOG_FORMAT",
}

// isolateConfigEnv saves and unsets all PEERPORTAL_ env vars so tests don't
// inherit values from the host environment (e.g. a running dev server).
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.BackendURL)
	assert.Equal(t, 5*time.Second, cfg.VerifyTimeout)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "peerportal.db", cfg.DBPath)
	assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, "peerportal", cfg.RedisPrefix)
	assert.Equal(t, "peerportal_session", cfg.SessionCookie)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, 720*time.Hour, cfg.SessionPurgeAfter)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.Notice)
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("PEERPORTAL_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("PEERPORTAL_BACKEND_URL", "https://peer.example.edu")
	t.Setenv("PEERPORTAL_VERIFY_TIMEOUT", "2s")
	t.Setenv("PEERPORTAL_STORE", "Redis")
	t.Setenv("PEERPORTAL_REDIS_ADDR", "redis:6379")
	t.Setenv("PEERPORTAL_REDIS_DB", "3")
	t.Setenv("PEERPORTAL_COOKIE_SECURE", "true")
	t.Setenv("PEERPORTAL_SESSION_PURGE_AFTER", "0")
	t.Setenv("PEERPORTAL_LOG_LEVEL", "debug")
	t.Setenv("PEERPORTAL_LOG_FORMAT", "json")
	t.Setenv("PEERPORTAL_NOTICE", "Survey closes **Friday**")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, "https://peer.example.edu", cfg.BackendURL)
	assert.Equal(t, 2*time.Second, cfg.VerifyTimeout)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.CookieSecure)
	assert.Zero(t, cfg.SessionPurgeAfter)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "Survey closes **Friday**", cfg.Notice)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"PEERPORTAL_BACKEND_URL", "not a url"},
		{"PEERPORTAL_BACKEND_URL", "ftp://backend"},
		{"PEERPORTAL_VERIFY_TIMEOUT", "soon"},
		{"PEERPORTAL_VERIFY_TIMEOUT", "0s"},
		{"PEERPORTAL_STORE", "postgres"},
		{"PEERPORTAL_REDIS_DB", "-1"},
		{"PEERPORTAL_REDIS_DB", "zero"},
		{"PEERPORTAL_COOKIE_SECURE", "maybe"},
		{"PEERPORTAL_SESSION_PURGE_AFTER", "forever"},
		{"PEERPORTAL_LOG_LEVEL", "loud"},
		{"PEERPORTAL_LOG_FORMAT", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()

			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoadDotEnv_DoesNotOverrideEnvironment(t *testing.T) {
	isolateConfigEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("PEERPORTAL_DB_PATH=/data/from-file.db\nPEERPORTAL_LISTEN_ADDR=0.0.0.0:1\n"), 0o600))
	t.Setenv("PEERPORTAL_LISTEN_ADDR", "127.0.0.1:7000")

	LoadDotEnv(path, filepath.Join(dir, "missing.env"))
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "/data/from-file.db", cfg.DBPath)
	assert.Equal(t, "127.0.0.1:7000", cfg.ListenAddr)
}
