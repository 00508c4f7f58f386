package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tac_converter/internal/conversion"
	"tac_converter/internal/storage"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.NATSURL)
	assert.Empty(t, cfg.APIKeys)
	assert.Equal(t, "tac.raw", cfg.NATSSubject)
	assert.Equal(t, "tac.converted", cfg.NATSOutputSubject)
	assert.Equal(t, storage.DefaultConfig(), cfg.Store)
	assert.Equal(t, conversion.DefaultHints(), cfg.Hints)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("TAC_HTTP_ADDR", ":9090")
	t.Setenv("TAC_LOG_LEVEL", "debug")
	t.Setenv("TAC_LOG_FORMAT", "text")
	t.Setenv("TAC_SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("TAC_NATS_URL", "nats://broker:4222")
	t.Setenv("TAC_NATS_SUBJECT", "wx.tac")
	t.Setenv("TAC_STORE", "postgres")
	t.Setenv("TAC_POSTGRES_HOST", "db")
	t.Setenv("TAC_POSTGRES_PORT", "6543")
	t.Setenv("TAC_CLICKHOUSE_PORT", "9440")
	t.Setenv("TAC_API_KEYS", "alpha, beta,,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "nats://broker:4222", cfg.NATSURL)
	assert.Equal(t, "wx.tac", cfg.NATSSubject)
	assert.Equal(t, storage.BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, "db", cfg.Store.Postgres.Host)
	assert.Equal(t, 6543, cfg.Store.Postgres.Port)
	assert.Equal(t, 9440, cfg.Store.ClickHouse.Port)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.APIKeys)
}

func TestLoad_HintsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hints.yaml")
	require.NoError(t, os.WriteFile(path, []byte("validity_time_format: prefer_short\n"), 0o644))
	t.Setenv("TAC_HINTS_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, conversion.PreferShort, cfg.Hints.ValidityTimeFormat)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"shutdown timeout", "TAC_SHUTDOWN_TIMEOUT", "soon"},
		{"negative shutdown timeout", "TAC_SHUTDOWN_TIMEOUT", "-1s"},
		{"store backend", "TAC_STORE", "mongodb"},
		{"postgres port", "TAC_POSTGRES_PORT", "abc"},
		{"clickhouse port", "TAC_CLICKHOUSE_PORT", "70000"},
		{"hints file", "TAC_HINTS_FILE", "/nonexistent/hints.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
