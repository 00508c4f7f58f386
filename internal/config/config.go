// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"tac_converter/internal/conversion"
	"tac_converter/internal/storage"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	APIKeys         []string // API auth is enabled when any key is set

	NATSURL           string
	NATSSubject       string
	NATSOutputSubject string

	Store storage.Config

	HintsFile string
	Hints     conversion.Hints
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := time.ParseDuration(envOrDefault("TAC_SHUTDOWN_TIMEOUT", "10s"))
	if err != nil || shutdownTimeout <= 0 {
		return nil, errors.New("invalid TAC_SHUTDOWN_TIMEOUT")
	}

	store := storage.DefaultConfig()
	store.Backend = envOrDefault("TAC_STORE", store.Backend)
	store.SQLitePath = envOrDefault("TAC_SQLITE_PATH", store.SQLitePath)
	store.Postgres.Host = envOrDefault("TAC_POSTGRES_HOST", store.Postgres.Host)
	store.Postgres.Database = envOrDefault("TAC_POSTGRES_DB", store.Postgres.Database)
	store.Postgres.User = envOrDefault("TAC_POSTGRES_USER", store.Postgres.User)
	store.Postgres.Password = envOrDefault("TAC_POSTGRES_PASSWORD", store.Postgres.Password)
	store.ClickHouse.Host = envOrDefault("TAC_CLICKHOUSE_HOST", store.ClickHouse.Host)
	store.ClickHouse.Database = envOrDefault("TAC_CLICKHOUSE_DB", store.ClickHouse.Database)
	store.ClickHouse.User = envOrDefault("TAC_CLICKHOUSE_USER", store.ClickHouse.User)
	store.ClickHouse.Password = envOrDefault("TAC_CLICKHOUSE_PASSWORD", store.ClickHouse.Password)
	if store.Postgres.Port, err = envPort("TAC_POSTGRES_PORT", store.Postgres.Port); err != nil {
		return nil, err
	}
	if store.ClickHouse.Port, err = envPort("TAC_CLICKHOUSE_PORT", store.ClickHouse.Port); err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:          envOrDefault("TAC_HTTP_ADDR", ":8080"),
		LogLevel:          envOrDefault("TAC_LOG_LEVEL", "info"),
		LogFormat:         envOrDefault("TAC_LOG_FORMAT", "json"),
		ShutdownTimeout:   shutdownTimeout,
		APIKeys:           splitList(os.Getenv("TAC_API_KEYS")),
		NATSURL:           os.Getenv("TAC_NATS_URL"),
		NATSSubject:       envOrDefault("TAC_NATS_SUBJECT", "tac.raw"),
		NATSOutputSubject: envOrDefault("TAC_NATS_OUTPUT_SUBJECT", "tac.converted"),
		Store:             store,
		HintsFile:         os.Getenv("TAC_HINTS_FILE"),
		Hints:             conversion.DefaultHints(),
	}

	switch cfg.Store.Backend {
	case storage.BackendNone, storage.BackendSQLite, storage.BackendPostgres, storage.BackendClickHouse:
	default:
		return nil, fmt.Errorf("invalid TAC_STORE %q", cfg.Store.Backend)
	}
	if cfg.Store.Backend == storage.BackendSQLite && cfg.Store.SQLitePath == "" {
		return nil, errors.New("TAC_SQLITE_PATH is required when TAC_STORE is sqlite")
	}
	if cfg.NATSURL != "" && cfg.NATSSubject == "" {
		return nil, errors.New("TAC_NATS_SUBJECT is required when TAC_NATS_URL is set")
	}
	if cfg.HintsFile != "" {
		if cfg.Hints, err = conversion.LoadHints(cfg.HintsFile); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envPort(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > 65535 {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return n, nil
}
