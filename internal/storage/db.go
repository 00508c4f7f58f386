// Package storage archives conversion results in SQLite, PostgreSQL or
// ClickHouse.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tac_converter/internal/conversion"
)

// Backend names accepted by Open.
const (
	BackendNone       = "none"
	BackendSQLite     = "sqlite"
	BackendPostgres   = "postgres"
	BackendClickHouse = "clickhouse"
)

// Record is one archived conversion.
type Record struct {
	ID            int64
	ReceivedAt    time.Time
	Source        string // http, nats or cli
	ReportType    string
	Status        string
	Location      string // aerodrome or location indicator
	RawText       string
	Reconstructed string
	ModelJSON     string
	Issues        []conversion.Issue
}

// QueryParams filters archived conversions.
type QueryParams struct {
	ReportType string
	Status     string
	Location   string
	FullText   string // FTS5 match on SQLite, substring match elsewhere
	Limit      int    // default 100
	Offset     int
	OrderDesc  bool
}

func (p QueryParams) limit() int {
	if p.Limit > 0 {
		return p.Limit
	}
	return 100
}

// Store is a conversion archive.
type Store interface {
	Save(ctx context.Context, r *Record) (int64, error)
	Query(ctx context.Context, p QueryParams) ([]Record, error)
	Close() error
}

// Config selects and configures the archive backend.
type Config struct {
	Backend    string
	SQLitePath string
	ClickHouse ClickHouseConfig
	Postgres   PostgresConfig
}

// DefaultConfig returns local development settings with archiving disabled.
func DefaultConfig() Config {
	return Config{
		Backend:    BackendNone,
		SQLitePath: "tac_conversions.db",
		ClickHouse: ClickHouseConfig{
			Host:     "localhost",
			Port:     9000,
			Database: "tac",
			User:     "default",
			Password: "",
		},
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "tac",
			User:     "tac",
			Password: "tac",
		},
	}
}

// Open connects to the configured backend and creates its schema. The
// "none" backend returns a nil Store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendNone:
		return nil, nil
	case BackendSQLite:
		st, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return st, nil
	case BackendPostgres:
		pg, err := OpenPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := pg.CreateSchema(ctx); err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		return pg, nil
	case BackendClickHouse:
		ch, err := OpenClickHouse(ctx, cfg.ClickHouse)
		if err != nil {
			return nil, fmt.Errorf("clickhouse: %w", err)
		}
		if err := ch.CreateSchema(ctx); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		return ch, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

func marshalIssues(issues []conversion.Issue) (string, error) {
	if len(issues) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(issues)
	if err != nil {
		return "", fmt.Errorf("marshal issues: %w", err)
	}
	return string(b), nil
}

func unmarshalIssues(s string) ([]conversion.Issue, error) {
	if s == "" || s == "[]" {
		return nil, nil
	}
	var issues []conversion.Issue
	if err := json.Unmarshal([]byte(s), &issues); err != nil {
		return nil, fmt.Errorf("unmarshal issues: %w", err)
	}
	return issues, nil
}

func orderDirection(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}
