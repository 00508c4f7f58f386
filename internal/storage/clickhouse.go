package storage

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// ClickHouseStore is an append-only analytics sink for conversions.
// ClickHouse has no auto-increment, so ids come from a counter seeded with
// the table's current maximum.
type ClickHouseStore struct {
	conn   driver.Conn
	lastID atomic.Int64
}

// OpenClickHouse opens a connection to ClickHouse.
func OpenClickHouse(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseStore, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	return &ClickHouseStore{conn: conn}, nil
}

// Close closes the connection.
func (s *ClickHouseStore) Close() error {
	return s.conn.Close()
}

// CreateSchema creates the conversions table and seeds the id counter.
func (s *ClickHouseStore) CreateSchema(ctx context.Context) error {
	err := s.conn.Exec(ctx, `CREATE TABLE IF NOT EXISTS conversions (
			id              Int64,
			received_at     DateTime64(3),
			source          LowCardinality(String),
			report_type     LowCardinality(String),
			status          LowCardinality(String),
			location        LowCardinality(String),
			raw_text        String,
			reconstructed   String,
			model_json      String,
			issues_json     String
		)
		ENGINE = MergeTree()
		PARTITION BY toYYYYMM(received_at)
		ORDER BY (report_type, location, received_at, id)`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var maxID int64
	if err := s.conn.QueryRow(ctx, `SELECT max(id) FROM conversions`).Scan(&maxID); err != nil {
		return fmt.Errorf("max id: %w", err)
	}
	s.lastID.Store(maxID)
	return nil
}

// Save stores a single conversion.
func (s *ClickHouseStore) Save(ctx context.Context, r *Record) (int64, error) {
	if err := s.SaveBatch(ctx, []*Record{r}); err != nil {
		return 0, err
	}
	return r.ID, nil
}

// SaveBatch stores records in one batch and assigns their ids.
func (s *ClickHouseStore) SaveBatch(ctx context.Context, records []*Record) error {
	if len(records) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO conversions (id, received_at, source, report_type, status, location, raw_text, reconstructed, model_json, issues_json)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		issues, err := marshalIssues(r.Issues)
		if err != nil {
			return err
		}
		r.ID = s.lastID.Add(1)
		err = batch.Append(r.ID, r.ReceivedAt, r.Source, r.ReportType, r.Status, r.Location,
			r.RawText, r.Reconstructed, r.ModelJSON, issues)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// Query returns archived conversions matching p.
func (s *ClickHouseStore) Query(ctx context.Context, p QueryParams) ([]Record, error) {
	var conditions []string
	var args []any

	if p.ReportType != "" {
		conditions = append(conditions, "report_type = ?")
		args = append(args, p.ReportType)
	}
	if p.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, p.Status)
	}
	if p.Location != "" {
		conditions = append(conditions, "location = ?")
		args = append(args, p.Location)
	}
	if p.FullText != "" {
		conditions = append(conditions, "raw_text LIKE ?")
		args = append(args, "%"+p.FullText+"%")
	}

	query := `SELECT id, received_at, source, report_type, status, location, raw_text, reconstructed, model_json, issues_json FROM conversions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY id %s LIMIT %d OFFSET %d", orderDirection(p.OrderDesc), p.limit(), p.Offset)

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query conversions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var r Record
		var issues string
		if err := rows.Scan(&r.ID, &r.ReceivedAt, &r.Source, &r.ReportType, &r.Status, &r.Location,
			&r.RawText, &r.Reconstructed, &r.ModelJSON, &issues); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if r.Issues, err = unmarshalIssues(issues); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

// CountByType returns the number of archived conversions per report type.
func (s *ClickHouseStore) CountByType(ctx context.Context) (map[string]uint64, error) {
	rows, err := s.conn.Query(ctx, `SELECT report_type, count() FROM conversions GROUP BY report_type`)
	if err != nil {
		return nil, fmt.Errorf("count by type: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]uint64)
	for rows.Next() {
		var t string
		var n uint64
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		counts[t] = n
	}
	return counts, rows.Err()
}
