package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// ConnString renders the settings as a pgx connection URL.
func (c PostgresConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// PostgresStore archives conversions in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a connection pool to PostgreSQL.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// CreateSchema creates the conversions table.
func (s *PostgresStore) CreateSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversions (
		id              BIGSERIAL PRIMARY KEY,
		received_at     TIMESTAMPTZ NOT NULL,
		source          TEXT NOT NULL,
		report_type     TEXT NOT NULL,
		status          TEXT NOT NULL,
		location        TEXT NOT NULL DEFAULT '',
		raw_text        TEXT NOT NULL,
		reconstructed   TEXT NOT NULL DEFAULT '',
		model_json      JSONB,
		issues_json     JSONB NOT NULL DEFAULT '[]'
	);

	CREATE INDEX IF NOT EXISTS idx_conversions_type ON conversions(report_type);
	CREATE INDEX IF NOT EXISTS idx_conversions_location ON conversions(location);
	CREATE INDEX IF NOT EXISTS idx_conversions_received ON conversions(received_at);
	`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Save stores r and returns its id.
func (s *PostgresStore) Save(ctx context.Context, r *Record) (int64, error) {
	issues, err := marshalIssues(r.Issues)
	if err != nil {
		return 0, err
	}
	var model *string
	if r.ModelJSON != "" {
		model = &r.ModelJSON
	}

	var id int64
	err = s.pool.QueryRow(ctx, `
		INSERT INTO conversions (received_at, source, report_type, status, location, raw_text, reconstructed, model_json, issues_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9::jsonb)
		RETURNING id
	`, r.ReceivedAt, r.Source, r.ReportType, r.Status, r.Location, r.RawText, r.Reconstructed, model, issues).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert conversion: %w", err)
	}
	r.ID = id
	return id, nil
}

// Query returns archived conversions matching p.
func (s *PostgresStore) Query(ctx context.Context, p QueryParams) ([]Record, error) {
	query, args := postgresQuery(p)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query conversions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanPostgresRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

func postgresQuery(p QueryParams) (string, []any) {
	var conditions []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if p.ReportType != "" {
		add("report_type = $%d", p.ReportType)
	}
	if p.Status != "" {
		add("status = $%d", p.Status)
	}
	if p.Location != "" {
		add("location = $%d", p.Location)
	}
	if p.FullText != "" {
		add("raw_text ILIKE $%d", "%"+p.FullText+"%")
	}

	query := `SELECT id, received_at, source, report_type, status, location, raw_text,
		reconstructed, COALESCE(model_json::text, ''), issues_json::text FROM conversions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY id %s LIMIT %d OFFSET %d", orderDirection(p.OrderDesc), p.limit(), p.Offset)
	return query, args
}

func scanPostgresRecord(row pgx.Row) (Record, error) {
	var r Record
	var issues string
	if err := row.Scan(&r.ID, &r.ReceivedAt, &r.Source, &r.ReportType, &r.Status, &r.Location,
		&r.RawText, &r.Reconstructed, &r.ModelJSON, &issues); err != nil {
		return Record{}, fmt.Errorf("scan row: %w", err)
	}
	var err error
	if r.Issues, err = unmarshalIssues(issues); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Get returns the conversion with id, or nil when there is none.
func (s *PostgresStore) Get(ctx context.Context, id int64) (*Record, error) {
	row := s.pool.QueryRow(ctx, `SELECT id, received_at, source, report_type, status, location, raw_text,
		reconstructed, COALESCE(model_json::text, ''), issues_json::text FROM conversions WHERE id = $1`, id)
	r, err := scanPostgresRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}
