package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore archives conversions in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates a SQLite archive at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL lets the API read while the feed writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := createSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func createSQLiteSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		received_at TEXT NOT NULL,
		source TEXT NOT NULL,
		report_type TEXT NOT NULL,
		status TEXT NOT NULL,
		location TEXT,
		raw_text TEXT NOT NULL,
		reconstructed TEXT,
		model_json TEXT,
		issues_json TEXT NOT NULL DEFAULT '[]'
	);

	CREATE INDEX IF NOT EXISTS idx_conversions_type ON conversions(report_type);
	CREATE INDEX IF NOT EXISTS idx_conversions_status ON conversions(status);
	CREATE INDEX IF NOT EXISTS idx_conversions_location ON conversions(location);
	CREATE INDEX IF NOT EXISTS idx_conversions_received ON conversions(received_at);

	CREATE VIRTUAL TABLE IF NOT EXISTS conversions_fts USING fts5(
		raw_text,
		content='conversions',
		content_rowid='id'
	);

	CREATE TRIGGER IF NOT EXISTS conversions_ai AFTER INSERT ON conversions BEGIN
		INSERT INTO conversions_fts(rowid, raw_text) VALUES (new.id, new.raw_text);
	END;

	CREATE TRIGGER IF NOT EXISTS conversions_ad AFTER DELETE ON conversions BEGIN
		INSERT INTO conversions_fts(conversions_fts, rowid, raw_text) VALUES('delete', old.id, old.raw_text);
	END;
	`
	_, err := db.Exec(schema)
	return err
}

// Save stores r and returns its row id.
func (s *SQLiteStore) Save(ctx context.Context, r *Record) (int64, error) {
	issues, err := marshalIssues(r.Issues)
	if err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO conversions (received_at, source, report_type, status, location, raw_text, reconstructed, model_json, issues_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ReceivedAt.UTC().Format(time.RFC3339Nano), r.Source, r.ReportType, r.Status, r.Location,
		r.RawText, r.Reconstructed, r.ModelJSON, issues)
	if err != nil {
		return 0, fmt.Errorf("insert conversion: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	r.ID = id
	return id, nil
}

// Query returns archived conversions matching p.
func (s *SQLiteStore) Query(ctx context.Context, p QueryParams) ([]Record, error) {
	var conditions []string
	var args []any

	if p.ReportType != "" {
		conditions = append(conditions, "c.report_type = ?")
		args = append(args, p.ReportType)
	}
	if p.Status != "" {
		conditions = append(conditions, "c.status = ?")
		args = append(args, p.Status)
	}
	if p.Location != "" {
		conditions = append(conditions, "c.location = ?")
		args = append(args, p.Location)
	}

	query := `SELECT c.id, c.received_at, c.source, c.report_type, c.status, c.location,
			c.raw_text, c.reconstructed, c.model_json, c.issues_json
			FROM conversions c`
	if p.FullText != "" {
		query += ` JOIN conversions_fts fts ON c.id = fts.rowid`
		conditions = append([]string{"conversions_fts MATCH ?"}, conditions...)
		args = append([]any{p.FullText}, args...)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY c.id %s LIMIT %d OFFSET %d", orderDirection(p.OrderDesc), p.limit(), p.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query conversions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var r Record
		var ts, issues string
		var location, reconstructed, model sql.NullString
		if err := rows.Scan(&r.ID, &ts, &r.Source, &r.ReportType, &r.Status, &location,
			&r.RawText, &reconstructed, &model, &issues); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.ReceivedAt, _ = time.Parse(time.RFC3339Nano, ts)
		r.Location = location.String
		r.Reconstructed = reconstructed.String
		r.ModelJSON = model.String
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
func (s *SQLiteStore) CountByType(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT report_type, COUNT(*) FROM conversions GROUP BY report_type`)
	if err != nil {
		return nil, fmt.Errorf("count by type: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		counts[t] = n
	}
	return counts, rows.Err()
}
