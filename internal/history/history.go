// Package history persists analysis results to a local SQLite database so
// past screenshot records can be listed and re-inspected.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/screentel/screentel/internal/assembler"
)

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id              TEXT PRIMARY KEY,
	filename        TEXT NOT NULL,
	active_operator TEXT NOT NULL DEFAULT '',
	success         INTEGER NOT NULL,
	response        TEXT NOT NULL,
	created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at DESC);
`

// Record is one stored analysis result.
type Record struct {
	ID             string              `json:"id"`
	Filename       string              `json:"filename"`
	ActiveOperator string              `json:"active_operator,omitempty"`
	Success        bool                `json:"success"`
	Response       *assembler.Response `json:"response"`
	CreatedAt      time.Time           `json:"created_at"`
}

// Store wraps the SQLite database holding analysis history.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply history schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores an analysis response and returns the generated record ID.
func (s *Store) Save(ctx context.Context, filename string, resp *assembler.Response) (string, error) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to encode response: %w", err)
	}

	id := uuid.NewString()
	active := ""
	if resp.Data != nil {
		active = resp.Data.StructuredData.SpeedTest.ActiveOperator
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, filename, active_operator, success, response, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, filename, active, resp.Success, string(raw), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("failed to insert analysis record: %w", err)
	}
	return id, nil
}

// List returns the most recent records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit < 1 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, active_operator, success, response, created_at
		 FROM analyses ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec     Record
			raw     string
			created string
		)
		if err := rows.Scan(&rec.ID, &rec.Filename, &rec.ActiveOperator, &rec.Success, &raw, &created); err != nil {
			return nil, fmt.Errorf("failed to scan analysis record: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &rec.Response); err != nil {
			return nil, fmt.Errorf("failed to decode stored response: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			rec.CreatedAt = ts
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns a single record by ID.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filename, active_operator, success, response, created_at
		 FROM analyses WHERE id = ?`, id)

	var (
		rec     Record
		raw     string
		created string
	)
	if err := row.Scan(&rec.ID, &rec.Filename, &rec.ActiveOperator, &rec.Success, &raw, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("analysis record not found: %s", id)
		}
		return nil, fmt.Errorf("failed to load analysis record: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &rec.Response); err != nil {
		return nil, fmt.Errorf("failed to decode stored response: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
		rec.CreatedAt = ts
	}
	return &rec, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analyses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count analysis records: %w", err)
	}
	return n, nil
}
