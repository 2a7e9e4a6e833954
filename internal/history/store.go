// Package history keeps an append-only audit log of extraction runs in a
// local SQLite database. It never feeds back into extraction behavior; a
// broken history store degrades to logged warnings.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// timeLayout is a fixed-width RFC3339 variant. RFC3339Nano trims trailing
// fractional zeros, which breaks the lexical string comparison the date-window
// queries rely on ("...59Z" would sort after "...59.999999999Z").
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one provider's processing of one input file.
type Run struct {
	ID         string
	SourcePath string
	Provider   string
	Model      string
	Pages      int
	OutputPath string
	Status     string
	Error      string
	DurationMS int64
	CreatedAt  time.Time
}

type Store struct {
	db *sql.DB
}

// Open creates the database (and its parent directory) if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("ensure history dir: %w", err)
		}
	}
	// Busy timeout to avoid SQLITE_BUSY in concurrent access.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source_path TEXT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		pages INTEGER NOT NULL,
		output_path TEXT,
		status TEXT NOT NULL,
		error_message TEXT,
		duration_ms INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// Record appends a run. ID and CreatedAt are filled when empty.
func (s *Store) Record(run *Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (id, source_path, provider, model, pages, output_path, status, error_message, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SourcePath, run.Provider, run.Model, run.Pages,
		nullable(run.OutputPath), run.Status, nullable(run.Error),
		run.DurationMS, run.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, source_path, provider, model, pages, output_path, status, error_message, duration_ms, created_at
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanRuns(rows)
}

// Between returns runs with created_at in [from, to], oldest first. Nil bounds
// are open.
func (s *Store) Between(from, to *time.Time) ([]Run, error) {
	q := `SELECT id, source_path, provider, model, pages, output_path, status, error_message, duration_ms, created_at FROM runs`
	var args []any
	switch {
	case from != nil && to != nil:
		q += ` WHERE created_at >= ? AND created_at <= ?`
		args = append(args, from.UTC().Format(timeLayout), to.UTC().Format(timeLayout))
	case from != nil:
		q += ` WHERE created_at >= ?`
		args = append(args, from.UTC().Format(timeLayout))
	case to != nil:
		q += ` WHERE created_at <= ?`
		args = append(args, to.UTC().Format(timeLayout))
	}
	q += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var out []Run
	for rows.Next() {
		var r Run
		var outputPath, errMsg sql.NullString
		var created string
		if err := rows.Scan(&r.ID, &r.SourcePath, &r.Provider, &r.Model, &r.Pages,
			&outputPath, &r.Status, &errMsg, &r.DurationMS, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if outputPath.Valid {
			r.OutputPath = outputPath.String
		}
		if errMsg.Valid {
			r.Error = errMsg.String
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			r.CreatedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (s *Store) Close() error {
	return s.db.Close()
}
