package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"trackstats/internal/errors"
	"trackstats/pkg/contracts/domain"
)

// DefaultListLimit bounds ListRuns when no positive limit is given
const DefaultListLimit = 20

// timeLayout is fixed-width so created_at sorts as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	rows_before INTEGER NOT NULL,
	rows_after  INTEGER NOT NULL,
	report_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// RunStore is the run history used by the pipeline and the API
type RunStore interface {
	SaveRun(ctx context.Context, run *domain.RunResult) error
	GetRun(ctx context.Context, id string) (*domain.RunResult, error)
	ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error)
	Close() error
}

// SQLiteStore persists runs as JSON documents with a few indexed columns
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens the database at path and migrates it
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.NewStorageError("failed to create database directory", err).
				WithContext("path", path)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open sqlite db", err).WithContext("path", path)
	}
	// a single connection keeps :memory: databases alive across calls
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.NewStorageError("failed to ping sqlite db", err).WithContext("path", path)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger.With(slog.String("component", "run_store")),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Debug("Run store ready", slog.String("path", path))
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return errors.NewStorageError("migration failed", err)
	}
	return nil
}

// Ping checks the database connection
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun inserts or replaces a run
func (s *SQLiteStore) SaveRun(ctx context.Context, run *domain.RunResult) error {
	if run.ID == "" {
		return errors.NewAppValidationError("run id is required")
	}

	doc, err := json.Marshal(run)
	if err != nil {
		return errors.NewStorageError("failed to encode run", err).WithContext("run_id", run.ID)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (id, source, created_at, rows_before, rows_after, report_json)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Source,
		run.CreatedAt.UTC().Format(timeLayout),
		run.Cleaning.RowsBefore,
		run.Cleaning.RowsAfter,
		string(doc),
	)
	if err != nil {
		return errors.NewStorageError("failed to save run", err).WithContext("run_id", run.ID)
	}

	s.logger.InfoContext(ctx, "Run saved",
		slog.String("run_id", run.ID),
		slog.Int("bytes", len(doc)))
	return nil
}

// GetRun loads a run by id
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*domain.RunResult, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT report_json FROM runs WHERE id = ?", id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("run").WithContext("run_id", id)
	}
	if err != nil {
		return nil, errors.NewStorageError("failed to load run", err).WithContext("run_id", id)
	}

	var run domain.RunResult
	if err := json.Unmarshal([]byte(doc), &run); err != nil {
		return nil, errors.NewStorageError("failed to decode run", err).WithContext("run_id", id)
	}
	return &run, nil
}

// ListRuns returns the most recent runs first
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, created_at, rows_before, rows_after
		FROM runs
		ORDER BY created_at DESC, id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, errors.NewStorageError("failed to list runs", err)
	}
	defer rows.Close()

	summaries := []domain.RunSummary{}
	for rows.Next() {
		var (
			summary domain.RunSummary
			created string
		)
		if err := rows.Scan(&summary.ID, &summary.Source, &created, &summary.RowsBefore, &summary.RowsAfter); err != nil {
			return nil, errors.NewStorageError("failed to scan run", err)
		}
		summary.CreatedAt, err = time.Parse(timeLayout, created)
		if err != nil {
			return nil, errors.NewStorageError(fmt.Sprintf("invalid created_at %q", created), err).
				WithContext("run_id", summary.ID)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("failed to iterate runs", err)
	}
	return summaries, nil
}
