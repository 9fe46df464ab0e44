// Package history persists ingestion outcomes to SQLite so batch reports
// survive restarts and are queryable from the HTTP API.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB with ragchat-specific helpers.
type DB struct {
	*sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	d := &DB{DB: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

// OpenMemory creates an in-memory SQLite database (useful for testing).
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}

	d := &DB{DB: sqlDB, path: ":memory:"}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return d, nil
}

func (d *DB) migrate() error {
	_, err := d.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS ingest_batches (
    id TEXT PRIMARY KEY,
    started_at DATETIME NOT NULL,
    files_total INTEGER NOT NULL,
    files_ok INTEGER NOT NULL,
    files_skipped INTEGER NOT NULL,
    chunks INTEGER NOT NULL,
    created_index INTEGER NOT NULL DEFAULT 0,
    error TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_batches_started ON ingest_batches(started_at);

CREATE TABLE IF NOT EXISTS ingest_files (
    batch_id TEXT NOT NULL REFERENCES ingest_batches(id),
    path TEXT NOT NULL,
    chunks INTEGER NOT NULL DEFAULT 0,
    skip_reason TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_files_batch ON ingest_files(batch_id);
`

// Batch is one recorded ingestion run.
type Batch struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	FilesTotal   int       `json:"files_total"`
	FilesOK      int       `json:"files_ok"`
	FilesSkipped int       `json:"files_skipped"`
	Chunks       int       `json:"chunks"`
	CreatedIndex bool      `json:"created_index"`
	Error        string    `json:"error,omitempty"`
}

// FileOutcome is the per-file result within a batch.
type FileOutcome struct {
	BatchID    string `json:"-"`
	Path       string `json:"path"`
	Chunks     int    `json:"chunks"`
	SkipReason string `json:"skip_reason,omitempty"`
}

// RecordBatch stores a batch and its per-file outcomes in one transaction.
func (d *DB) RecordBatch(ctx context.Context, b Batch, files []FileOutcome) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ingest_batches (id, started_at, files_total, files_ok, files_skipped, chunks, created_index, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.StartedAt.UTC(), b.FilesTotal, b.FilesOK, b.FilesSkipped, b.Chunks, b.CreatedIndex, b.Error)
	if err != nil {
		return fmt.Errorf("inserting batch: %w", err)
	}

	for _, f := range files {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO ingest_files (batch_id, path, chunks, skip_reason) VALUES (?, ?, ?, ?)`,
			b.ID, f.Path, f.Chunks, f.SkipReason)
		if err != nil {
			return fmt.Errorf("inserting file outcome: %w", err)
		}
	}

	return tx.Commit()
}

// RecentBatches returns the most recent batches, newest first.
func (d *DB) RecentBatches(ctx context.Context, limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.QueryContext(ctx,
		`SELECT id, started_at, files_total, files_ok, files_skipped, chunks, created_index, error
		 FROM ingest_batches ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.StartedAt, &b.FilesTotal, &b.FilesOK, &b.FilesSkipped, &b.Chunks, &b.CreatedIndex, &b.Error); err != nil {
			return nil, fmt.Errorf("scanning batch: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// BatchFiles returns the per-file outcomes recorded for a batch.
func (d *DB) BatchFiles(ctx context.Context, batchID string) ([]FileOutcome, error) {
	rows, err := d.QueryContext(ctx,
		`SELECT batch_id, path, chunks, skip_reason FROM ingest_files WHERE batch_id = ? ORDER BY rowid`, batchID)
	if err != nil {
		return nil, fmt.Errorf("querying file outcomes: %w", err)
	}
	defer rows.Close()

	var files []FileOutcome
	for rows.Next() {
		var f FileOutcome
		if err := rows.Scan(&f.BatchID, &f.Path, &f.Chunks, &f.SkipReason); err != nil {
			return nil, fmt.Errorf("scanning file outcome: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
