// Package history keeps a SQLite record of pipeline runs.
package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	started_at    TIMESTAMP NOT NULL,
	input_path    TEXT NOT NULL,
	encoding      TEXT NOT NULL,
	threshold     REAL NOT NULL,
	dedupe_mode   TEXT NOT NULL,
	raw_rows      INTEGER NOT NULL,
	skipped_rows  INTEGER NOT NULL,
	clean_rows    INTEGER NOT NULL,
	dedup_rows    INTEGER NOT NULL,
	filtered_rows INTEGER NOT NULL,
	duplicates    INTEGER NOT NULL,
	warnings      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS column_outliers (
	run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position   INTEGER NOT NULL,
	col_name   TEXT NOT NULL,
	mean       REAL NOT NULL,
	std        REAL NOT NULL,
	considered INTEGER NOT NULL,
	removed    INTEGER NOT NULL,
	max_abs_z  REAL NOT NULL,
	PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS runs_started_at ON runs(started_at);
`

// Run is one pipeline execution.
type Run struct {
	ID           string    `db:"id"`
	StartedAt    time.Time `db:"started_at"`
	InputPath    string    `db:"input_path"`
	Encoding     string    `db:"encoding"`
	Threshold    float64   `db:"threshold"`
	DedupeMode   string    `db:"dedupe_mode"`
	RawRows      int       `db:"raw_rows"`
	SkippedRows  int       `db:"skipped_rows"`
	CleanRows    int       `db:"clean_rows"`
	DedupRows    int       `db:"dedup_rows"`
	FilteredRows int       `db:"filtered_rows"`
	Duplicates   int       `db:"duplicates"`
	Warnings     int       `db:"warnings"`

	Columns []ColumnOutliers `db:"-"`
}

// ColumnOutliers is one step of the outlier filter within a run.
type ColumnOutliers struct {
	RunID      string  `db:"run_id"`
	Position   int     `db:"position"`
	Column     string  `db:"col_name"`
	Mean       float64 `db:"mean"`
	Std        float64 `db:"std"`
	Considered int     `db:"considered"`
	Removed    int     `db:"removed"`
	MaxAbsZ    float64 `db:"max_abs_z"`
}

// Store is a run history database.
type Store struct {
	db *sqlx.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir history dir: %w", err)
		}
	}
	db, err := sqlx.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Record stores a run and its per-column outlier results in one transaction.
func (s *Store) Record(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO runs (id, started_at, input_path, encoding, threshold, dedupe_mode,
			raw_rows, skipped_rows, clean_rows, dedup_rows, filtered_rows, duplicates, warnings)
		VALUES (:id, :started_at, :input_path, :encoding, :threshold, :dedupe_mode,
			:raw_rows, :skipped_rows, :clean_rows, :dedup_rows, :filtered_rows, :duplicates, :warnings)
	`, run)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for i, c := range run.Columns {
		c.RunID = run.ID
		c.Position = i
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO column_outliers (run_id, position, col_name, mean, std, considered, removed, max_abs_z)
			VALUES (:run_id, :position, :col_name, :mean, :std, :considered, :removed, :max_abs_z)
		`, c)
		if err != nil {
			return fmt.Errorf("insert column %q: %w", c.Column, err)
		}
	}
	return tx.Commit()
}

// List returns the most recent runs first, with their column results. A limit
// of 0 or less returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_at, input_path, encoding, threshold, dedupe_mode, raw_rows, skipped_rows,
		clean_rows, dedup_rows, filtered_rows, duplicates, warnings
		FROM runs ORDER BY started_at DESC, id`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	var runs []Run
	if err := s.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	for i := range runs {
		err := s.db.SelectContext(ctx, &runs[i].Columns, `
			SELECT run_id, position, col_name, mean, std, considered, removed, max_abs_z
			FROM column_outliers WHERE run_id = ? ORDER BY position
		`, runs[i].ID)
		if err != nil {
			return nil, fmt.Errorf("list columns of %s: %w", runs[i].ID, err)
		}
	}
	return runs, nil
}
