package store

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

// nowUTC returns the current UTC time as an ISO 8601 string.
func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

// Run is one registry entry: a preparation or fitting invocation with
// its audit counters and, for fits, the convergence diagnostics.
type Run struct {
	ID        string
	Kind      string // "prepare" or "fit"
	Target    string // prepared-table path, or artifact name
	StartedAt string

	RowsIn    int
	RowsOut   int
	Dropped   int
	Defaulted int
	Excluded  int

	MaxRHat     float64
	MinESS      float64
	Divergences int
	Converged   bool
}

const registrySchema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	target      TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	rows_in     INTEGER NOT NULL DEFAULT 0,
	rows_out    INTEGER NOT NULL DEFAULT 0,
	dropped     INTEGER NOT NULL DEFAULT 0,
	defaulted   INTEGER NOT NULL DEFAULT 0,
	excluded    INTEGER NOT NULL DEFAULT 0,
	max_rhat    REAL NOT NULL DEFAULT 0,
	min_ess     REAL NOT NULL DEFAULT 0,
	divergences INTEGER NOT NULL DEFAULT 0,
	converged   INTEGER NOT NULL DEFAULT 0
);
`

// Registry records runs in SQLite so a study's provenance survives
// across invocations.
type Registry struct {
	db *sql.DB
}

// OpenRegistry opens or creates the registry database at path,
// creating the parent directory if needed.
func OpenRegistry(path string) (*Registry, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: create registry dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open registry: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping registry: %w", err)
	}
	if _, err := db.Exec(registrySchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migrate registry: %w", err)
	}
	return &Registry{db: db}, nil
}

// Close releases the underlying database handle.
func (r *Registry) Close() error { return r.db.Close() }

// Record inserts a run, assigning an id and timestamp if unset, and
// returns the id.
func (r *Registry) Record(run *Run) (string, error) {
	if run == nil {
		return "", errors.New("store: run is nil")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt == "" {
		run.StartedAt = nowUTC()
	}
	_, err := r.db.Exec(
		`INSERT INTO runs(id, kind, target, started_at, rows_in, rows_out, dropped, defaulted, excluded,
		                  max_rhat, min_ess, divergences, converged)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Kind, run.Target, run.StartedAt,
		run.RowsIn, run.RowsOut, run.Dropped, run.Defaulted, run.Excluded,
		run.MaxRHat, run.MinESS, run.Divergences, boolInt(run.Converged),
	)
	if err != nil {
		return "", fmt.Errorf("store: insert run: %w", err)
	}
	return run.ID, nil
}

// Get fetches one run by id, or nil if absent.
func (r *Registry) Get(id string) (*Run, error) {
	run, err := scanRun(r.db.QueryRow(
		`SELECT id, kind, target, started_at, rows_in, rows_out, dropped, defaulted, excluded,
		        max_rhat, min_ess, divergences, converged
		 FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get run: %w", err)
	}
	return run, nil
}

// List returns all runs, most recent first.
func (r *Registry) List() ([]*Run, error) {
	rows, err := r.db.Query(
		`SELECT id, kind, target, started_at, rows_in, rows_out, dropped, defaulted, excluded,
		        max_rhat, min_ess, divergences, converged
		 FROM runs ORDER BY started_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	var converged int
	err := s.Scan(&run.ID, &run.Kind, &run.Target, &run.StartedAt,
		&run.RowsIn, &run.RowsOut, &run.Dropped, &run.Defaulted, &run.Excluded,
		&run.MaxRHat, &run.MinESS, &run.Divergences, &converged)
	if err != nil {
		return nil, err
	}
	run.Converged = converged != 0
	return &run, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
