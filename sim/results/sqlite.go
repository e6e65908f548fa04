package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/pyrochlore-sim/pyrochlore-sim/sim"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// SQLiteStore records sweep Results per run. Only aggregated Results and the
// run configuration are stored; lattice state is never persisted.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Run describes a stored sweep.
type Run struct {
	ID        string
	Seed      int64
	Config    string // YAML rendering of the sim.Config
	StartedAt time.Time
}

// Open opens (creating if needed) the database at path and its tables.
func Open(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "pyrochlore.db"
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// every pooled connection to :memory: would otherwise see its own database
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		config TEXT NOT NULL,
		started_at TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS results (
		run_id TEXT NOT NULL REFERENCES runs(id),
		seq INTEGER NOT NULL,
		temperature REAL NOT NULL,
		average_energy REAL NOT NULL,
		average_magnetism REAL NOT NULL,
		average_heat_capacity REAL NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create results table: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Path returns the database path.
func (s *SQLiteStore) Path() string { return s.path }

// BeginRun registers a run before its first Result is saved.
func (s *SQLiteStore) BeginRun(ctx context.Context, id string, cfg sim.Config, startedAt time.Time) error {
	rendered, err := cfg.YAML()
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, seed, config, started_at) VALUES (?, ?, ?, ?)`,
		id, cfg.Seed, string(rendered), startedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("insert run %s: %w", id, err)
	}
	return nil
}

// Save appends r as the next Result of run id.
func (s *SQLiteStore) Save(ctx context.Context, id string, r sim.Result) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO results (run_id, seq, temperature, average_energy, average_magnetism, average_heat_capacity)
		 VALUES (?, (SELECT COUNT(*) FROM results WHERE run_id = ?), ?, ?, ?, ?)`,
		id, id, r.Temperature, r.AverageEnergy, r.AverageMagnetism, r.AverageHeatCapacity); err != nil {
		return fmt.Errorf("insert result for run %s at T=%v: %w", id, r.Temperature, err)
	}
	return nil
}

// List returns the Results of run id in the order they were saved.
func (s *SQLiteStore) List(ctx context.Context, id string) ([]sim.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT temperature, average_energy, average_magnetism, average_heat_capacity
		 FROM results WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("select results: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []sim.Result
	for rows.Next() {
		var r sim.Result
		if err := rows.Scan(&r.Temperature, &r.AverageEnergy, &r.AverageMagnetism, &r.AverageHeatCapacity); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Runs returns every stored run, oldest first.
func (s *SQLiteStore) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, seed, config, started_at FROM runs ORDER BY started_at, id`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Run
	for rows.Next() {
		var (
			run     Run
			started string
		)
		if err := rows.Scan(&run.ID, &run.Seed, &run.Config, &started); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parse started_at for run %s: %w", run.ID, err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
