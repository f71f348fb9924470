package metrics

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	coremetrics "github.com/kilianp07/vrptw/core/metrics"
)

// SQLiteConfig configures the run history recorder.
type SQLiteConfig struct {
	Path string `json:"path"`
}

// SQLiteRecorder keeps a history of builds and solves in a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS vrptw_builds (
    run_id TEXT PRIMARY KEY,
    variant TEXT,
    customers INTEGER,
    vehicles INTEGER,
    subsets INTEGER,
    variables INTEGER,
    constraints INTEGER,
    duration_ms REAL,
    ts INTEGER
);
CREATE TABLE IF NOT EXISTS vrptw_solves (
    run_id TEXT PRIMARY KEY,
    variant TEXT,
    status TEXT,
    objective REAL,
    has_solution INTEGER,
    runtime_ms REAL,
    routes INTEGER,
    err TEXT,
    ts INTEGER
);`

// NewSQLiteRecorder opens or creates the database and ensures the schema.
func NewSQLiteRecorder(cfg SQLiteConfig) (*SQLiteRecorder, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite recorder: path is required")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite recorder schema: %w", err)
	}
	return &SQLiteRecorder{db: db}, nil
}

// RecordBuild stores the model size of a run.
func (s *SQLiteRecorder) RecordBuild(ev coremetrics.BuildEvent) error {
	_, err := s.db.Exec(`INSERT INTO vrptw_builds
        (run_id, variant, customers, vehicles, subsets, variables, constraints, duration_ms, ts)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(run_id) DO UPDATE SET
            subsets = excluded.subsets,
            variables = excluded.variables,
            constraints = excluded.constraints,
            duration_ms = excluded.duration_ms`,
		ev.RunID, ev.Variant, ev.Customers, ev.Vehicles, ev.Subsets, ev.Variables, ev.Constraints,
		ms(ev.Duration), ev.Time.UnixMilli())
	return err
}

// RecordSolve stores the outcome of a run.
func (s *SQLiteRecorder) RecordSolve(ev coremetrics.SolveEvent) error {
	_, err := s.db.Exec(`INSERT INTO vrptw_solves
        (run_id, variant, status, objective, has_solution, runtime_ms, routes, err, ts)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(run_id) DO UPDATE SET
            status = excluded.status,
            objective = excluded.objective,
            has_solution = excluded.has_solution,
            runtime_ms = excluded.runtime_ms,
            routes = excluded.routes,
            err = excluded.err`,
		ev.RunID, ev.Variant, ev.Status, ev.Objective, ev.HasSolution, ms(ev.Runtime), ev.Routes,
		ev.Err, ev.Time.UnixMilli())
	return err
}

// Solves returns the recorded solves of a variant, oldest first. An empty
// variant returns every solve.
func (s *SQLiteRecorder) Solves(variant string) ([]coremetrics.SolveEvent, error) {
	rows, err := s.db.Query(`SELECT run_id, variant, status, objective, has_solution, runtime_ms, routes, err, ts
        FROM vrptw_solves WHERE ? = '' OR variant = ? ORDER BY ts, run_id`, variant, variant)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []coremetrics.SolveEvent
	for rows.Next() {
		var ev coremetrics.SolveEvent
		var runtime float64
		var ts int64
		if err := rows.Scan(&ev.RunID, &ev.Variant, &ev.Status, &ev.Objective, &ev.HasSolution,
			&runtime, &ev.Routes, &ev.Err, &ts); err != nil {
			return nil, err
		}
		ev.Runtime = time.Duration(runtime * float64(time.Millisecond))
		ev.Time = time.UnixMilli(ts)
		res = append(res, ev)
	}
	return res, rows.Err()
}

// Flush closes the database.
func (s *SQLiteRecorder) Flush() error { return s.db.Close() }

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
