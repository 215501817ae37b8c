package history

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id           TEXT PRIMARY KEY,
	started_at       TEXT NOT NULL,
	strategy         TEXT NOT NULL,
	num_nodes        INTEGER NOT NULL,
	queries          INTEGER NOT NULL,
	total_edges      INTEGER NOT NULL,
	max_out_degree   INTEGER NOT NULL,
	valid            INTEGER NOT NULL,
	violations       INTEGER NOT NULL,
	steps_initial    REAL,
	steps_candidate  REAL,
	output_path      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

// timeLayout is fixed-width so started_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one recorded optimization run. Step figures that are not finite
// (analysis skipped, target unreachable) are stored as NULL and read back as NaN.
type Run struct {
	ID             string
	StartedAt      time.Time
	Strategy       string
	NumNodes       int
	Queries        int
	TotalEdges     int
	MaxOutDegree   int
	Valid          bool
	Violations     int
	StepsInitial   float64
	StepsCandidate float64
	OutputPath     string
}

// Store is the run ledger.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite ledger at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends run to the ledger.
func (s *Store) Record(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, strategy, num_nodes, queries, total_edges,
		                   max_out_degree, valid, violations, steps_initial, steps_candidate, output_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.Strategy,
		run.NumNodes,
		run.Queries,
		run.TotalEdges,
		run.MaxOutDegree,
		boolToInt(run.Valid),
		run.Violations,
		finiteOrNull(run.StepsInitial),
		finiteOrNull(run.StepsCandidate),
		run.OutputPath,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, started_at, strategy, num_nodes, queries, total_edges,
		        max_out_degree, valid, violations, steps_initial, steps_candidate, output_path
		 FROM runs
		 ORDER BY started_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt string
		var valid int
		var initial, candidate sql.NullFloat64
		if err := rows.Scan(&r.ID, &startedAt, &r.Strategy, &r.NumNodes, &r.Queries, &r.TotalEdges,
			&r.MaxOutDegree, &valid, &r.Violations, &initial, &candidate, &r.OutputPath); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		ts, err := time.Parse(timeLayout, startedAt)
		if err != nil {
			return nil, fmt.Errorf("run %s started_at %q: %w", r.ID, startedAt, err)
		}
		r.StartedAt = ts
		r.Valid = valid != 0
		r.StepsInitial = nullToFloat(initial)
		r.StepsCandidate = nullToFloat(candidate)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// finiteOrNull stores NaN and Inf as NULL; SQLite has no portable encoding for them.
func finiteOrNull(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

func nullToFloat(f sql.NullFloat64) float64 {
	if !f.Valid {
		return math.NaN()
	}
	return f.Float64
}
