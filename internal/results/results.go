package results

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/gyaneshwarpardhi/walkopt/internal/graph"
)

var (
	// ErrMissingResults is returned when the log has no detailed_results array.
	ErrMissingResults = errors.New("results: detailed_results is required")
	// ErrMissingTarget is returned when a query record has no target.
	ErrMissingTarget = errors.New("results: query target is required")
)

// Query is one recorded random-walk query.
type Query struct {
	Target  graph.NodeID   `json:"target"`
	Success bool           `json:"success"`
	Path    []graph.NodeID `json:"path,omitempty"`
}

// Log is the evaluator's output for one graph.
type Log struct {
	Queries  []Query
	Metadata map[string]json.RawMessage // every top-level field except detailed_results
}

// rawQuery keeps target optional so its absence can be detected.
type rawQuery struct {
	Target  *graph.NodeID  `json:"target"`
	Success bool           `json:"success"`
	Path    []graph.NodeID `json:"path"`
}

// Load reads and decodes a result log file.
func Load(path string) (*Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results %s: %w", path, err)
	}
	l, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("results %s: %w", path, err)
	}
	return l, nil
}

// Decode parses a result log.
func Decode(data []byte) (*Log, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	raw, ok := top["detailed_results"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, ErrMissingResults
	}
	delete(top, "detailed_results")

	var records []rawQuery
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse detailed_results: %w", err)
	}
	l := &Log{Queries: make([]Query, 0, len(records)), Metadata: top}
	for i, r := range records {
		if r.Target == nil {
			return nil, fmt.Errorf("detailed_results[%d]: %w", i, ErrMissingTarget)
		}
		l.Queries = append(l.Queries, Query{Target: *r.Target, Success: r.Success, Path: r.Path})
	}
	return l, nil
}

// SuccessRate returns the fraction of successful queries (0 for an empty log).
func (l *Log) SuccessRate() float64 {
	if len(l.Queries) == 0 {
		return 0
	}
	ok := 0
	for _, q := range l.Queries {
		if q.Success {
			ok++
		}
	}
	return float64(ok) / float64(len(l.Queries))
}

// MeanPathLength averages recorded path lengths over successful queries.
func (l *Log) MeanPathLength() float64 {
	var sum, n int
	for _, q := range l.Queries {
		if q.Success && len(q.Path) > 0 {
			sum += len(q.Path)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
