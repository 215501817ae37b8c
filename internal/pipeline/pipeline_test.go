package pipeline_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/walkopt/internal/config"
	"github.com/gyaneshwarpardhi/walkopt/internal/graph"
	"github.com/gyaneshwarpardhi/walkopt/internal/history"
	"github.com/gyaneshwarpardhi/walkopt/internal/pipeline"
	"github.com/gyaneshwarpardhi/walkopt/internal/results"
	"github.com/gyaneshwarpardhi/walkopt/internal/strategy"
	"github.com/gyaneshwarpardhi/walkopt/internal/verify"
)

const initialGraph = `{"0": {"1": 1}, "1": {"2": 1}, "2": {"3": 1}, "3": {"0": 1}}`

// Frequencies {0:5, 1:0, 2:10, 3:2}.
func resultsJSON() string {
	var records []string
	add := func(target, times int) {
		for i := 0; i < times; i++ {
			records = append(records, fmt.Sprintf(`{"target": %d, "success": true, "path": [1, %d]}`, target, target))
		}
	}
	add(0, 5)
	add(2, 10)
	add(3, 2)
	return `{"success_rate": 0.4, "detailed_results": [` + strings.Join(records, ", ") + "]}"
}

type fixture struct {
	dir string
	cfg *config.Config
}

func newFixture(t *testing.T, graphBody, resultsBody string) *fixture {
	t.Helper()
	dir := t.TempDir()
	gp := filepath.Join(dir, "initial_graph.json")
	rp := filepath.Join(dir, "initial_results.json")
	require.NoError(t, os.WriteFile(gp, []byte(graphBody), 0o644))
	require.NoError(t, os.WriteFile(rp, []byte(resultsBody), 0o644))

	cfg := config.Default()
	cfg.Constraints = config.Constraints{NumNodes: 4, MaxEdgesPerNode: 2, MaxTotalEdges: 8}
	cfg.Inputs.Graph = gp
	cfg.Inputs.Results = rp
	cfg.Output.Graph = filepath.Join(dir, "out", "optimized_graph.json")
	cfg.Analysis.TopTargets = 2
	return &fixture{dir: dir, cfg: cfg}
}

func quietRunner() *pipeline.Runner {
	return &pipeline.Runner{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestRun_EndToEnd(t *testing.T) {
	f := newFixture(t, initialGraph, resultsJSON())
	f.cfg.Output.Metrics = filepath.Join(f.dir, "walkopt.prom")

	rep, err := quietRunner().Run(context.Background(), f.cfg)
	require.NoError(t, err)

	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, 17, rep.Queries)
	assert.Equal(t, "ring_shortcut", rep.Strategy)
	assert.Equal(t, []graph.NodeID{2, 0}, rep.TopTargets)
	assert.True(t, rep.Verification.Valid)
	assert.Equal(t, 6, rep.Verification.TotalEdges)

	saved, err := graph.Load(f.cfg.Output.Graph, 4)
	require.NoError(t, err)
	assert.Equal(t, graph.Graph{
		2: {0: 1},
		0: {3: 1, 2: 0.5},
		3: {1: 1, 2: 1},
		1: {2: 1.5},
	}, saved)

	require.NotNil(t, rep.Initial)
	require.NotNil(t, rep.Candidate)
	assert.False(t, rep.Candidate.Skipped)
	assert.LessOrEqual(t, float64(rep.Candidate.WeightedSteps), float64(rep.Initial.WeightedSteps))

	prom, err := os.ReadFile(f.cfg.Output.Metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "walkopt_candidate_edges 6")
	assert.Contains(t, string(prom), "walkopt_candidate_valid 1")
}

func TestRun_DeterministicOutput(t *testing.T) {
	f := newFixture(t, initialGraph, resultsJSON())
	runner := quietRunner()

	_, err := runner.Run(context.Background(), f.cfg)
	require.NoError(t, err)
	first, err := os.ReadFile(f.cfg.Output.Graph)
	require.NoError(t, err)

	_, err = runner.Run(context.Background(), f.cfg)
	require.NoError(t, err)
	second, err := os.ReadFile(f.cfg.Output.Graph)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRun_InvalidCandidateIsStillSaved(t *testing.T) {
	f := newFixture(t, initialGraph, resultsJSON())
	f.cfg.Constraints.MaxTotalEdges = 5
	f.cfg.Constraints.MaxEdgesPerNode = 1

	var logs bytes.Buffer
	runner := &pipeline.Runner{Logger: slog.New(slog.NewTextHandler(&logs, nil))}
	rep, err := runner.Run(context.Background(), f.cfg)
	require.NoError(t, err, "violations are reported, not raised")

	assert.False(t, rep.Verification.Valid)
	kinds := rep.Verification.Kinds()
	assert.Equal(t, 1, kinds[verify.KindTotalEdges])
	assert.Equal(t, 2, kinds[verify.KindNodeDegree])
	assert.FileExists(t, f.cfg.Output.Graph)
	assert.Contains(t, logs.String(), "constraint violated")
}

func TestRun_FormatErrorsAbortBeforeSaving(t *testing.T) {
	cases := []struct {
		name    string
		graph   string
		results string
		wantErr error
	}{
		{
			name:    "missing target",
			graph:   initialGraph,
			results: `{"detailed_results": [{"success": true}]}`,
			wantErr: results.ErrMissingTarget,
		},
		{
			name:    "graph with wrong node set",
			graph:   `{"0": {}, "1": {}}`,
			results: resultsJSON(),
			wantErr: graph.ErrBadFormat,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.graph, tc.results)
			_, err := quietRunner().Run(context.Background(), f.cfg)
			require.ErrorIs(t, err, tc.wantErr)
			assert.NoFileExists(t, f.cfg.Output.Graph)
		})
	}
}

func TestRun_UnknownStrategy(t *testing.T) {
	f := newFixture(t, initialGraph, resultsJSON())
	f.cfg.Strategy.Name = "spiral"
	_, err := quietRunner().Run(context.Background(), f.cfg)
	assert.ErrorIs(t, err, strategy.ErrUnknownStrategy)
	assert.ErrorContains(t, err, "spiral")
}

func TestRun_EmptyStrategyUsesDefault(t *testing.T) {
	f := newFixture(t, initialGraph, resultsJSON())
	f.cfg.Strategy.Name = ""
	rep, err := quietRunner().Run(context.Background(), f.cfg)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultStrategy, rep.Strategy)
	assert.Equal(t, 6, rep.Verification.TotalEdges)
}

func TestRun_RecordsHistory(t *testing.T) {
	f := newFixture(t, initialGraph, resultsJSON())
	store, err := history.Open(filepath.Join(f.dir, "history.db"))
	require.NoError(t, err)
	defer store.Close()

	runner := quietRunner()
	runner.History = store
	rep, err := runner.Run(context.Background(), f.cfg)
	require.NoError(t, err)

	runs, err := store.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, rep.RunID, runs[0].ID)
	assert.Equal(t, 6, runs[0].TotalEdges)
	assert.True(t, runs[0].Valid)
}

func TestLatest(t *testing.T) {
	var l pipeline.Latest
	assert.Nil(t, l.Load())
	rep := &pipeline.Report{RunID: "r1"}
	l.Store(rep)
	assert.Same(t, rep, l.Load())
}
