// Package pipeline runs one optimization: load the inputs, profile the
// result log, build a candidate, verify it, compare layouts, save it and
// record the run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/walkopt/internal/analysis"
	"github.com/gyaneshwarpardhi/walkopt/internal/config"
	"github.com/gyaneshwarpardhi/walkopt/internal/graph"
	"github.com/gyaneshwarpardhi/walkopt/internal/history"
	"github.com/gyaneshwarpardhi/walkopt/internal/metrics"
	"github.com/gyaneshwarpardhi/walkopt/internal/profile"
	"github.com/gyaneshwarpardhi/walkopt/internal/results"
	"github.com/gyaneshwarpardhi/walkopt/internal/strategy"
	"github.com/gyaneshwarpardhi/walkopt/internal/verify"
)

// Report is the outcome of one run.
type Report struct {
	RunID          string           `json:"run_id"`
	StartedAt      time.Time        `json:"started_at"`
	DurationMs     int64            `json:"duration_ms"`
	Strategy       string           `json:"strategy"`
	Queries        int              `json:"queries"`
	SuccessRate    float64          `json:"success_rate"`
	MeanPathLength float64          `json:"mean_path_length"`
	TopTargets     []graph.NodeID   `json:"top_targets"`
	Verification   *verify.Report   `json:"verification"`
	Initial        *analysis.Result `json:"initial,omitempty"`
	Candidate      *analysis.Result `json:"candidate,omitempty"`
	OutputPath     string           `json:"output_path"`
}

// Runner holds what a run needs besides the config.
type Runner struct {
	Registry *strategy.Registry // nil: built-in strategies tuned by the config
	History  *history.Store     // nil: runs are not recorded
	Logger   *slog.Logger       // nil: slog.Default()
	Now      func() time.Time   // nil: time.Now
}

// Build profiles resultLog and lays out a candidate with the configured strategy.
// It performs no I/O.
func (r *Runner) Build(cfg *config.Config, resultLog *results.Log) (graph.Graph, *profile.Profile, error) {
	b, err := r.builder(cfg)
	if err != nil {
		return nil, nil, err
	}
	p, err := profile.Build(cfg.Constraints.NumNodes, resultLog)
	if err != nil {
		return nil, nil, err
	}
	g, err := b.Build(p)
	if err != nil {
		return nil, nil, fmt.Errorf("strategy %s: %w", b.Name(), err)
	}
	return g, p, nil
}

// builder resolves the configured strategy; an empty name selects the
// registry default.
func (r *Runner) builder(cfg *config.Config) (strategy.Builder, error) {
	reg := r.Registry
	if reg == nil {
		reg = strategy.NewDefaultRegistry(cfg.Strategy)
	}
	return reg.Get(cfg.Strategy.Name)
}

// Run executes the whole pipeline once. Input-format and I/O errors abort the
// run; constraint violations do not: the candidate is saved either way and
// the verdict is in the report.
func (r *Runner) Run(ctx context.Context, cfg *config.Config) (*Report, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := r.Now
	if now == nil {
		now = time.Now
	}
	start := now()
	rep := &Report{
		RunID:      uuid.New().String(),
		StartedAt:  start,
		Strategy:   cfg.Strategy.Name,
		OutputPath: cfg.Output.Graph,
	}
	logger = logger.With("run_id", rep.RunID)

	rep, err := r.run(ctx, cfg, rep, logger)
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case !rep.Verification.Valid:
		outcome = "invalid"
	}
	metrics.RunsTotal.WithLabelValues(outcome).Inc()
	if err != nil {
		return nil, err
	}

	rep.DurationMs = now().Sub(start).Milliseconds()
	metrics.RunDuration.Observe(float64(rep.DurationMs))
	metrics.LastRunTimestamp.Set(float64(now().Unix()))
	if cfg.Output.Metrics != "" {
		if err := metrics.WriteTextfile(cfg.Output.Metrics); err != nil {
			return nil, err
		}
	}
	if r.History != nil {
		if err := r.History.Record(ctx, historyRun(cfg, rep)); err != nil {
			return nil, err
		}
	}
	logger.Info("run finished", "valid", rep.Verification.Valid, "duration_ms", rep.DurationMs, "output", rep.OutputPath)
	return rep, nil
}

func (r *Runner) run(ctx context.Context, cfg *config.Config, rep *Report, logger *slog.Logger) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := cfg.Constraints.NumNodes

	logger.Info("loading initial graph", "path", cfg.Inputs.Graph)
	initial, err := graph.Load(cfg.Inputs.Graph, n)
	if err != nil {
		return nil, err
	}
	logger.Info("loading query results", "path", cfg.Inputs.Results)
	resultLog, err := results.Load(cfg.Inputs.Results)
	if err != nil {
		return nil, err
	}
	rep.Queries = len(resultLog.Queries)
	rep.SuccessRate = resultLog.SuccessRate()
	rep.MeanPathLength = resultLog.MeanPathLength()
	metrics.QueriesProfiled.Set(float64(rep.Queries))
	logger.Info("results loaded",
		"queries", rep.Queries,
		"success_rate", rep.SuccessRate,
		"mean_path_length", rep.MeanPathLength,
		"metadata_fields", len(resultLog.Metadata))

	b, err := r.builder(cfg)
	if err != nil {
		return nil, err
	}
	rep.Strategy = b.Name()
	candidate, p, err := r.Build(cfg, resultLog)
	if err != nil {
		return nil, err
	}
	rep.TopTargets = p.Top(cfg.Analysis.TopTargets)
	logger.Info("candidate built", "strategy", rep.Strategy, "nodes", candidate.NodeCount(),
		"edges", candidate.EdgeCount(), "top_targets", rep.TopTargets)

	rep.Verification = verify.Check(candidate, cfg.Constraints)
	recordVerification(rep.Verification)
	if !rep.Verification.Valid {
		for _, v := range rep.Verification.Violations {
			logger.Warn("constraint violated", "kind", v.Kind, "detail", v.Message)
		}
		logger.Warn("candidate does not meet the constraints; saving it for inspection",
			"violations", len(rep.Verification.Violations))
	}

	if cfg.Analysis.On() {
		opts := analysis.Options{TopTargets: cfg.Analysis.TopTargets, MaxNodes: cfg.Analysis.MaxNodes}
		rep.Initial = analysis.Analyze(initial, p, opts)
		rep.Candidate = analysis.Analyze(candidate, p, opts)
		if rep.Candidate.Skipped {
			logger.Info("layout analysis skipped", "nodes", n, "max_nodes", cfg.Analysis.MaxNodes)
		} else {
			metrics.ExpectedSteps.WithLabelValues("initial").Set(float64(rep.Initial.WeightedSteps))
			metrics.ExpectedSteps.WithLabelValues("candidate").Set(float64(rep.Candidate.WeightedSteps))
			logger.Info("layout analysis",
				"initial", rep.Initial.String(),
				"candidate", rep.Candidate.String())
		}
	}

	logger.Info("saving candidate graph", "path", cfg.Output.Graph)
	if err := graph.Save(candidate, cfg.Output.Graph); err != nil {
		return nil, err
	}
	return rep, nil
}

func recordVerification(v *verify.Report) {
	metrics.CandidateEdges.Set(float64(v.TotalEdges))
	metrics.CandidateMaxOutDegree.Set(float64(v.MaxOutDegree))
	valid := 0.0
	if v.Valid {
		valid = 1
	}
	metrics.CandidateValid.Set(valid)
	metrics.Violations.Reset()
	for kind, count := range v.Kinds() {
		metrics.Violations.WithLabelValues(string(kind)).Set(float64(count))
	}
}

func historyRun(cfg *config.Config, rep *Report) history.Run {
	run := history.Run{
		ID:             rep.RunID,
		StartedAt:      rep.StartedAt,
		Strategy:       rep.Strategy,
		NumNodes:       cfg.Constraints.NumNodes,
		Queries:        rep.Queries,
		TotalEdges:     rep.Verification.TotalEdges,
		MaxOutDegree:   rep.Verification.MaxOutDegree,
		Valid:          rep.Verification.Valid,
		Violations:     len(rep.Verification.Violations),
		StepsInitial:   math.NaN(),
		StepsCandidate: math.NaN(),
		OutputPath:     rep.OutputPath,
	}
	if rep.Initial != nil && !rep.Initial.Skipped {
		run.StepsInitial = float64(rep.Initial.WeightedSteps)
	}
	if rep.Candidate != nil && !rep.Candidate.Skipped {
		run.StepsCandidate = float64(rep.Candidate.WeightedSteps)
	}
	return run
}
