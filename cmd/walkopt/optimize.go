package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/walkopt/internal/api"
	"github.com/gyaneshwarpardhi/walkopt/internal/config"
	"github.com/gyaneshwarpardhi/walkopt/internal/history"
	"github.com/gyaneshwarpardhi/walkopt/internal/pipeline"
)

type optimizeFlags struct {
	graph    string
	results  string
	output   string
	strategy string
	metrics  string
	history  string
	strict   bool
	watch    bool
	listen   string
}

func newOptimizeCmd() *cobra.Command {
	var f optimizeFlags
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Build, verify and save a candidate graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(cmd, &f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.graph, "graph", "", "override inputs.graph")
	fl.StringVar(&f.results, "results", "", "override inputs.results")
	fl.StringVar(&f.output, "output", "", "override output.graph")
	fl.StringVar(&f.strategy, "strategy", "", "override strategy.name (ring_shortcut|heap_tree)")
	fl.StringVar(&f.metrics, "metrics-file", "", "override output.metrics (Prometheus textfile)")
	fl.StringVar(&f.history, "history", "", "override output.history (SQLite run ledger)")
	fl.BoolVar(&f.strict, "strict", false, "exit with status 2 when the candidate fails verification")
	fl.BoolVar(&f.watch, "watch", false, "re-run whenever the config or an input file changes (needs --config)")
	fl.StringVar(&f.listen, "listen", "", "in watch mode, serve /healthz, /metrics and /v1/report on this address")
	return cmd
}

// apply returns a copy of cfg with the global and optimize flags applied.
func (f *optimizeFlags) apply(cfg *config.Config) *config.Config {
	c := withGlobalOverrides(cfg)
	if f.graph != "" {
		c.Inputs.Graph = f.graph
	}
	if f.results != "" {
		c.Inputs.Results = f.results
	}
	if f.output != "" {
		c.Output.Graph = f.output
	}
	if f.strategy != "" {
		c.Strategy.Name = f.strategy
	}
	if f.metrics != "" {
		c.Output.Metrics = f.metrics
	}
	if f.history != "" {
		c.Output.History = f.history
	}
	return c
}

func runOptimize(cmd *cobra.Command, f *optimizeFlags) error {
	// ── Load config ──────────────────────────────────────────────────────────
	base, loader, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := f.apply(base)
	if err := config.Validate(cfg); err != nil {
		return err
	}
	logger := setupLogging(cfg)

	// ── Run ledger ───────────────────────────────────────────────────────────
	runner := &pipeline.Runner{Logger: logger}
	if cfg.Output.History != "" {
		store, err := history.Open(cfg.Output.History)
		if err != nil {
			return err
		}
		defer store.Close()
		runner.History = store
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if f.watch {
		if loader == nil {
			return errors.New("--watch needs --config")
		}
		return watch(ctx, cmd.OutOrStdout(), loader, f, cfg, runner)
	}

	rep, err := runner.Run(ctx, cfg)
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), rep)
	if f.strict && !rep.Verification.Valid {
		return &exitError{code: 2}
	}
	return nil
}

func watch(ctx context.Context, out io.Writer, loader *config.Loader, f *optimizeFlags, cfg *config.Config, runner *pipeline.Runner) error {
	latest := &pipeline.Latest{}
	runOnce := func(c *config.Config) {
		rep, err := runner.Run(ctx, c)
		if err != nil {
			slog.Error("run failed; previous output left in place", "err", err)
			return
		}
		latest.Store(rep)
		printReport(out, rep)
	}

	runOnce(cfg)
	loader.OnChange(func(newCfg *config.Config) {
		c := f.apply(newCfg)
		if err := config.Validate(c); err != nil {
			slog.Warn("re-run skipped: config invalid", "err", err)
			return
		}
		runOnce(c)
	})
	stopWatch, err := loader.Watch(cfg.Inputs.Graph, cfg.Inputs.Results)
	if err != nil {
		return err
	}
	defer stopWatch()
	slog.Info("watching for changes", "config", global.configPath,
		"graph", cfg.Inputs.Graph, "results", cfg.Inputs.Results)

	if f.listen == "" {
		<-ctx.Done()
		slog.Info("shutting down")
		return nil
	}

	// ── Status server ────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         f.listen,
		Handler:      api.New(latest),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	errC := make(chan error, 1)
	go func() {
		slog.Info("status server starting", "addr", f.listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()

	select {
	case err := <-errC:
		return fmt.Errorf("status server: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

func printReport(w io.Writer, rep *pipeline.Report) {
	fmt.Fprintf(w, "run %s strategy=%s queries=%d success_rate=%.3f\n",
		rep.RunID, rep.Strategy, rep.Queries, rep.SuccessRate)
	fmt.Fprint(w, rep.Verification.String())
	if rep.Initial != nil && rep.Candidate != nil && !rep.Candidate.Skipped {
		fmt.Fprintf(w, "expected steps to top targets: initial=%s candidate=%s\n",
			rep.Initial.WeightedSteps, rep.Candidate.WeightedSteps)
	}
	fmt.Fprintf(w, "candidate saved to %s\n", rep.OutputPath)
}
