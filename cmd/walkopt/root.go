package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/walkopt/internal/config"
	"github.com/gyaneshwarpardhi/walkopt/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "walkopt",
	Short: "walkopt rewires a graph so random-walk queries reach frequent targets sooner",
	Long: `walkopt reads an initial graph and the evaluator's query results, builds a
candidate graph that favours frequently queried targets, verifies it against
the structural constraints and saves it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	numNodes   int
	logLevel   string
	logFormat  string
}

var global globalFlags

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&global.configPath, "config", "", "path to YAML config (defaults apply when empty)")
	pf.IntVar(&global.numNodes, "num-nodes", 0, "override constraints.num_nodes")
	pf.StringVar(&global.logLevel, "log-level", "", "override logging.level")
	pf.StringVar(&global.logFormat, "log-format", "", "override logging.format (text|json)")

	rootCmd.AddCommand(newOptimizeCmd(), newVerifyCmd(), newProfileCmd(), newHistoryCmd())
}

// loadConfig reads --config (or the defaults) and returns the loader when a
// file was given.
func loadConfig() (*config.Config, *config.Loader, error) {
	if global.configPath == "" {
		return config.Default(), nil, nil
	}
	loader, err := config.NewLoader(global.configPath)
	if err != nil {
		return nil, nil, err
	}
	return loader.Config(), loader, nil
}

// withGlobalOverrides returns a copy of cfg with the persistent flags applied.
func withGlobalOverrides(cfg *config.Config) *config.Config {
	c := *cfg
	if global.numNodes != 0 {
		c.Constraints.NumNodes = global.numNodes
	}
	if global.logLevel != "" {
		c.Logging.Level = global.logLevel
	}
	if global.logFormat != "" {
		c.Logging.Format = global.logFormat
	}
	return &c
}

// setupLogging installs the configured logger as the slog default. Logs go to
// stderr so stdout carries only command output.
func setupLogging(cfg *config.Config) *slog.Logger {
	logger := logging.New(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)
	return logger
}
