package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/gyaneshwarpardhi/walkopt/internal/graph"
)

// Validate checks the config for:
//   - a universe of at least two nodes (a one-node ring would be a self-loop)
//   - positive edge limits
//   - strategy scales inside the weight range, so built weights stay in (0, 10]
//   - known log format
//
// It does not judge whether the limits suit each other; a candidate that
// cannot meet them fails verification instead.
func Validate(cfg *Config) error {
	if cfg.Version == "" {
		return fmt.Errorf("config: version is required")
	}
	var errs []string

	c := cfg.Constraints
	if c.NumNodes < 2 {
		errs = append(errs, fmt.Sprintf("constraints.num_nodes must be >= 2, got %d", c.NumNodes))
	}
	if c.MaxEdgesPerNode < 1 {
		errs = append(errs, fmt.Sprintf("constraints.max_edges_per_node must be >= 1, got %d", c.MaxEdgesPerNode))
	}
	if c.MaxTotalEdges < 1 {
		errs = append(errs, fmt.Sprintf("constraints.max_total_edges must be >= 1, got %d", c.MaxTotalEdges))
	}

	s := cfg.Strategy
	if !validScale(s.ShortcutScale) {
		errs = append(errs, fmt.Sprintf("strategy.shortcut_scale must be in (0, %g], got %g", graph.MaxWeight, s.ShortcutScale))
	}
	if !validScale(s.TreeBackScale) {
		errs = append(errs, fmt.Sprintf("strategy.tree_back_scale must be in (0, %g], got %g", graph.MaxWeight, s.TreeBackScale))
	}

	if cfg.Analysis.TopTargets < 0 {
		errs = append(errs, fmt.Sprintf("analysis.top_targets must be >= 0, got %d", cfg.Analysis.TopTargets))
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("logging.format must be text or json, got %q", cfg.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func validScale(v float64) bool {
	return !math.IsNaN(v) && v > 0 && v <= graph.MaxWeight
}
