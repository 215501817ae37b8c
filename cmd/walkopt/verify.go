package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/walkopt/internal/config"
	"github.com/gyaneshwarpardhi/walkopt/internal/graph"
	"github.com/gyaneshwarpardhi/walkopt/internal/verify"
)

func newVerifyCmd() *cobra.Command {
	var maxEdgesPerNode, maxTotalEdges int
	cmd := &cobra.Command{
		Use:   "verify <graph.json>",
		Short: "Check a graph file against the constraints (exit 2 when invalid)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, _, err := loadConfig()
			if err != nil {
				return err
			}
			cfg := withGlobalOverrides(base)
			if maxEdgesPerNode != 0 {
				cfg.Constraints.MaxEdgesPerNode = maxEdgesPerNode
			}
			if maxTotalEdges != 0 {
				cfg.Constraints.MaxTotalEdges = maxTotalEdges
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			setupLogging(cfg)

			// No universe check on load: a wrong node set is a finding, not a format error.
			g, err := graph.Load(args[0], 0)
			if err != nil {
				return err
			}
			rep := verify.Check(g, cfg.Constraints)
			fmt.Fprint(cmd.OutOrStdout(), rep.String())
			if !rep.Valid {
				return &exitError{code: 2}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxEdgesPerNode, "max-edges-per-node", 0, "override constraints.max_edges_per_node")
	cmd.Flags().IntVar(&maxTotalEdges, "max-total-edges", 0, "override constraints.max_total_edges")
	return cmd
}
