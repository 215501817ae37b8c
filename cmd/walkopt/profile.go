package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/walkopt/internal/config"
	"github.com/gyaneshwarpardhi/walkopt/internal/profile"
	"github.com/gyaneshwarpardhi/walkopt/internal/results"
)

func newProfileCmd() *cobra.Command {
	var resultsPath string
	var top int
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print the most frequently queried targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, _, err := loadConfig()
			if err != nil {
				return err
			}
			cfg := withGlobalOverrides(base)
			if resultsPath != "" {
				cfg.Inputs.Results = resultsPath
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			setupLogging(cfg)

			resultLog, err := results.Load(cfg.Inputs.Results)
			if err != nil {
				return err
			}
			p, err := profile.Build(cfg.Constraints.NumNodes, resultLog)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d queries, success rate %.3f, mean successful path %.2f\n",
				len(resultLog.Queries), resultLog.SuccessRate(), resultLog.MeanPathLength())
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RANK\tNODE\tQUERIES\tSUCCESSES\tPATH VISITS")
			for rank, id := range p.Top(top) {
				fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\n", rank, id, p.Counts[id], p.Successes[id], p.Visits[id])
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&resultsPath, "results", "", "override inputs.results")
	cmd.Flags().IntVar(&top, "top", 10, "number of targets to print")
	return cmd
}
