package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/walkopt/internal/analysis"
	"github.com/gyaneshwarpardhi/walkopt/internal/history"
)

func newHistoryCmd() *cobra.Command {
	var dbPath string
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded optimization runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, _, err := loadConfig()
			if err != nil {
				return err
			}
			cfg := withGlobalOverrides(base)
			if dbPath == "" {
				dbPath = cfg.Output.History
			}
			if dbPath == "" {
				return errors.New("no history database: pass --db or set output.history")
			}

			store, err := history.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tSTARTED\tSTRATEGY\tEDGES\tVALID\tVIOLATIONS\tSTEPS BEFORE\tSTEPS AFTER")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%t\t%d\t%s\t%s\n",
					r.ID, r.StartedAt.Local().Format(time.DateTime), r.Strategy, r.TotalEdges,
					r.Valid, r.Violations, analysis.Steps(r.StepsInitial), analysis.Steps(r.StepsCandidate))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "history database (defaults to output.history)")
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to list")
	return cmd
}
