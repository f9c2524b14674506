package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SrWildman/dfs/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var showOutcomes bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent pipeline runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				outcome := "ok"
				if !run.Success {
					outcome = "failed"
				}
				duration := run.FinishedAt.Sub(run.StartedAt).Round(time.Second)
				rows = append(rows, []string{
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					run.Kind,
					outcome,
					duration.String(),
					run.ID,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Kind", "Result", "Duration", "Run ID"}, rows, nil))

			if !showOutcomes {
				return nil
			}
			for _, run := range runs {
				outcomes, err := store.RunOutcomes(cmd.Context(), run.ID)
				if err != nil {
					return fmt.Errorf("list outcomes for %s: %w", run.ID, err)
				}
				if len(outcomes) == 0 {
					continue
				}
				fmt.Fprintf(out, "\nRun %s:\n", run.ID)
				detailRows := make([][]string, 0, len(outcomes))
				for _, outcome := range outcomes {
					detailRows = append(detailRows, []string{
						outcome.Category, outcome.Stage, outcome.Status, outcome.Detail,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Category", "Stage", "Status", "Detail"}, detailRows, nil))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&showOutcomes, "outcomes", false, "Include per-category outcomes for each run")
	return cmd
}
