package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"explainer/internal/history"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent pipeline runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.Paths.HistoryPath)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					string(run.Status),
					run.Language,
					run.CaptionMode,
					formatRunDuration(run),
					runDetail(run),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Status", "Lang", "Mode", "Took", "Result"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				shouldColorize(out),
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatRunDuration(run history.Run) string {
	d := run.Duration()
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Second).String()
}

func runDetail(run history.Run) string {
	switch run.Status {
	case history.StatusSucceeded:
		return filepath.Base(run.OutputPath)
	case history.StatusFailed:
		label := run.FailureKind
		if label == "" {
			label = "failed"
		}
		if run.FailedStage != "" {
			label += " at " + run.FailedStage
		}
		return label
	default:
		return "in progress or interrupted"
	}
}
