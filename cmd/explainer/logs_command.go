package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"explainer/internal/config"
	"explainer/internal/history"
	"explainer/internal/logs"
	"explainer/internal/pipeline"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		follow bool
		raw    bool
	)
	cmd := &cobra.Command{
		Use:   "logs <run-id>",
		Short: "Show the log of a pipeline run",
		Long:  "Show the per-run log. The run id may be the short form printed by 'explainer runs'.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runDir, err := resolveRunDir(cmd, cfg, args[0])
			if err != nil {
				return err
			}
			path := filepath.Join(runDir, pipeline.RunLogFile)

			out := cmd.OutOrStdout()
			emit := func(line string) {
				if !raw {
					line = logs.Format(line)
				}
				fmt.Fprintln(out, line)
			}
			tail, offset, err := logs.Last(path, lines)
			if err != nil {
				return err
			}
			if len(tail) == 0 && !follow {
				fmt.Fprintf(out, "No log entries in %s\n", path)
				return nil
			}
			for _, line := range tail {
				emit(line)
			}
			if !follow {
				return nil
			}
			return logs.Follow(cmd.Context(), path, offset, logs.DefaultPoll, emit)
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show (0 for all)")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print JSON records unformatted")
	return cmd
}

// resolveRunDir maps a full or short run id to its work directory. A
// directory under the work root wins; otherwise run history is searched by
// prefix.
func resolveRunDir(cmd *cobra.Command, cfg *config.Config, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("invalid run id %q", id)
	}
	direct := filepath.Join(cfg.Paths.WorkDir, id)
	if info, err := os.Stat(direct); err == nil && info.IsDir() {
		return direct, nil
	}

	store, err := history.Open(cfg.Paths.HistoryPath)
	if err != nil {
		return "", fmt.Errorf("open run history: %w", err)
	}
	defer store.Close()
	runs, err := store.List(cmd.Context(), 0)
	if err != nil {
		return "", err
	}
	var matches []history.Run
	for _, run := range runs {
		if strings.HasPrefix(run.ID, id) {
			matches = append(matches, run)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no run matches %q", id)
	case 1:
		if matches[0].WorkDir == "" {
			return "", errors.New("run " + matches[0].ID + " has no work directory recorded")
		}
		return matches[0].WorkDir, nil
	default:
		return "", fmt.Errorf("run id %q is ambiguous (%d matches)", id, len(matches))
	}
}
