package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"explainer/internal/assembly"
	"explainer/internal/deps"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, credentials, and the video pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.MediaTools(cfg.FFmpegBinary(), cfg.FFprobeBinary()))
			statuses = append(statuses, deps.CheckFFmpegFilters(cmd.Context(), cfg.FFmpegBinary(), "subtitles", "atempo", "amix"))
			statuses = append(statuses,
				deps.CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir, false),
				deps.CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir, false),
			)

			apiKey := deps.Status{Name: "OpenAI API key", Description: "Script, speech, transcription, correction"}
			if err := cfg.RequireOpenAI(); err != nil {
				apiKey.Detail = err.Error()
			} else {
				apiKey.Available = true
			}
			statuses = append(statuses, apiKey)

			pool := deps.Status{Name: "Video pool", Command: cfg.Paths.VideoPoolDir, Description: "Random background clips", Optional: true}
			candidates, err := assembly.PoolCandidates(cfg.Paths.VideoPoolDir)
			switch {
			case err != nil:
				pool.Detail = err.Error()
			case len(candidates) == 0:
				pool.Detail = "no clips; pass --video to generate"
			default:
				pool.Available = true
				pool.Detail = fmt.Sprintf("%d clips", len(candidates))
			}
			statuses = append(statuses, pool)

			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				state := "ok"
				switch {
				case status.Failed():
					state = "missing"
				case !status.Available:
					state = "warning"
				}
				rows = append(rows, []string{status.Name, state, yesNo(!status.Optional), status.Detail})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Check", "State", "Required", "Detail"},
				rows,
				nil,
				shouldColorize(out),
			))
			failed, warnings := deps.Tally(statuses)
			if failed > 0 {
				return fmt.Errorf("%d required check(s) failed", failed)
			}
			if warnings > 0 {
				fmt.Fprintf(out, "Ready to generate (%d warning(s))\n", warnings)
				return nil
			}
			fmt.Fprintln(out, "Ready to generate")
			return nil
		},
	}
}
