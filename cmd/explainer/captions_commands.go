package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"explainer/internal/captions"
)

func newCaptionsCommand(ctx *commandContext) *cobra.Command {
	captionsCmd := &cobra.Command{
		Use:   "captions",
		Short: "Inspect and rebuild caption files",
	}
	captionsCmd.AddCommand(newCaptionsChunkCommand(ctx))
	captionsCmd.AddCommand(newCaptionsShowCommand())
	return captionsCmd
}

func newCaptionsChunkCommand(ctx *commandContext) *cobra.Command {
	var (
		maxWords int
		mode     string
		output   string
	)
	cmd := &cobra.Command{
		Use:   "chunk <transcript.json>",
		Short: "Re-chunk a saved transcription into captions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			transcript, err := captions.ReadTranscript(args[0])
			if err != nil {
				return err
			}
			window := maxWords
			if window <= 0 {
				window = cfg.MaxWordsPerChunk(mode)
			}
			track := captions.BuildTrack(transcript.Segments, window)
			if track.Empty() {
				return errors.New("transcript contains no words")
			}
			if output != "" {
				if err := track.Write(output); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d captions to %s\n", track.Len(), output)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), track.String())
			return nil
		},
	}
	cmd.Flags().IntVarP(&maxWords, "max-words", "w", 0, "Words per caption (default from caption mode)")
	cmd.Flags().StringVar(&mode, "mode", "", "Caption mode used to pick the default window: simple or centered")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write captions to this file instead of stdout")
	return cmd
}

func newCaptionsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "show <file.srt>",
		Short:       "Display a caption file as a table and report problems",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := captions.Read(args[0])
			if err != nil {
				return err
			}
			rows := make([][]string, 0, track.Len())
			for _, chunk := range track.Chunks {
				rows = append(rows, []string{
					strconv.Itoa(chunk.Index),
					captions.FormatTimestamp(chunk.Start),
					captions.FormatTimestamp(chunk.End),
					fmt.Sprintf("%.3fs", chunk.End-chunk.Start),
					truncate(strings.ReplaceAll(chunk.Text, "\n", " / "), 60),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Start", "End", "Duration", "Text"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
				shouldColorize(out),
			))
			fmt.Fprintf(out, "%d captions, %.3fs total\n", track.Len(), track.Duration())
			if err := captions.Validate(track); err != nil {
				fmt.Fprintln(out, "Problems:")
				for _, line := range strings.Split(err.Error(), "\n") {
					fmt.Fprintf(out, "  - %s\n", line)
				}
				return errors.New("caption file failed validation")
			}
			return nil
		},
	}
}
