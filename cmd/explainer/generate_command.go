package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"explainer/internal/history"
	"explainer/internal/logging"
	"explainer/internal/notifications"
	"explainer/internal/pipeline"
	"explainer/internal/services"
)

type generateFlags struct {
	language   string
	video      string
	text       string
	textFile   string
	source     string
	sourceFile string
	audio      string
	speed      float64
	mode       string
	output     string
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a narrated, captioned video from study text",
		Long: "Generate runs script generation, narration, transcription, caption\n" +
			"correction, and video assembly in sequence. Supply study text with\n" +
			"--source/--source-file, or skip generation with --text/--text-file.\n" +
			"A file argument of '-' reads standard input.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			scriptText, err := textOrFile(flags.text, flags.textFile, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("voice-over text: %w", err)
			}
			sourceText, err := textOrFile(flags.source, flags.sourceFile, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("study text: %w", err)
			}

			runID := pipeline.NewRunID()
			rc, err := pipeline.NewContext(cfg, runID, pipeline.Inputs{
				Language:            flags.language,
				VideoPath:           flags.video,
				ScriptText:          scriptText,
				SourceText:          sourceText,
				BackgroundAudioPath: flags.audio,
				Speed:               flags.speed,
				Mode:                flags.mode,
				OutputPath:          flags.output,
			})
			if err != nil {
				return err
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			opts := []pipeline.Option{pipeline.WithNotifier(notifications.NewService(cfg))}
			store, err := history.Open(cfg.Paths.HistoryPath)
			if err != nil {
				logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "this run will not appear in 'explainer runs'"),
				)
			} else {
				defer store.Close()
				opts = append(opts, pipeline.WithRecorder(store))
			}

			p, err := pipeline.NewFromConfig(cfg, logger, opts...)
			if err != nil {
				return err
			}
			result, err := p.Run(cmd.Context(), rc)
			if err != nil {
				if kind := services.FailureKind(err); kind != "" {
					return fmt.Errorf("run %s failed (%s): %w", runID, kind, err)
				}
				return fmt.Errorf("run %s failed: %w", runID, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:       %s\n", result.RunID)
			fmt.Fprintf(out, "Video:     %s\n", result.OutputPath)
			if result.CaptionsSidecar != "" {
				fmt.Fprintf(out, "Captions:  %s\n", result.CaptionsSidecar)
			}
			fmt.Fprintf(out, "Artifacts: %s\n", rc.RunDir())
			if len(result.Drift) > 0 {
				fmt.Fprintf(out, "Warning:   corrected captions drifted from the draft in %d place(s)\n", len(result.Drift))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.language, "language", "l", "", "Narration language (en, es, fr, pt)")
	cmd.Flags().StringVar(&flags.video, "video", "", "Background video (default: random clip from the video pool)")
	cmd.Flags().StringVar(&flags.text, "text", "", "Voice-over text used verbatim instead of generating a script")
	cmd.Flags().StringVar(&flags.textFile, "text-file", "", "File containing the voice-over text")
	cmd.Flags().StringVar(&flags.source, "source", "", "Study text to explain")
	cmd.Flags().StringVar(&flags.sourceFile, "source-file", "", "File containing the study text")
	cmd.Flags().StringVar(&flags.audio, "audio", "", "Background audio mixed under the narration")
	cmd.Flags().Float64Var(&flags.speed, "speed", 0, "Playback speed factor (default from config)")
	cmd.Flags().StringVar(&flags.mode, "mode", "", "Caption mode: simple or centered")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output video path")
	cmd.MarkFlagsMutuallyExclusive("text", "text-file")
	cmd.MarkFlagsMutuallyExclusive("source", "source-file")
	return cmd
}

func textOrFile(value, path string, stdin io.Reader) (string, error) {
	if strings.TrimSpace(path) == "" {
		return value, nil
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
