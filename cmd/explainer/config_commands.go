package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"explainer/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the explainer configuration",
	}
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration with the default video settings",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := sampleConfigTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("check config path: %w", err)
				}
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  1. Set api_key under [openai] or export OPENAI_API_KEY")
			fmt.Fprintln(out, "  2. Point video_pool_dir at a folder of background clips")
			fmt.Fprintln(out, "  3. Run 'explainer doctor' to check ffmpeg and directories")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing configuration file")
	return cmd
}

func sampleConfigTarget(flagValue string) (string, error) {
	if strings.TrimSpace(flagValue) == "" {
		target, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return target, nil
	}
	target, err := config.ExpandPath(flagValue)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return target, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and print the effective settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if !ctx.configSeen {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, effectiveSettings(cfg), nil, shouldColorize(out)))
			if err := cfg.RequireOpenAI(); err != nil {
				fmt.Fprintf(out, "Warning: %v\n", err)
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func effectiveSettings(cfg *config.Config) [][]string {
	apiKey := "not set"
	if cfg.OpenAI.APIKey != "" {
		apiKey = "set"
	}
	notify := "disabled"
	if cfg.Notifications.NtfyTopic != "" {
		notify = cfg.Notifications.NtfyTopic
	}
	return [][]string{
		{"Default language", cfg.Script.DefaultLanguage},
		{"Script length (words)", strconv.Itoa(cfg.Script.TargetWords)},
		{"Caption mode", cfg.Captions.Mode},
		{"Words per caption", fmt.Sprintf("%d simple / %d centered", cfg.Captions.MaxWordsSimple, cfg.Captions.MaxWordsCentered)},
		{"Playback speed", strconv.FormatFloat(cfg.Assembly.Speed, 'g', -1, 64)},
		{"Background volume", strconv.FormatFloat(cfg.Assembly.BackgroundVolume, 'g', -1, 64)},
		{"Chat model", cfg.OpenAI.ChatModel},
		{"Speech model", cfg.OpenAI.TTSModel},
		{"Transcription model", cfg.OpenAI.TranscriptionModel},
		{"API key", apiKey},
		{"Work directory", cfg.Paths.WorkDir},
		{"Output directory", cfg.Paths.OutputDir},
		{"Video pool", cfg.Paths.VideoPoolDir},
		{"Notifications", notify},
	}
}
