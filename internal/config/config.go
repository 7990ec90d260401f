package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir      string `toml:"work_dir"`
	OutputDir    string `toml:"output_dir"`
	LogDir       string `toml:"log_dir"`
	VideoPoolDir string `toml:"video_pool_dir"`
	HistoryPath  string `toml:"history_path"`
}

// OpenAI contains connection settings for the OpenAI-compatible capability
// provider used for script generation, speech, transcription, and correction.
type OpenAI struct {
	APIKey             string `toml:"api_key"`
	BaseURL            string `toml:"base_url"`
	ChatModel          string `toml:"chat_model"`
	TTSModel           string `toml:"tts_model"`
	TranscriptionModel string `toml:"transcription_model"`
	// TimeoutSeconds bounds each request. Zero disables the timeout.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// RetryAttempts is the total number of attempts for transient failures.
	RetryAttempts int `toml:"retry_attempts"`
}

// Script contains voice-over script generation settings.
type Script struct {
	DefaultLanguage string  `toml:"default_language"`
	TargetWords     int     `toml:"target_words"`
	Temperature     float64 `toml:"temperature"`
}

// Captions contains caption chunking settings.
type Captions struct {
	// Mode is "simple" (bottom-centred) or "centered" (full-frame centred, upper-cased).
	Mode             string `toml:"mode"`
	MaxWordsSimple   int    `toml:"max_words_simple"`
	MaxWordsCentered int    `toml:"max_words_centered"`
}

// Reconcile contains caption correction settings.
type Reconcile struct {
	EnforceStructure bool    `toml:"enforce_structure"`
	Temperature      float64 `toml:"temperature"`
}

// Assembly contains video compositing settings.
type Assembly struct {
	FontName         string  `toml:"font_name"`
	FontSize         int     `toml:"font_size"`
	PrimaryColour    string  `toml:"primary_colour"`
	OutlineColour    string  `toml:"outline_colour"`
	Outline          int     `toml:"outline"`
	BackgroundVolume float64 `toml:"background_volume"`
	Speed            float64 `toml:"speed"`
	TargetWidth      int     `toml:"target_width"`
	TargetHeight     int     `toml:"target_height"`
	DefaultWidth     int     `toml:"default_width"`
	DefaultHeight    int     `toml:"default_height"`
	VideoCodec       string  `toml:"video_codec"`
	AudioCodec       string  `toml:"audio_codec"`
	Preset           string  `toml:"preset"`
}

// Notifications contains ntfy delivery settings. An empty topic disables
// notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for explainer.
//
// Configuration sections by subsystem:
//   - Paths: work, output, log, and background video pool directories
//   - OpenAI: capability provider connection settings
//   - Script: voice-over generation defaults
//   - Captions: chunk sizes and caption mode
//   - Reconcile: caption correction behaviour
//   - Assembly: caption styling, audio mix, speed, and encoder settings
//   - Notifications: ntfy run notices
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	OpenAI        OpenAI        `toml:"openai"`
	Script        Script        `toml:"script"`
	Captions      Captions      `toml:"captions"`
	Reconcile     Reconcile     `toml:"reconcile"`
	Assembly      Assembly      `toml:"assembly"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("explainer.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a pipeline run writes into.
// The video pool is left alone: an absent pool is reported at selection time.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if dir := filepath.Dir(c.Paths.HistoryPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for rendering.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// MaxWordsPerChunk returns the caption window size for the configured mode.
func (c *Config) MaxWordsPerChunk(mode string) int {
	if strings.EqualFold(strings.TrimSpace(mode), CaptionModeCentered) {
		return c.Captions.MaxWordsCentered
	}
	return c.Captions.MaxWordsSimple
}

const sampleAPIKeyPlaceholder = "your_openai_api_key_here"

// RequireOpenAI reports whether the capability provider can be reached with
// the current settings. Commands that never call it (captions, runs) skip this.
func (c *Config) RequireOpenAI() error {
	if key := strings.TrimSpace(c.OpenAI.APIKey); key == "" || key == sampleAPIKeyPlaceholder {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("openai.api_key is required. Set OPENAI_API_KEY env var or edit %s (create with 'explainer config init')", defaultPath)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
