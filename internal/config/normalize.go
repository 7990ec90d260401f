package config

import (
	"fmt"
	"os"
	"strings"

	langpkg "explainer/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOpenAI()
	c.normalizeScript()
	c.normalizeCaptions()
	c.normalizeAssembly()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.VideoPoolDir) == "" {
		c.Paths.VideoPoolDir = defaultVideoPoolDir
	}
	if c.Paths.VideoPoolDir, err = expandPath(c.Paths.VideoPoolDir); err != nil {
		return fmt.Errorf("paths.video_pool_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryPath) == "" {
		c.Paths.HistoryPath = defaultHistoryPath
	}
	if c.Paths.HistoryPath, err = expandPath(c.Paths.HistoryPath); err != nil {
		return fmt.Errorf("paths.history_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeOpenAI() {
	if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok && strings.TrimSpace(value) != "" {
		c.OpenAI.APIKey = value
	}
	c.OpenAI.APIKey = strings.TrimSpace(c.OpenAI.APIKey)
	c.OpenAI.BaseURL = strings.TrimRight(strings.TrimSpace(c.OpenAI.BaseURL), "/")
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = defaultOpenAIBaseURL
	}
	c.OpenAI.ChatModel = strings.TrimSpace(c.OpenAI.ChatModel)
	if c.OpenAI.ChatModel == "" {
		c.OpenAI.ChatModel = defaultChatModel
	}
	c.OpenAI.TTSModel = strings.TrimSpace(c.OpenAI.TTSModel)
	if c.OpenAI.TTSModel == "" {
		c.OpenAI.TTSModel = defaultTTSModel
	}
	c.OpenAI.TranscriptionModel = strings.TrimSpace(c.OpenAI.TranscriptionModel)
	if c.OpenAI.TranscriptionModel == "" {
		c.OpenAI.TranscriptionModel = defaultTranscriptionModel
	}
	if c.OpenAI.RetryAttempts <= 0 {
		c.OpenAI.RetryAttempts = defaultRetryAttempts
	}
	if c.OpenAI.TimeoutSeconds < 0 {
		c.OpenAI.TimeoutSeconds = 0
	}
}

func (c *Config) normalizeScript() {
	lang := strings.TrimSpace(c.Script.DefaultLanguage)
	if lang == "" {
		lang = defaultLanguage
	}
	if code := langpkg.ToISO2(lang); code != "" {
		lang = code
	}
	c.Script.DefaultLanguage = lang
	if c.Script.TargetWords <= 0 {
		c.Script.TargetWords = defaultTargetWords
	}
}

func (c *Config) normalizeCaptions() {
	c.Captions.Mode = strings.ToLower(strings.TrimSpace(c.Captions.Mode))
	if c.Captions.Mode == "" {
		c.Captions.Mode = CaptionModeSimple
	}
	if c.Captions.MaxWordsSimple <= 0 {
		c.Captions.MaxWordsSimple = defaultMaxWordsSimple
	}
	if c.Captions.MaxWordsCentered <= 0 {
		c.Captions.MaxWordsCentered = defaultMaxWordsCentered
	}
}

func (c *Config) normalizeAssembly() {
	c.Assembly.FontName = strings.TrimSpace(c.Assembly.FontName)
	if c.Assembly.FontName == "" {
		c.Assembly.FontName = defaultFontName
	}
	if c.Assembly.FontSize <= 0 {
		c.Assembly.FontSize = defaultFontSize
	}
	c.Assembly.PrimaryColour = strings.TrimSpace(c.Assembly.PrimaryColour)
	if c.Assembly.PrimaryColour == "" {
		c.Assembly.PrimaryColour = defaultPrimaryColour
	}
	c.Assembly.OutlineColour = strings.TrimSpace(c.Assembly.OutlineColour)
	if c.Assembly.OutlineColour == "" {
		c.Assembly.OutlineColour = defaultOutlineColour
	}
	if c.Assembly.Speed == 0 {
		c.Assembly.Speed = defaultSpeed
	}
	if c.Assembly.DefaultWidth <= 0 {
		c.Assembly.DefaultWidth = defaultWidth
	}
	if c.Assembly.DefaultHeight <= 0 {
		c.Assembly.DefaultHeight = defaultHeight
	}
	c.Assembly.VideoCodec = strings.TrimSpace(c.Assembly.VideoCodec)
	if c.Assembly.VideoCodec == "" {
		c.Assembly.VideoCodec = defaultVideoCodec
	}
	c.Assembly.AudioCodec = strings.TrimSpace(c.Assembly.AudioCodec)
	if c.Assembly.AudioCodec == "" {
		c.Assembly.AudioCodec = defaultAudioCodec
	}
	c.Assembly.Preset = strings.TrimSpace(c.Assembly.Preset)
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
