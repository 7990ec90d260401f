package config

// Caption modes.
const (
	CaptionModeSimple   = "simple"
	CaptionModeCentered = "centered"
)

const (
	defaultConfigPath         = "~/.config/explainer/config.toml"
	defaultWorkDir            = "~/.local/share/explainer/work"
	defaultOutputDir          = "~/Videos/explainer"
	defaultLogDir             = "~/.local/share/explainer/logs"
	defaultVideoPoolDir       = "~/.local/share/explainer/videos"
	defaultHistoryPath        = "~/.local/share/explainer/history.db"
	defaultOpenAIBaseURL      = "https://api.openai.com/v1"
	defaultChatModel          = "gpt-4o-mini"
	defaultTTSModel           = "gpt-4o-mini-tts"
	defaultTranscriptionModel = "whisper-1"
	defaultRetryAttempts      = 1
	defaultLanguage           = "en"
	defaultTargetWords        = 150
	defaultScriptTemperature  = 0.7
	defaultReconcileTemp      = 0.2
	defaultMaxWordsSimple     = 7
	defaultMaxWordsCentered   = 4
	defaultFontName           = "Arial"
	defaultFontSize           = 18
	defaultPrimaryColour      = "&H00FFFFFF"
	defaultOutlineColour      = "&H00000000"
	defaultOutline            = 2
	defaultBackgroundVolume   = 0.15
	defaultSpeed              = 1.0
	defaultWidth              = 1080
	defaultHeight             = 1920
	defaultVideoCodec         = "libx264"
	defaultAudioCodec         = "aac"
	defaultPreset             = "veryfast"
	defaultNtfyTimeout        = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:      defaultWorkDir,
			OutputDir:    defaultOutputDir,
			LogDir:       defaultLogDir,
			VideoPoolDir: defaultVideoPoolDir,
			HistoryPath:  defaultHistoryPath,
		},
		OpenAI: OpenAI{
			BaseURL:            defaultOpenAIBaseURL,
			ChatModel:          defaultChatModel,
			TTSModel:           defaultTTSModel,
			TranscriptionModel: defaultTranscriptionModel,
			RetryAttempts:      defaultRetryAttempts,
		},
		Script: Script{
			DefaultLanguage: defaultLanguage,
			TargetWords:     defaultTargetWords,
			Temperature:     defaultScriptTemperature,
		},
		Captions: Captions{
			Mode:             CaptionModeSimple,
			MaxWordsSimple:   defaultMaxWordsSimple,
			MaxWordsCentered: defaultMaxWordsCentered,
		},
		Reconcile: Reconcile{
			Temperature: defaultReconcileTemp,
		},
		Assembly: Assembly{
			FontName:         defaultFontName,
			FontSize:         defaultFontSize,
			PrimaryColour:    defaultPrimaryColour,
			OutlineColour:    defaultOutlineColour,
			Outline:          defaultOutline,
			BackgroundVolume: defaultBackgroundVolume,
			Speed:            defaultSpeed,
			DefaultWidth:     defaultWidth,
			DefaultHeight:    defaultHeight,
			VideoCodec:       defaultVideoCodec,
			AudioCodec:       defaultAudioCodec,
			Preset:           defaultPreset,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
