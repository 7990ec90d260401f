package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"explainer/internal/config"
	"explainer/internal/language"
	"explainer/internal/services"
)

// Inputs are the caller-supplied options for one run. Empty fields take
// their configured defaults.
type Inputs struct {
	Language            string
	VideoPath           string
	ScriptText          string
	SourceText          string
	BackgroundAudioPath string
	Speed               float64
	Mode                string
	OutputPath          string
}

// Context is the resolved, read-only description of a run.
type Context struct {
	runID               string
	language            language.Code
	videoPath           string
	scriptText          string
	sourceText          string
	backgroundAudioPath string
	speed               float64
	centered            bool
	maxWords            int
	runDir              string
	outputDir           string
	outputPath          string
}

// NewContext validates inputs against cfg and freezes them for a run.
func NewContext(cfg *config.Config, runID string, in Inputs) (Context, error) {
	if cfg == nil {
		return Context{}, services.Wrap(services.ErrConfiguration, "pipeline", "context", "configuration required", nil)
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return Context{}, invalid("run id required", nil)
	}

	langInput := strings.TrimSpace(in.Language)
	if langInput == "" {
		langInput = cfg.Script.DefaultLanguage
	}
	lang, err := language.Parse(langInput)
	if err != nil {
		return Context{}, invalid("language", err)
	}

	scriptText := in.ScriptText
	if strings.TrimSpace(scriptText) == "" {
		scriptText = ""
	}
	sourceText := strings.TrimSpace(in.SourceText)
	if scriptText == "" && sourceText == "" {
		return Context{}, invalid("either voice-over text or study text is required", nil)
	}

	speed := in.Speed
	if speed == 0 {
		speed = cfg.Assembly.Speed
	}
	if err := config.ValidateSpeed(speed); err != nil {
		return Context{}, invalid("speed", err)
	}

	mode := strings.ToLower(strings.TrimSpace(in.Mode))
	if mode == "" {
		mode = cfg.Captions.Mode
	}
	if mode != config.CaptionModeSimple && mode != config.CaptionModeCentered {
		return Context{}, invalid(fmt.Sprintf("caption mode %q must be %s or %s", mode, config.CaptionModeSimple, config.CaptionModeCentered), nil)
	}

	bgAudio := strings.TrimSpace(in.BackgroundAudioPath)
	if bgAudio != "" {
		info, err := os.Stat(bgAudio)
		if err != nil {
			return Context{}, invalid("background audio not readable", err)
		}
		if info.IsDir() {
			return Context{}, invalid("background audio path is a directory", nil)
		}
	}

	outputPath := strings.TrimSpace(in.OutputPath)
	if outputPath != "" {
		if outputPath, err = filepath.Abs(outputPath); err != nil {
			return Context{}, invalid("output path", err)
		}
	}

	return Context{
		runID:               runID,
		language:            lang,
		videoPath:           strings.TrimSpace(in.VideoPath),
		scriptText:          scriptText,
		sourceText:          sourceText,
		backgroundAudioPath: bgAudio,
		speed:               speed,
		centered:            mode == config.CaptionModeCentered,
		maxWords:            cfg.MaxWordsPerChunk(mode),
		runDir:              filepath.Join(cfg.Paths.WorkDir, runID),
		outputDir:           cfg.Paths.OutputDir,
		outputPath:          outputPath,
	}, nil
}

func invalid(message string, err error) error {
	return services.Wrap(services.ErrValidation, "pipeline", "context", message, err)
}

func (c Context) RunID() string               { return c.runID }
func (c Context) Language() language.Code     { return c.language }
func (c Context) VideoPath() string           { return c.videoPath }
func (c Context) ScriptText() string          { return c.scriptText }
func (c Context) SourceText() string          { return c.sourceText }
func (c Context) BackgroundAudioPath() string { return c.backgroundAudioPath }
func (c Context) Speed() float64              { return c.speed }
func (c Context) Centered() bool              { return c.centered }
func (c Context) MaxWords() int               { return c.maxWords }
func (c Context) RunDir() string              { return c.runDir }
func (c Context) OutputDir() string           { return c.outputDir }

// CustomScript reports whether the caller supplied the voice-over verbatim.
func (c Context) CustomScript() bool { return c.scriptText != "" }

// Mode returns the caption mode name.
func (c Context) Mode() string {
	if c.centered {
		return config.CaptionModeCentered
	}
	return config.CaptionModeSimple
}

// OutputPath returns the explicit output path, or "" when the pipeline
// should derive one from the script.
func (c Context) OutputPath() string { return c.outputPath }
