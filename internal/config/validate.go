package config

import (
	"errors"
	"fmt"
	"net/url"

	langpkg "explainer/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScript(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validateAssembly(); err != nil {
		return err
	}
	if err := c.validateOpenAI(); err != nil {
		return err
	}
	return c.validateNotifications()
}

func (c *Config) validateScript() error {
	if !langpkg.Supported(c.Script.DefaultLanguage) {
		return fmt.Errorf("script.default_language %q is not supported (choose one of %v)", c.Script.DefaultLanguage, langpkg.Codes())
	}
	if c.Script.TargetWords <= 0 {
		return errors.New("script.target_words must be positive")
	}
	if c.Script.Temperature < 0 || c.Script.Temperature > 2 {
		return errors.New("script.temperature must be between 0 and 2")
	}
	return nil
}

func (c *Config) validateCaptions() error {
	switch c.Captions.Mode {
	case CaptionModeSimple, CaptionModeCentered:
	default:
		return fmt.Errorf("captions.mode must be %q or %q", CaptionModeSimple, CaptionModeCentered)
	}
	return ensurePositiveMap(map[string]int{
		"captions.max_words_simple":   c.Captions.MaxWordsSimple,
		"captions.max_words_centered": c.Captions.MaxWordsCentered,
	})
}

func (c *Config) validateAssembly() error {
	if err := ensurePositiveMap(map[string]int{
		"assembly.font_size":      c.Assembly.FontSize,
		"assembly.default_width":  c.Assembly.DefaultWidth,
		"assembly.default_height": c.Assembly.DefaultHeight,
	}); err != nil {
		return err
	}
	if c.Assembly.Outline < 0 {
		return errors.New("assembly.outline must be >= 0")
	}
	if c.Assembly.BackgroundVolume < 0 || c.Assembly.BackgroundVolume > 1 {
		return errors.New("assembly.background_volume must be between 0 and 1")
	}
	if err := ValidateSpeed(c.Assembly.Speed); err != nil {
		return fmt.Errorf("assembly.speed: %w", err)
	}
	if (c.Assembly.TargetWidth > 0) != (c.Assembly.TargetHeight > 0) {
		return errors.New("assembly.target_width and assembly.target_height must be set together")
	}
	return nil
}

func (c *Config) validateOpenAI() error {
	if c.OpenAI.TimeoutSeconds < 0 {
		return errors.New("openai.timeout_seconds must be >= 0")
	}
	if c.OpenAI.RetryAttempts <= 0 {
		return errors.New("openai.retry_attempts must be positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	parsed, err := url.Parse(topic)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic must be an http(s) URL, got %q", topic)
	}
	return nil
}

// ValidateSpeed checks a playback speed factor.
func ValidateSpeed(speed float64) error {
	if speed < MinSpeed || speed > MaxSpeed {
		return fmt.Errorf("speed factor %.2f outside [%.2f, %.2f]", speed, MinSpeed, MaxSpeed)
	}
	return nil
}

// Speed factor bounds accepted by the assembler.
const (
	MinSpeed = 0.25
	MaxSpeed = 4.0
)

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
