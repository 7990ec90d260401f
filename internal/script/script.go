package script

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"explainer/internal/language"
	"explainer/internal/logging"
	"explainer/internal/services"
)

const stageName = "script"

// Script is the narration source of truth.
type Script struct {
	Text     string
	Language language.Code
	// Custom marks caller-supplied text that skipped generation and filtering.
	Custom bool
}

// WordCount returns the number of whitespace-delimited words.
func (s Script) WordCount() int {
	return len(strings.Fields(s.Text))
}

// FromCustom wraps caller-supplied text unchanged.
func FromCustom(text string, lang language.Code) Script {
	return Script{Text: text, Language: lang, Custom: true}
}

// Generator produces prose from a system and user prompt.
type Generator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Synthesizer turns study material into a narration script.
type Synthesizer struct {
	generator   Generator
	targetWords int
	logger      *slog.Logger
}

// NewSynthesizer constructs a Synthesizer. targetWords <= 0 uses 150.
func NewSynthesizer(generator Generator, targetWords int, logger *slog.Logger) *Synthesizer {
	if targetWords <= 0 {
		targetWords = 150
	}
	return &Synthesizer{
		generator:   generator,
		targetWords: targetWords,
		logger:      logging.NewComponentLogger(logger, stageName),
	}
}

// Synthesize generates a script for sourceText in lang and filters it.
func (s *Synthesizer) Synthesize(ctx context.Context, sourceText string, lang language.Code) (Script, error) {
	sourceText = strings.TrimSpace(sourceText)
	if sourceText == "" {
		return Script{}, services.Wrap(services.ErrGeneration, stageName, "prepare prompt", "source text is empty", nil)
	}
	if s.generator == nil {
		return Script{}, services.Wrap(services.ErrGeneration, stageName, "generate", "no text generator configured", nil)
	}
	profile := lang.Profile()
	systemPrompt, userPrompt := buildPrompts(profile, sourceText, s.targetWords)

	logger := logging.WithContext(ctx, s.logger)
	logger.Debug("requesting script",
		logging.String("language", string(profile.Code)),
		logging.Int("target_words", s.targetWords),
		logging.Int("source_chars", len(sourceText)),
	)

	raw, err := s.generator.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return Script{}, services.Wrap(services.ErrGeneration, stageName, "generate", "text generation failed", err)
	}
	if strings.TrimSpace(raw) == "" {
		return Script{}, services.Wrap(services.ErrGeneration, stageName, "generate", "text generation returned empty content", nil)
	}

	filtered := FilterCharacters(raw, profile.Code)
	if filtered == "" {
		return Script{}, services.Wrap(services.ErrGeneration, stageName, "filter", "script is empty after character filtering", nil)
	}
	result := Script{Text: filtered, Language: profile.Code}
	logger.Info("script generated",
		logging.Int("words", result.WordCount()),
		logging.Int("removed_chars", len([]rune(raw))-len([]rune(filtered))),
	)
	return result, nil
}

const basicPunctuation = ".,!?;:()"

// wordApostrophes keep contractions and elisions ("don't", "l'été") intact
// for speech in every language.
const wordApostrophes = "'’"

// FilterCharacters keeps ASCII word characters, apostrophes, whitespace, basic
// punctuation, and the language's accented letters; every other rune is
// dropped. The result is trimmed. Filtering is idempotent.
func FilterCharacters(text string, lang language.Code) string {
	accents := lang.Profile().Accents
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if allowedRune(r, accents) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func allowedRune(r rune, accents string) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		return true
	case unicode.IsSpace(r):
		return true
	case strings.ContainsRune(basicPunctuation, r), strings.ContainsRune(wordApostrophes, r):
		return true
	case accents != "" && strings.ContainsRune(accents, r):
		return true
	}
	return false
}
