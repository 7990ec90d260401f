// Package narration renders a script to a durable audio file through a
// speech-synthesis capability.
package narration

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"explainer/internal/fileutil"
	"explainer/internal/logging"
	"explainer/internal/script"
	"explainer/internal/services"
)

const stageName = "narration"

// Audio references a persisted narration file.
type Audio struct {
	Path  string
	Bytes int64
}

// Speaker synthesizes speech for text with the given voice and tone instruction.
type Speaker interface {
	Speak(ctx context.Context, text, voice, instructions string) (io.ReadCloser, error)
}

// Renderer persists narration for a script.
type Renderer struct {
	speaker Speaker
	logger  *slog.Logger
}

// NewRenderer constructs a Renderer.
func NewRenderer(speaker Speaker, logger *slog.Logger) *Renderer {
	return &Renderer{speaker: speaker, logger: logging.NewComponentLogger(logger, stageName)}
}

// Render synthesizes s and writes the audio to destPath before returning.
// Downstream stages read the file, not an in-memory buffer.
func (r *Renderer) Render(ctx context.Context, s script.Script, destPath string) (Audio, error) {
	if strings.TrimSpace(s.Text) == "" {
		return Audio{}, services.Wrap(services.ErrSynthesis, stageName, "prepare", "script is empty", nil)
	}
	if r.speaker == nil {
		return Audio{}, services.Wrap(services.ErrSynthesis, stageName, "synthesize", "no speech synthesizer configured", nil)
	}
	profile := s.Language.Profile()
	logger := logging.WithContext(ctx, r.logger)
	logger.Debug("requesting narration",
		logging.String("voice", profile.Voice),
		logging.String("language", string(profile.Code)),
		logging.Int("words", s.WordCount()),
	)

	stream, err := r.speaker.Speak(ctx, s.Text, profile.Voice, profile.Tone)
	if err != nil {
		return Audio{}, services.Wrap(services.ErrSynthesis, stageName, "synthesize", "speech synthesis failed", err)
	}
	defer stream.Close()

	written, err := fileutil.WriteStreamAtomic(destPath, stream, 0o644)
	if err != nil {
		return Audio{}, services.Wrap(services.ErrSynthesis, stageName, "persist", "write narration audio", err)
	}
	if written == 0 {
		_ = os.Remove(destPath)
		return Audio{}, services.Wrap(services.ErrSynthesis, stageName, "persist", "speech synthesis returned no audio", nil)
	}

	audio := Audio{Path: destPath, Bytes: written}
	logger.Info("narration persisted",
		logging.String("path", audio.Path),
		logging.Int64("bytes", audio.Bytes),
	)
	return audio, nil
}
