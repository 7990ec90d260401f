// Package transcription turns narration audio into a draft caption track.
package transcription

import (
	"context"
	"log/slog"

	"explainer/internal/captions"
	"explainer/internal/language"
	"explainer/internal/logging"
	"explainer/internal/narration"
	"explainer/internal/services"
)

const stageName = "transcription"

// Segment is one time-stamped unit of transcription output.
type Segment = captions.Segment

// Transcriber returns segment-level timestamps for an audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) ([]Segment, error)
}

// Result carries the raw segments alongside the chunked draft.
type Result struct {
	Segments []Segment
	Draft    captions.Track
}

// Segmenter transcribes narration and re-chunks it into captions.
type Segmenter struct {
	transcriber Transcriber
	maxWords    int
	logger      *slog.Logger
}

// NewSegmenter constructs a Segmenter that emits chunks of at most maxWords words.
func NewSegmenter(transcriber Transcriber, maxWords int, logger *slog.Logger) *Segmenter {
	return &Segmenter{
		transcriber: transcriber,
		maxWords:    maxWords,
		logger:      logging.NewComponentLogger(logger, stageName),
	}
}

// Segment transcribes audio and returns the draft caption track.
func (s *Segmenter) Segment(ctx context.Context, audio narration.Audio, lang language.Code) (captions.Track, error) {
	result, err := s.Transcribe(ctx, audio, lang)
	if err != nil {
		return captions.Track{}, err
	}
	return result.Draft, nil
}

// Transcribe is Segment plus the raw segments, which the pipeline persists
// for offline re-chunking.
func (s *Segmenter) Transcribe(ctx context.Context, audio narration.Audio, lang language.Code) (Result, error) {
	if s.transcriber == nil {
		return Result{}, services.Wrap(services.ErrTranscription, stageName, "transcribe", "no transcriber configured", nil)
	}
	logger := logging.WithContext(ctx, s.logger)

	segments, err := s.transcriber.Transcribe(ctx, audio.Path, string(lang))
	if err != nil {
		return Result{}, services.Wrap(services.ErrTranscription, stageName, "transcribe", "speech transcription failed", err)
	}
	if len(segments) == 0 {
		return Result{}, services.Wrap(services.ErrTranscription, stageName, "transcribe", "transcription returned zero segments", nil)
	}

	draft := captions.BuildTrack(segments, s.maxWords)
	if draft.Empty() {
		return Result{}, services.Wrap(services.ErrTranscription, stageName, "chunk", "transcription segments contain no words", nil)
	}
	logger.Info("draft captions built",
		logging.Int("segments", len(segments)),
		logging.Int("chunks", draft.Len()),
		logging.Int("max_words", s.maxWords),
		logging.Float64("duration_seconds", draft.Duration()),
	)
	return Result{Segments: segments, Draft: draft}, nil
}
