package transcription

import (
	"context"
	"errors"
	"testing"

	"explainer/internal/language"
	"explainer/internal/narration"
	"explainer/internal/services"
)

type stubTranscriber struct {
	segments []Segment
	err      error
	gotPath  string
	gotLang  string
}

func (s *stubTranscriber) Transcribe(_ context.Context, path, lang string) ([]Segment, error) {
	s.gotPath = path
	s.gotLang = lang
	return s.segments, s.err
}

func TestSegmentBuildsDraftTrack(t *testing.T) {
	tr := &stubTranscriber{segments: []Segment{
		{Start: 0, End: 3, Text: "the quick brown fox jumps over"},
	}}
	draft, err := NewSegmenter(tr, 4, nil).Segment(context.Background(), narration.Audio{Path: "/work/narration.mp3"}, language.English)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if tr.gotPath != "/work/narration.mp3" || tr.gotLang != "en" {
		t.Fatalf("unexpected transcriber input %q %q", tr.gotPath, tr.gotLang)
	}
	if draft.Len() != 2 || draft.Chunks[0].Text != "the quick brown fox" || draft.Chunks[1].Start != 2 {
		t.Fatalf("unexpected draft %+v", draft.Chunks)
	}
}

func TestSegmentZeroSegmentsFails(t *testing.T) {
	_, err := NewSegmenter(&stubTranscriber{}, 4, nil).Segment(context.Background(), narration.Audio{Path: "a.mp3"}, language.English)
	if !errors.Is(err, services.ErrTranscription) {
		t.Fatalf("expected transcription failure, got %v", err)
	}
	if services.FailureKind(err) != "TranscriptionFailure" {
		t.Fatalf("unexpected kind %q", services.FailureKind(err))
	}
}

func TestSegmentCapabilityErrorAndBlankSegments(t *testing.T) {
	for _, tr := range []*stubTranscriber{
		{err: errors.New("timeout")},
		{segments: []Segment{{Start: 0, End: 1, Text: "   "}}},
	} {
		if _, err := NewSegmenter(tr, 4, nil).Segment(context.Background(), narration.Audio{Path: "a.mp3"}, language.English); !errors.Is(err, services.ErrTranscription) {
			t.Fatalf("expected transcription failure, got %v", err)
		}
	}
}
