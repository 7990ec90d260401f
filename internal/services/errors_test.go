package services_test

import (
	"errors"
	"strings"
	"testing"

	"explainer/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrRender, "assembly", "ffmpeg", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrRender) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"assembly", "ffmpeg", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrNoVideo, "assembly", "", "", nil)
	if got := err.Error(); got != "no video available: assembly" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestFailureKindMapping(t *testing.T) {
	cases := []struct {
		marker error
		want   string
	}{
		{services.ErrGeneration, "GenerationFailure"},
		{services.ErrSynthesis, "SynthesisFailure"},
		{services.ErrTranscription, "TranscriptionFailure"},
		{services.ErrReconciliation, "ReconciliationFailure"},
		{services.ErrNoVideo, "NoVideoAvailable"},
		{services.ErrRender, "RenderFailure"},
	}
	for _, tc := range cases {
		err := services.Wrap(tc.marker, "stage", "op", "msg", errors.New("cause"))
		if got := services.FailureKind(err); got != tc.want {
			t.Fatalf("FailureKind(%v) = %q, want %q", err, got, tc.want)
		}
	}
	if got := services.FailureKind(errors.New("plain")); got != "" {
		t.Fatalf("expected empty kind for unclassified error, got %q", got)
	}
	if got := services.Details(nil); got.Kind != "" || got.Message != "" {
		t.Fatalf("expected empty details for nil, got %+v", got)
	}
}
