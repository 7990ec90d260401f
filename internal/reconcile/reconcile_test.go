package reconcile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"explainer/internal/captions"
	"explainer/internal/language"
	"explainer/internal/script"
	"explainer/internal/services"
)

type stubCorrector struct {
	response string
	err      error
	system   string
	user     string
}

func (s *stubCorrector) Complete(_ context.Context, system, user string) (string, error) {
	s.system = system
	s.user = user
	return s.response, s.err
}

func draftTrack() captions.Track {
	return captions.BuildTrack([]captions.Segment{
		{Start: 0, End: 3, Text: "the quik brown fox jumps ovar"},
	}, 4)
}

const correctedSRT = "1\n00:00:00,000 --> 00:00:02,000\nthe quick brown fox\n\n2\n00:00:02,000 --> 00:00:03,000\njumps over\n\n"

func TestReconcileStripsFencesAndPreservesStructure(t *testing.T) {
	corrector := &stubCorrector{response: "```srt\n" + correctedSRT + "```"}
	draft := draftTrack()
	before := draft.String()

	s := script.FromCustom("The quick brown fox jumps over the lazy dog.", language.English)
	got, err := NewReconciler(corrector, Options{}, nil).Reconcile(context.Background(), draft, s)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(got.Drift) != 0 || got.ParseErr != nil {
		t.Fatalf("unexpected drift %v / %v", got.Drift, got.ParseErr)
	}
	if got.Track.Chunks[0].Text != "the quick brown fox" || got.Track.Chunks[1].Text != "jumps over" {
		t.Fatalf("unexpected corrected track %+v", got.Track.Chunks)
	}
	if draft.String() != before {
		t.Fatal("draft was mutated")
	}
	for _, want := range []string{"The quick brown fox jumps over the lazy dog.", "00:00:00,000 --> 00:00:02,000", "the quik brown fox"} {
		if !strings.Contains(corrector.user, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
	if strings.Contains(got.Text, "```") {
		t.Fatalf("fence not stripped: %q", got.Text)
	}
}

func TestReconcileCenteredUppercases(t *testing.T) {
	corrector := &stubCorrector{response: strings.Replace(correctedSRT, "jumps over", "saltó encima", 1)}
	got, err := NewReconciler(corrector, Options{Centered: true}, nil).Reconcile(context.Background(), draftTrack(), script.FromCustom("x", language.Spanish))
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if got.Track.Chunks[1].Text != "SALTÓ ENCIMA" || got.Track.Chunks[0].Text != "THE QUICK BROWN FOX" {
		t.Fatalf("expected upper-cased text, got %+v", got.Track.Chunks)
	}
	if len(got.Drift) != 0 {
		t.Fatalf("upper-casing should not change structure: %v", got.Drift)
	}
}

func TestReconcilePromptFollowsScriptLanguage(t *testing.T) {
	tests := []struct {
		lang       language.Code
		systemWant string
		userWant   string
	}{
		{language.English, "English subtitle files", "Keep every time code line exactly as it is"},
		{language.Spanish, "subtítulos en español", "Mantén cada línea de tiempos exactamente igual"},
		{language.French, "sous-titres en français", "Garde chaque ligne d'horodatage telle quelle"},
		{language.Portuguese, "legendas em português", "Mantenha cada linha de tempo exatamente como está"},
	}
	for _, tt := range tests {
		t.Run(string(tt.lang), func(t *testing.T) {
			corrector := &stubCorrector{response: correctedSRT}
			s := script.FromCustom("the quick brown fox jumps over", tt.lang)
			if _, err := NewReconciler(corrector, Options{}, nil).Reconcile(context.Background(), draftTrack(), s); err != nil {
				t.Fatalf("Reconcile: %v", err)
			}
			if !strings.Contains(corrector.system, tt.systemWant) {
				t.Fatalf("system prompt %q missing %q", corrector.system, tt.systemWant)
			}
			for _, want := range []string{tt.userWant, "the quick brown fox jumps over", "00:00:02,000 --> 00:00:03,000"} {
				if !strings.Contains(corrector.user, want) {
					t.Fatalf("user prompt missing %q:\n%s", want, corrector.user)
				}
			}
		})
	}
}

func TestReconcileFailures(t *testing.T) {
	tests := []struct {
		name      string
		corrector *stubCorrector
		draft     captions.Track
	}{
		{"capability error", &stubCorrector{err: errors.New("rate limited")}, draftTrack()},
		{"empty response", &stubCorrector{response: "```\n```"}, draftTrack()},
		{"empty draft", &stubCorrector{response: correctedSRT}, captions.Track{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReconciler(tt.corrector, Options{}, nil).Reconcile(context.Background(), tt.draft, script.FromCustom("x", language.English))
			if !errors.Is(err, services.ErrReconciliation) {
				t.Fatalf("expected reconciliation failure, got %v", err)
			}
		})
	}
}

func TestReconcileDriftAcceptedByDefault(t *testing.T) {
	shifted := strings.Replace(correctedSRT, "00:00:02,000 --> 00:00:03,000", "00:00:02,500 --> 00:00:03,000", 1)
	corrector := &stubCorrector{response: shifted}
	got, err := NewReconciler(corrector, Options{}, nil).Reconcile(context.Background(), draftTrack(), script.FromCustom("x", language.English))
	if err != nil {
		t.Fatalf("drift should be accepted when not enforced: %v", err)
	}
	if len(got.Drift) != 1 {
		t.Fatalf("expected one drift entry, got %v", got.Drift)
	}

	path := filepath.Join(t.TempDir(), "captions.srt")
	if err := got.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != shifted {
		t.Fatalf("response not written verbatim:\n%q\nwant\n%q", data, shifted)
	}
}

func TestReconcileUnparsableAcceptedByDefault(t *testing.T) {
	corrector := &stubCorrector{response: "Here are your subtitles, all fixed!"}
	got, err := NewReconciler(corrector, Options{}, nil).Reconcile(context.Background(), draftTrack(), script.FromCustom("x", language.English))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ParseErr == nil || len(got.Drift) != 1 {
		t.Fatalf("expected parse error recorded, got %+v", got)
	}
}

func TestReconcileEnforceStructureRejectsDrift(t *testing.T) {
	corrector := &stubCorrector{response: "1\n00:00:00,000 --> 00:00:03,000\nthe quick brown fox jumps over\n"}
	_, err := NewReconciler(corrector, Options{EnforceStructure: true}, nil).Reconcile(context.Background(), draftTrack(), script.FromCustom("x", language.English))
	if !errors.Is(err, services.ErrReconciliation) {
		t.Fatalf("expected reconciliation failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "changed structure") {
		t.Fatalf("unexpected error %v", err)
	}
}
