package pipeline

import (
	"errors"
	"path/filepath"
	"testing"

	"explainer/internal/config"
	"explainer/internal/language"
	"explainer/internal/services"
	"explainer/internal/testsupport"
)

func TestNewContextDefaults(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	rc, err := NewContext(cfg, "abc", Inputs{SourceText: "Mitosis"})
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	if rc.Language() != language.English || rc.Mode() != config.CaptionModeSimple || rc.Centered() {
		t.Fatalf("unexpected defaults: lang=%s mode=%s", rc.Language(), rc.Mode())
	}
	if rc.MaxWords() != cfg.Captions.MaxWordsSimple || rc.Speed() != 1 {
		t.Fatalf("unexpected max words %d speed %v", rc.MaxWords(), rc.Speed())
	}
	if rc.RunDir() != filepath.Join(cfg.Paths.WorkDir, "abc") {
		t.Fatalf("unexpected run dir %s", rc.RunDir())
	}
	if rc.CustomScript() || rc.OutputPath() != "" {
		t.Fatalf("unexpected custom=%v output=%q", rc.CustomScript(), rc.OutputPath())
	}
}

func TestNewContextCenteredUsesNarrowWindow(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	rc, err := NewContext(cfg, "abc", Inputs{ScriptText: "Bonjour", Language: "French", Mode: "Centered"})
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	if rc.Language() != language.French || !rc.Centered() || rc.MaxWords() != cfg.Captions.MaxWordsCentered {
		t.Fatalf("unexpected context lang=%s centered=%v words=%d", rc.Language(), rc.Centered(), rc.MaxWords())
	}
	if !rc.CustomScript() {
		t.Fatal("expected custom script")
	}
}

func TestNewContextRejectsInvalidInputs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	tests := []struct {
		name  string
		runID string
		in    Inputs
	}{
		{"missing run id", "", Inputs{SourceText: "x"}},
		{"no text", "r", Inputs{}},
		{"unsupported language", "r", Inputs{SourceText: "x", Language: "klingon"}},
		{"speed too high", "r", Inputs{SourceText: "x", Speed: 9}},
		{"bad mode", "r", Inputs{SourceText: "x", Mode: "karaoke"}},
		{"missing background audio", "r", Inputs{SourceText: "x", BackgroundAudioPath: filepath.Join(t.TempDir(), "none.mp3")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewContext(cfg, tt.runID, tt.in)
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestNewContextKeepsCustomTextVerbatim(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	text := "  Don't trim me.\n\n  Second paragraph!  \n"
	rc, err := NewContext(cfg, "abc", Inputs{ScriptText: text})
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	if rc.ScriptText() != text {
		t.Fatalf("script text altered: %q", rc.ScriptText())
	}

	rc, err = NewContext(cfg, "abc", Inputs{ScriptText: " \n\t", SourceText: "Photosynthesis"})
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	if rc.CustomScript() {
		t.Fatal("blank voice-over text should fall back to generation")
	}
}
