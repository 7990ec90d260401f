package script

import (
	"context"
	"errors"
	"strings"
	"testing"

	"explainer/internal/language"
	"explainer/internal/services"
)

type stubGenerator struct {
	response string
	err      error
	system   string
	user     string
	calls    int
}

func (s *stubGenerator) Complete(_ context.Context, system, user string) (string, error) {
	s.calls++
	s.system = system
	s.user = user
	return s.response, s.err
}

func TestSynthesizeFiltersAndBuildsPrompt(t *testing.T) {
	gen := &stubGenerator{response: "**La Revolución** (año mil setecientos ochenta y nueve) cambió todo… ¿Por qué? #historia 🎉"}
	s := NewSynthesizer(gen, 120, nil)

	got, err := s.Synthesize(context.Background(), "The French Revolution began in 1789.", language.Spanish)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	want := "La Revolución (año mil setecientos ochenta y nueve) cambió todo ¿Por qué? historia"
	if got.Text != want {
		t.Fatalf("Text = %q, want %q", got.Text, want)
	}
	if got.Language != language.Spanish || got.Custom {
		t.Fatalf("unexpected script metadata %+v", got)
	}
	if !strings.Contains(gen.system, "en español") {
		t.Fatalf("system prompt not in Spanish: %q", gen.system)
	}
	for _, want := range []string{"unas 120 palabras", "Nunca uses cifras", "mil setecientos ochenta y nueve", "The French Revolution began in 1789."} {
		if !strings.Contains(gen.user, want) {
			t.Fatalf("user prompt missing %q:\n%s", want, gen.user)
		}
	}
}

func TestPromptsAreLocalized(t *testing.T) {
	tests := []struct {
		lang language.Code
		want []string
	}{
		{language.English, []string{"about 90 words", "Never use numeral characters", "seventeen eighty-nine"}},
		{language.French, []string{"environ 90 mots", "N'utilise jamais de chiffres", "mille sept cent quatre-vingt-neuf"}},
		{language.Portuguese, []string{"cerca de 90 palavras", "Nunca use algarismos", "mil setecentos e oitenta e nove"}},
	}
	for _, tt := range tests {
		system, user := buildPrompts(tt.lang.Profile(), "Volcanoes", 90)
		if system == "" || !strings.HasSuffix(user, "Volcanoes") {
			t.Fatalf("%s: unexpected prompts %q / %q", tt.lang, system, user)
		}
		for _, want := range tt.want {
			if !strings.Contains(user, want) {
				t.Fatalf("%s: user prompt missing %q:\n%s", tt.lang, want, user)
			}
		}
	}
}

func TestSynthesizeFailures(t *testing.T) {
	tests := []struct {
		name   string
		gen    *stubGenerator
		source string
	}{
		{"capability error", &stubGenerator{err: errors.New("503")}, "topic"},
		{"empty content", &stubGenerator{response: "   "}, "topic"},
		{"only symbols", &stubGenerator{response: "🎉 ### ***"}, "topic"},
		{"empty source", &stubGenerator{response: "unused"}, "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSynthesizer(tt.gen, 0, nil).Synthesize(context.Background(), tt.source, language.English)
			if !errors.Is(err, services.ErrGeneration) {
				t.Fatalf("expected generation failure, got %v", err)
			}
			if services.FailureKind(err) != "GenerationFailure" {
				t.Fatalf("unexpected kind %q", services.FailureKind(err))
			}
		})
	}
}

func TestFilterCharacters(t *testing.T) {
	tests := []struct {
		lang  language.Code
		input string
		want  string
	}{
		{language.English, "Hello, world! (really)", "Hello, world! (really)"},
		{language.English, "# Title\n- item *bold* — dash", "Title\n item bold  dash"},
		{language.English, "café", "caf"},
		{language.French, "Le café de l'été", "Le café de l'été"},
		{language.English, "Don't panic, it's fine.", "Don't panic, it's fine."},
		{language.Spanish, "It’s \"raro\"", "It’s raro"},
		{language.Portuguese, "d'água", "d'água"},
		{language.Portuguese, "ação e coração", "ação e coração"},
		{language.Spanish, "¡Hola! ¿Qué tal? \"citas\" <tags>", "¡Hola! ¿Qué tal? citas tags"},
	}
	for _, tt := range tests {
		if got := FilterCharacters(tt.input, tt.lang); got != tt.want {
			t.Errorf("FilterCharacters(%q, %s) = %q, want %q", tt.input, tt.lang, got, tt.want)
		}
	}
}

func TestFilterCharactersIdempotent(t *testing.T) {
	inputs := []string{
		"Plain text.",
		"**Markdown** _with_ [links](http://x.y) and émojis 🚀!",
		"  leading and trailing  \n",
		"Ça va? Très bien: «oui» — naturellement.",
	}
	for _, lang := range []language.Code{language.English, language.Spanish, language.French, language.Portuguese} {
		for _, input := range inputs {
			once := FilterCharacters(input, lang)
			if twice := FilterCharacters(once, lang); twice != once {
				t.Fatalf("not idempotent for %s: %q -> %q", lang, once, twice)
			}
		}
	}
}

func TestFromCustomIsVerbatim(t *testing.T) {
	text := "Custom **script** with 1789 and émojis 🎉"
	s := FromCustom(text, language.English)
	if s.Text != text || !s.Custom {
		t.Fatalf("FromCustom altered input: %+v", s)
	}
	if s.WordCount() != 7 {
		t.Fatalf("WordCount = %d", s.WordCount())
	}
}
