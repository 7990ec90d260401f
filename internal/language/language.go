package language

import (
	"fmt"
	"sort"
	"strings"

	xlanguage "golang.org/x/text/language"
)

// Code is an ISO 639-1 language code.
type Code string

// Supported narration languages.
const (
	English    Code = "en"
	Spanish    Code = "es"
	French     Code = "fr"
	Portuguese Code = "pt"
)

// Default is the narration language used when none is requested.
const Default = English

// Profile describes how a language is narrated and captioned.
type Profile struct {
	Code    Code
	ISO3    string
	Name    string
	Voice   string
	Tone    string
	Accents string
}

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	code3   string   // ISO 639-2 primary (3-letter)
	alt3    string   // ISO 639-2 alternate
	display string   // Human-readable name
	words   []string // Full word forms
	voice   string
	tone    string
	accents string
}

var languages = []entry{
	{
		code2: "en", code3: "eng", display: "English", words: []string{"english", "ingles", "inglés"},
		voice:   "alloy",
		tone:    "Speak as a warm, upbeat teacher explaining a topic to a curious student. Keep a steady, clear pace.",
		accents: "",
	},
	{
		code2: "es", code3: "spa", display: "Spanish", words: []string{"spanish", "espanol", "español"},
		voice:   "nova",
		tone:    "Habla como un profesor cercano y entusiasta que explica un tema a un estudiante curioso. Ritmo claro y constante.",
		accents: "áéíóúüñÁÉÍÓÚÜÑ¿¡",
	},
	{
		code2: "fr", code3: "fra", alt3: "fre", display: "French", words: []string{"french", "francais", "français"},
		voice:   "shimmer",
		tone:    "Parle comme un professeur chaleureux et enthousiaste qui explique un sujet à un élève curieux. Rythme clair et régulier.",
		accents: "àâäçéèêëîïôöùûüÿœæÀÂÄÇÉÈÊËÎÏÔÖÙÛÜŸŒÆ",
	},
	{
		code2: "pt", code3: "por", display: "Portuguese", words: []string{"portuguese", "portugues", "português"},
		voice:   "coral",
		tone:    "Fale como um professor acolhedor e animado explicando um tema a um aluno curioso. Ritmo claro e constante.",
		accents: "áâãàçéêíóôõúüÁÂÃÀÇÉÊÍÓÔÕÚÜ",
	},
}

// Index maps built at init time.
var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages)*3)
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	// Regional tags such as pt-BR or en_US resolve to their base language.
	if tag, err := xlanguage.Parse(strings.ReplaceAll(code, "_", "-")); err == nil {
		base, _ := tag.Base()
		if e, ok := byCode2[base.String()]; ok {
			return e
		}
	}
	return nil
}

func (e *entry) profile() Profile {
	return Profile{
		Code:    Code(e.code2),
		ISO3:    e.code3,
		Name:    e.display,
		Voice:   e.voice,
		Tone:    e.tone,
		Accents: e.accents,
	}
}

// Lookup returns the narration profile for any recognized code, ISO 639-2
// code, regional tag, or language name.
func Lookup(code string) (Profile, bool) {
	if e := lookup(code); e != nil {
		return e.profile(), true
	}
	return Profile{}, false
}

// Parse resolves user input to a supported Code.
func Parse(code string) (Code, error) {
	if strings.TrimSpace(code) == "" {
		return Default, nil
	}
	if e := lookup(code); e != nil {
		return Code(e.code2), nil
	}
	return "", fmt.Errorf("unsupported language %q (choose one of %s)", code, strings.Join(Codes(), ", "))
}

// Supported reports whether code names a narration language.
func Supported(code string) bool {
	return lookup(code) != nil
}

// Codes lists the supported ISO 639-1 codes in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(languages))
	for _, e := range languages {
		codes = append(codes, e.code2)
	}
	sort.Strings(codes)
	return codes
}

// ToISO2 converts any recognized language code or word to ISO 639-1 (2-letter).
// Returns empty string for unrecognized input.
func ToISO2(code string) string {
	if e := lookup(code); e != nil {
		return e.code2
	}
	return ""
}

// ToISO3 converts any recognized language code to ISO 639-2 (3-letter).
// Returns "und" for unrecognized input.
func ToISO3(code string) string {
	if e := lookup(code); e != nil {
		return e.code3
	}
	return "und"
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// Tag returns the BCP 47 tag for the language, used for case mapping.
func (c Code) Tag() xlanguage.Tag {
	tag, err := xlanguage.Parse(string(c))
	if err != nil {
		return xlanguage.Und
	}
	return tag
}

// Profile returns the narration profile for c, falling back to Default.
func (c Code) Profile() Profile {
	if p, ok := Lookup(string(c)); ok {
		return p
	}
	p, _ := Lookup(string(Default))
	return p
}

func (c Code) String() string {
	return string(c)
}
