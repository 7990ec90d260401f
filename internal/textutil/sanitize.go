package textutil

import (
	"strings"
	"unicode"
)

// SanitizeToken converts a string to a lowercase filesystem-safe token.
// ASCII letters and digits are kept, hyphens and underscores pass through,
// everything else becomes an underscore. Returns "unknown" for empty input.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}

// Slug joins the first maxWords words of text into a hyphenated token
// suitable for file names.
func Slug(text string, maxWords int) string {
	words := strings.Fields(text)
	if maxWords > 0 && len(words) > maxWords {
		words = words[:maxWords]
	}
	parts := make([]string, 0, len(words))
	for _, word := range words {
		token := SanitizeToken(word)
		if token == "unknown" {
			continue
		}
		parts = append(parts, strings.Trim(strings.ReplaceAll(token, "_", "-"), "-"))
	}
	slug := strings.Join(parts, "-")
	if slug == "" {
		return "untitled"
	}
	return slug
}
