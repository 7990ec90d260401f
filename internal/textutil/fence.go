package textutil

import "strings"

// StripCodeFence removes a surrounding Markdown code fence (with or without a
// language tag) and stray delimiter lines such as "---" at either end.
func StripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		body := trimmed[3:]
		// Drop the info string ("srt", "text", ...) on the opening line.
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			if !strings.Contains(strings.TrimSpace(body[:nl]), " ") {
				body = body[nl+1:]
			}
		} else {
			body = ""
		}
		if idx := strings.LastIndex(body, "```"); idx >= 0 {
			body = body[:idx]
		}
		trimmed = strings.TrimSpace(body)
	}
	lines := strings.Split(trimmed, "\n")
	for len(lines) > 0 && isDelimiterLine(lines[0]) {
		lines = lines[1:]
	}
	for len(lines) > 0 && isDelimiterLine(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func isDelimiterLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	switch line {
	case "```", "---", "'''", `"""`:
		return true
	}
	return false
}

// Snippet collapses whitespace and truncates content for log and error output.
func Snippet(content string, limit int) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	if limit <= 0 {
		limit = 160
	}
	runes := []rune(clean)
	if len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return clean
}
