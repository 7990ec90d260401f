package captions

import (
	"strings"
)

// Segment is one unit of transcription output, in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Words splits the segment text on whitespace.
func (s Segment) Words() []string {
	return strings.Fields(s.Text)
}

// Duration returns End - Start.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Chunk is one displayable caption unit.
type Chunk struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// Track is an ordered caption sequence.
type Track struct {
	Chunks []Chunk
}

// Len returns the number of chunks.
func (t Track) Len() int {
	return len(t.Chunks)
}

// Empty reports whether the track has no chunks.
func (t Track) Empty() bool {
	return len(t.Chunks) == 0
}

// Duration returns the end time of the last chunk.
func (t Track) Duration() float64 {
	if len(t.Chunks) == 0 {
		return 0
	}
	return t.Chunks[len(t.Chunks)-1].End
}

// Text joins every chunk's text with single spaces.
func (t Track) Text() string {
	parts := make([]string, 0, len(t.Chunks))
	for _, c := range t.Chunks {
		if text := strings.Join(strings.Fields(c.Text), " "); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// MapText returns a copy of the track with fn applied to each chunk's text.
// Indices and time codes are preserved.
func (t Track) MapText(fn func(string) string) Track {
	out := Track{Chunks: make([]Chunk, len(t.Chunks))}
	for i, c := range t.Chunks {
		c.Text = fn(c.Text)
		out.Chunks[i] = c
	}
	return out
}
