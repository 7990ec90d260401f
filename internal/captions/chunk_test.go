package captions

import (
	"math"
	"strings"
	"testing"
)

const eps = 1e-9

func TestChunkSegmentsScenario(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 3, Text: "the quick brown fox jumps over"},
		{Start: 3, End: 4.5, Text: "the lazy dog"},
	}
	chunks := ChunkSegments(segments, 4, 1)

	want := []Chunk{
		{Index: 1, Start: 0, End: 2, Text: "the quick brown fox"},
		{Index: 2, Start: 2, End: 3, Text: "jumps over"},
		{Index: 3, Start: 3, End: 4.5, Text: "the lazy dog"},
	}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d: %+v", len(chunks), len(want), chunks)
	}
	for i := range want {
		got := chunks[i]
		if got.Index != want[i].Index || got.Text != want[i].Text ||
			math.Abs(got.Start-want[i].Start) > eps || math.Abs(got.End-want[i].End) > eps {
			t.Fatalf("chunk %d = %+v, want %+v", i, got, want[i])
		}
	}
	track := Track{Chunks: chunks}
	if !strings.HasPrefix(track.String(), "1\n00:00:00,000 --> 00:00:02,000\nthe quick brown fox\n\n2\n00:00:02,000 --> 00:00:03,000\njumps over\n\n") {
		t.Fatalf("unexpected SRT:\n%s", track.String())
	}
}

func TestChunkSegmentsProperties(t *testing.T) {
	segments := []Segment{
		{Start: 0.4, End: 2.9, Text: "one"},
		{Start: 3.1, End: 9.73, Text: "alpha beta gamma delta epsilon zeta eta theta iota kappa lambda"},
		{Start: 9.73, End: 10, Text: "   "},
		{Start: 10.2, End: 17.05, Text: "a b c d e f g h i j k l m n"},
	}
	for _, window := range []int{1, 2, 3, 4, 7, 20} {
		chunks := ChunkSegments(segments, window, 1)
		cursor := 0
		for _, seg := range segments {
			words := seg.Words()
			n := len(words)
			if n == 0 {
				continue
			}
			expected := (n + window - 1) / window
			group := chunks[cursor : cursor+expected]
			cursor += expected

			if math.Abs(group[0].Start-seg.Start) > eps {
				t.Fatalf("window %d: first chunk starts at %v, segment at %v", window, group[0].Start, seg.Start)
			}
			if math.Abs(group[len(group)-1].End-seg.End) > 1e-6 {
				t.Fatalf("window %d: last chunk ends at %v, segment at %v", window, group[len(group)-1].End, seg.End)
			}
			var rejoined []string
			for i, c := range group {
				if i > 0 && c.Start != group[i-1].End {
					t.Fatalf("window %d: gap or overlap between %v and %v", window, group[i-1].End, c.Start)
				}
				count := len(strings.Fields(c.Text))
				if count > window {
					t.Fatalf("window %d: chunk has %d words", window, count)
				}
				share := (c.End - c.Start) / seg.Duration()
				if math.Abs(share-float64(count)/float64(n)) > 1e-9 {
					t.Fatalf("window %d: share %v, want %d/%d", window, share, count, n)
				}
				rejoined = append(rejoined, c.Text)
			}
			if strings.Join(rejoined, " ") != strings.Join(words, " ") {
				t.Fatalf("window %d: words reordered or lost", window)
			}
		}
		if cursor != len(chunks) {
			t.Fatalf("window %d: %d chunks unaccounted", window, len(chunks)-cursor)
		}
		for i, c := range chunks {
			if c.Index != i+1 {
				t.Fatalf("window %d: index %d at position %d", window, c.Index, i)
			}
		}
	}
}

func TestChunkSegmentsFirstIndexAndDefaults(t *testing.T) {
	chunks := ChunkSegments([]Segment{{Start: 0, End: 1, Text: "a b"}}, 0, 5)
	if len(chunks) != 2 || chunks[0].Index != 5 || chunks[1].Index != 6 {
		t.Fatalf("unexpected chunks %+v", chunks)
	}
	if got := ChunkSegments(nil, 4, 1); len(got) != 0 {
		t.Fatalf("expected no chunks, got %+v", got)
	}
}

func TestTrackMapTextPreservesStructure(t *testing.T) {
	draft := BuildTrack([]Segment{{Start: 0, End: 2, Text: "hello there world"}}, 2)
	upper := draft.MapText(strings.ToUpper)
	if upper.Chunks[0].Text != "HELLO THERE" || draft.Chunks[0].Text != "hello there" {
		t.Fatalf("MapText mutated or failed: %+v / %+v", draft, upper)
	}
	if drift := StructureDrift(draft, upper); len(drift) != 0 {
		t.Fatalf("unexpected drift %v", drift)
	}
	if draft.Text() != "hello there world" {
		t.Fatalf("Text() = %q", draft.Text())
	}
}
