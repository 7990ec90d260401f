package captions

import (
	"strings"
)

// ChunkSegments splits each segment into windows of at most maxWords words
// and assigns each window a proportional share of the segment's time span.
// Indices start at firstIndex and increase by one across all segments.
// Segments with no words are skipped. The last chunk of a segment ends at
// the accumulated cursor; it is not snapped to the segment end.
func ChunkSegments(segments []Segment, maxWords, firstIndex int) []Chunk {
	if maxWords <= 0 {
		maxWords = 1
	}
	if firstIndex <= 0 {
		firstIndex = 1
	}
	var chunks []Chunk
	index := firstIndex
	for _, seg := range segments {
		words := seg.Words()
		total := len(words)
		if total == 0 {
			continue
		}
		duration := seg.Duration()
		cursor := seg.Start
		for offset := 0; offset < total; offset += maxWords {
			end := min(offset+maxWords, total)
			window := words[offset:end]
			chunkDuration := duration * float64(len(window)) / float64(total)
			chunks = append(chunks, Chunk{
				Index: index,
				Start: cursor,
				End:   cursor + chunkDuration,
				Text:  strings.Join(window, " "),
			})
			cursor += chunkDuration
			index++
		}
	}
	return chunks
}

// BuildTrack chunks segments into a track indexed from 1.
func BuildTrack(segments []Segment, maxWords int) Track {
	return Track{Chunks: ChunkSegments(segments, maxWords, 1)}
}
