package captions

import (
	"errors"
	"fmt"
)

// timeTolerance absorbs millisecond rounding between adjacent chunks.
const timeTolerance = 0.0015

// Validate reports structural problems: an empty track, non-contiguous
// indices, non-positive durations, and chunks that start before the
// previous one ends.
func Validate(track Track) error {
	if track.Empty() {
		return errors.New("caption track is empty")
	}
	var problems []error
	for i, c := range track.Chunks {
		if want := i + 1; c.Index != want {
			problems = append(problems, fmt.Errorf("chunk %d: index %d, want %d", i+1, c.Index, want))
		}
		if c.End <= c.Start {
			problems = append(problems, fmt.Errorf("chunk %d: end %s not after start %s", c.Index, FormatTimestamp(c.End), FormatTimestamp(c.Start)))
		}
		if i > 0 && c.Start+timeTolerance < track.Chunks[i-1].End {
			problems = append(problems, fmt.Errorf("chunk %d: starts at %s before previous end %s", c.Index, FormatTimestamp(c.Start), FormatTimestamp(track.Chunks[i-1].End)))
		}
	}
	return errors.Join(problems...)
}

// StructureDrift lists differences in chunk count, index, or time codes
// between a draft track and its corrected replacement. Time codes are
// compared at the millisecond precision SRT carries. An empty result means
// only caption text changed.
func StructureDrift(draft, corrected Track) []string {
	var drift []string
	if draft.Len() != corrected.Len() {
		drift = append(drift, fmt.Sprintf("chunk count %d, draft has %d", corrected.Len(), draft.Len()))
	}
	n := min(draft.Len(), corrected.Len())
	for i := 0; i < n; i++ {
		d, c := draft.Chunks[i], corrected.Chunks[i]
		if d.Index != c.Index {
			drift = append(drift, fmt.Sprintf("position %d: index %d, draft has %d", i+1, c.Index, d.Index))
		}
		if FormatTimestamp(d.Start) != FormatTimestamp(c.Start) || FormatTimestamp(d.End) != FormatTimestamp(c.End) {
			drift = append(drift, fmt.Sprintf("chunk %d: time %s --> %s, draft has %s --> %s",
				d.Index, FormatTimestamp(c.Start), FormatTimestamp(c.End), FormatTimestamp(d.Start), FormatTimestamp(d.End)))
		}
	}
	return drift
}
