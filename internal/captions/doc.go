// Package captions turns transcription segments into short timed caption
// chunks and reads and writes them as SRT.
//
// Each segment is split into fixed-size word windows. A window's display time
// is the segment duration scaled by its share of the segment's words, laid
// out back to back from the segment start, so longer windows stay on screen
// longer. Chunk indices are 1-based and contiguous across the whole track.
package captions
