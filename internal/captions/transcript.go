package captions

import (
	"encoding/json"
	"fmt"
	"os"

	"explainer/internal/fileutil"
)

// Transcript is the persisted transcription of a narration file.
type Transcript struct {
	Language string    `json:"language,omitempty"`
	Segments []Segment `json:"segments"`
}

// WriteTranscript saves segments as indented JSON.
func WriteTranscript(path string, transcript Transcript) error {
	data, err := json.MarshalIndent(transcript, "", "  ")
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// ReadTranscript loads a transcript saved by WriteTranscript. A bare JSON
// array of segments is accepted too.
func ReadTranscript(path string) (Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Transcript{}, fmt.Errorf("read transcript: %w", err)
	}
	var transcript Transcript
	if err := json.Unmarshal(data, &transcript); err != nil {
		var segments []Segment
		if arrErr := json.Unmarshal(data, &segments); arrErr != nil {
			return Transcript{}, fmt.Errorf("decode transcript %s: %w", path, err)
		}
		transcript.Segments = segments
	}
	return transcript, nil
}
