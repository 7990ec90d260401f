package captions

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"explainer/internal/fileutil"
)

const timeSeparator = " --> "

// FormatTimestamp renders seconds as HH:MM:SS,mmm. Negative values clamp to zero.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	totalMillis := int64(math.Round(seconds * 1000))
	hours := totalMillis / 3_600_000
	minutes := (totalMillis / 60_000) % 60
	secs := (totalMillis / 1000) % 60
	millis := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// ParseTimestamp parses HH:MM:SS,mmm into seconds. A period is accepted in
// place of the comma.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	clock, fraction, ok := strings.Cut(strings.Replace(value, ".", ",", 1), ",")
	if !ok {
		return 0, fmt.Errorf("timestamp %q: missing milliseconds", value)
	}
	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("timestamp %q: expected HH:MM:SS,mmm", value)
	}
	var fields [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("timestamp %q: invalid field %q", value, part)
		}
		fields[i] = n
	}
	if fields[1] > 59 || fields[2] > 59 {
		return 0, fmt.Errorf("timestamp %q: minutes and seconds must be below 60", value)
	}
	if len(fraction) == 0 || len(fraction) > 3 {
		return 0, fmt.Errorf("timestamp %q: invalid milliseconds %q", value, fraction)
	}
	millis, err := strconv.Atoi(fraction + strings.Repeat("0", 3-len(fraction)))
	if err != nil || millis < 0 {
		return 0, fmt.Errorf("timestamp %q: invalid milliseconds %q", value, fraction)
	}
	total := int64(fields[0])*3_600_000 + int64(fields[1])*60_000 + int64(fields[2])*1000 + int64(millis)
	return float64(total) / 1000, nil
}

// String serializes the track as SRT: index, time range, text, blank line.
func (t Track) String() string {
	var b strings.Builder
	for _, c := range t.Chunks {
		b.WriteString(strconv.Itoa(c.Index))
		b.WriteByte('\n')
		b.WriteString(FormatTimestamp(c.Start))
		b.WriteString(timeSeparator)
		b.WriteString(FormatTimestamp(c.End))
		b.WriteByte('\n')
		b.WriteString(c.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// Write persists the track to path atomically.
func (t Track) Write(path string) error {
	if err := fileutil.WriteFileAtomic(path, []byte(t.String()), 0o644); err != nil {
		return fmt.Errorf("write captions: %w", err)
	}
	return nil
}

// Read loads and parses an SRT file.
func Read(path string) (Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Track{}, fmt.Errorf("read captions: %w", err)
	}
	track, err := Parse(string(data))
	if err != nil {
		return Track{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return track, nil
}

// Parse reads SRT text. Blocks are separated by blank lines; multi-line
// caption text is joined with newlines. A UTF-8 BOM and CRLF line endings
// are tolerated.
func Parse(text string) (Track, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var (
		track Track
		block []string
		line  int
		start int
	)
	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		chunk, err := parseBlock(block)
		if err != nil {
			return fmt.Errorf("block at line %d: %w", start, err)
		}
		track.Chunks = append(track.Chunks, chunk)
		block = block[:0]
		return nil
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line++
		current := strings.TrimRight(scanner.Text(), " \t")
		if strings.TrimSpace(current) == "" {
			if err := flush(); err != nil {
				return Track{}, err
			}
			continue
		}
		if len(block) == 0 {
			start = line
		}
		block = append(block, current)
	}
	if err := scanner.Err(); err != nil {
		return Track{}, err
	}
	if err := flush(); err != nil {
		return Track{}, err
	}
	return track, nil
}

func parseBlock(lines []string) (Chunk, error) {
	if len(lines) < 2 {
		return Chunk{}, fmt.Errorf("expected index and time lines, got %d line(s)", len(lines))
	}
	index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return Chunk{}, fmt.Errorf("invalid index %q", lines[0])
	}
	startText, endText, ok := strings.Cut(lines[1], "-->")
	if !ok {
		return Chunk{}, fmt.Errorf("invalid time line %q", lines[1])
	}
	start, err := ParseTimestamp(startText)
	if err != nil {
		return Chunk{}, err
	}
	end, err := ParseTimestamp(endText)
	if err != nil {
		return Chunk{}, err
	}
	return Chunk{
		Index: index,
		Start: start,
		End:   end,
		Text:  strings.Join(lines[2:], "\n"),
	}, nil
}
