package assembly

import (
	"strconv"
	"strings"
)

// Progress is one block of ffmpeg `-progress` output.
type Progress struct {
	OutTimeSeconds float64
	Speed          string
	Done           bool
}

// progressParser accumulates key=value lines until a progress= terminator.
type progressParser struct {
	current Progress
}

// Feed consumes a line and returns a completed block when the line closes one.
func (p *progressParser) Feed(line string) (Progress, bool) {
	key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return Progress{}, false
	}
	value = strings.TrimSpace(value)
	switch key {
	case "out_time_us", "out_time_ms":
		// Both keys carry microseconds.
		if us, err := strconv.ParseInt(value, 10, 64); err == nil && us >= 0 {
			p.current.OutTimeSeconds = float64(us) / 1e6
		}
	case "speed":
		p.current.Speed = value
	case "progress":
		block := p.current
		block.Done = value == "end"
		p.current = Progress{}
		return block, true
	}
	return Progress{}, false
}

// Percent scales the block against the expected output duration. Returns -1
// when the expected duration is unknown.
func (p Progress) Percent(expectedSeconds float64) float64 {
	if p.Done {
		return 100
	}
	if expectedSeconds <= 0 {
		return -1
	}
	pct := p.OutTimeSeconds / expectedSeconds * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}
