package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CheckFFmpegFilters reports whether ffmpeg was built with every named filter.
// The caption burn step needs "subtitles" (libass) and speed changes need
// "atempo".
func CheckFFmpegFilters(ctx context.Context, ffmpegCommand string, filters ...string) Status {
	cmd := strings.TrimSpace(ffmpegCommand)
	if cmd == "" {
		cmd = "ffmpeg"
	}
	status := Status{
		Name:        "FFmpeg filters",
		Command:     cmd,
		Description: "Filters used to burn captions and change speed: " + strings.Join(filters, ", "),
	}
	if _, err := exec.LookPath(cmd); err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", cmd)
		return status
	}
	output, err := exec.CommandContext(ctx, cmd, "-hide_banner", "-filters").Output() //nolint:gosec
	if err != nil {
		status.Detail = fmt.Sprintf("list filters: %v", err)
		return status
	}
	available := ParseFilterList(output)
	var missing []string
	for _, name := range filters {
		if _, ok := available[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		status.Detail = "missing filters: " + strings.Join(missing, ", ")
		return status
	}
	status.Available = true
	return status
}

// ParseFilterList extracts filter names from `ffmpeg -filters` output, whose
// rows look like " T.. atempo  A->A  Adjust audio tempo.".
func ParseFilterList(output []byte) map[string]struct{} {
	names := make(map[string]struct{})
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 || !strings.Contains(fields[2], "->") {
			continue
		}
		names[fields[1]] = struct{}{}
	}
	return names
}
