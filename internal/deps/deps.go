package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an executable a pipeline stage shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is one row of the doctor report: a tool, directory, credential or
// pool check and whether it passed.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Failed reports a required check that did not pass.
func (s Status) Failed() bool { return !s.Available && !s.Optional }

// MediaTools lists the executables used by assembly. FFprobe only sizes the
// subtitle canvas to the background clip, so a render still succeeds without it.
func MediaTools(ffmpegCommand, ffprobeCommand string) []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpegCommand, Description: "Renders the final video"},
		{Name: "FFprobe", Command: ffprobeCommand, Description: "Reads background clip resolution", Optional: true},
	}
}

// CheckBinaries resolves every requirement on PATH. Available tools report
// their resolved location in Detail.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		command := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     command,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		switch resolved, err := exec.LookPath(command); {
		case command == "":
			status.Detail = "command not configured"
		case err != nil:
			status.Detail = fmt.Sprintf("binary %q not found", command)
		default:
			status.Available = true
			status.Detail = resolved
		}
		results = append(results, status)
	}
	return results
}

// Tally counts failed required checks and failed optional ones.
func Tally(statuses []Status) (failed, warnings int) {
	for _, status := range statuses {
		switch {
		case status.Available:
		case status.Optional:
			warnings++
		default:
			failed++
		}
	}
	return failed, warnings
}
