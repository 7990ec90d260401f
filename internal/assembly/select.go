package assembly

import (
	"errors"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"explainer/internal/services"
)

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".mkv":  {},
	".webm": {},
	".m4v":  {},
	".avi":  {},
}

// PoolCandidates lists the video files directly inside dir in name order.
// A missing directory yields no candidates.
func PoolCandidates(dir string) ([]string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if _, ok := videoExtensions[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
			continue
		}
		out = append(out, filepath.Join(dir, entry.Name()))
	}
	return out, nil
}

// SelectVideo resolves the background clip. An explicit path wins; otherwise
// pick chooses uniformly from the pool. pick receives the candidate count and
// returns an index; nil uses math/rand/v2.
func SelectVideo(explicit, poolDir string, pick func(n int) int) (string, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		info, err := os.Stat(explicit)
		if err != nil {
			return "", services.Wrap(services.ErrNoVideo, stageName, "select video", "background video not readable", err)
		}
		if info.IsDir() {
			return "", services.Wrap(services.ErrNoVideo, stageName, "select video", "background video path is a directory", nil)
		}
		return explicit, nil
	}
	candidates, err := PoolCandidates(poolDir)
	if err != nil {
		return "", services.Wrap(services.ErrNoVideo, stageName, "select video", "read video pool", err)
	}
	if len(candidates) == 0 {
		return "", services.Wrap(services.ErrNoVideo, stageName, "select video", "video pool "+poolDir+" has no candidate files", nil)
	}
	if pick == nil {
		pick = rand.IntN
	}
	idx := pick(len(candidates))
	if idx < 0 || idx >= len(candidates) {
		idx = 0
	}
	return candidates[idx], nil
}
