package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile creates path holding size placeholder bytes. Assembly only checks
// that narration, captions and clips exist and are non-empty, so the bytes are
// never decoded. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()
	if size <= 0 {
		size = 1
	}
	WriteText(t, path, strings.Repeat("x", int(size)))
}

// WriteText writes content to path, creating parent directories.
func WriteText(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteClips seeds a video pool directory with placeholder clips and returns
// their full paths in the order given.
func WriteClips(t testing.TB, poolDir string, names ...string) []string {
	t.Helper()
	if err := os.MkdirAll(poolDir, 0o755); err != nil {
		t.Fatalf("mkdir pool %s: %v", poolDir, err)
	}
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(poolDir, name)
		WriteFile(t, path, 16)
		paths = append(paths, path)
	}
	return paths
}
