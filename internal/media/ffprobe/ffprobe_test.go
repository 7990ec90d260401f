package ffprobe

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const sampleJSON = `{
  "streams": [
    {"index": 0, "codec_name": "aac", "codec_type": "audio", "duration": "31.2", "channels": 2},
    {"index": 1, "codec_name": "h264", "codec_type": "video", "duration": "30.0", "width": 720, "height": 1280}
  ],
  "format": {"filename": "clip.mp4", "nb_streams": 2, "duration": "31.250000", "size": "1000", "format_name": "mov,mp4"}
}`

func TestResultHelpers(t *testing.T) {
	result, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("expected 1 video stream, got %d", result.VideoStreamCount())
	}
	if result.AudioStreamCount() != 1 {
		t.Fatalf("expected 1 audio stream, got %d", result.AudioStreamCount())
	}
	w, h, ok := result.VideoDimensions()
	if !ok || w != 720 || h != 1280 {
		t.Fatalf("unexpected dimensions %dx%d ok=%v", w, h, ok)
	}
	if result.DurationSeconds() != 31.25 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
}

func TestResultHelpersHandleMissingValues(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio", Duration: "12.5"},
			{CodecType: "video", Width: 0, Height: 0},
		},
		Format: Format{Duration: "N/A", Size: "-1"},
	}
	if _, _, ok := result.VideoDimensions(); ok {
		t.Fatal("expected no usable video dimensions")
	}
	if result.DurationSeconds() != 12.5 {
		t.Fatalf("expected stream duration fallback, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestInspectUsesBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}
	dir := t.TempDir()
	payload := filepath.Join(dir, "probe.json")
	if err := os.WriteFile(payload, []byte(sampleJSON), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	stub := filepath.Join(dir, "ffprobe")
	script := "#!/bin/sh\ncat " + payload + "\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	result, err := Inspect(context.Background(), stub, "clip.mp4")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if w, h, _ := result.VideoDimensions(); w != 720 || h != 1280 {
		t.Fatalf("unexpected dimensions %dx%d", w, h)
	}
}

func TestInspectReportsFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}
	dir := t.TempDir()
	stub := filepath.Join(dir, "ffprobe")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\necho 'no such file' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	if _, err := Inspect(context.Background(), stub, "missing.mp4"); err == nil {
		t.Fatal("expected inspect error")
	}
	if _, err := Inspect(context.Background(), stub, "  "); err == nil {
		t.Fatal("expected empty path error")
	}
}
