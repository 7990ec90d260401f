package assembly

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"explainer/internal/media/ffprobe"
	"explainer/internal/services"
	"explainer/internal/testsupport"
)

type fakeRunner struct {
	calls  int
	binary string
	args   []string
	stdout []string
	err    error
	onRun  func(args []string)
}

func (f *fakeRunner) Run(_ context.Context, binary string, args []string, onStdout func(string)) error {
	f.calls++
	f.binary = binary
	f.args = append([]string(nil), args...)
	if f.onRun != nil {
		f.onRun(args)
	}
	for _, line := range f.stdout {
		onStdout(line)
	}
	return f.err
}

type fakeProber struct {
	calls   int
	results map[string]ffprobe.Result
	err     error
}

func (f *fakeProber) Inspect(_ context.Context, path string) (ffprobe.Result, error) {
	f.calls++
	if f.err != nil {
		return ffprobe.Result{}, f.err
	}
	result, ok := f.results[path]
	if !ok {
		return ffprobe.Result{}, errors.New("not probed")
	}
	return result, nil
}

type fixture struct {
	dir       string
	pool      string
	narration string
	captions  string
	music     string
	output    string
}

func newFixture(t *testing.T, clips ...string) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:       dir,
		pool:      filepath.Join(dir, "videos"),
		narration: filepath.Join(dir, "run", "narration.mp3"),
		captions:  filepath.Join(dir, "run", "captions.srt"),
		music:     filepath.Join(dir, "music.mp3"),
		output:    filepath.Join(dir, "out", "explainer.mp4"),
	}
	testsupport.WriteClips(t, f.pool, clips...)
	testsupport.WriteFile(t, f.narration, 16)
	testsupport.WriteFile(t, f.captions, 16)
	testsupport.WriteFile(t, f.music, 16)
	return f
}

func testOptions(pool string) Options {
	return Options{
		FFmpegBinary:     "ffmpeg",
		VideoPoolDir:     pool,
		Style:            testStyle(),
		BackgroundVolume: 0.15,
		DefaultWidth:     1080,
		DefaultHeight:    1920,
		VideoCodec:       "libx264",
		AudioCodec:       "aac",
		Preset:           "veryfast",
	}
}

func videoResult(width, height int, duration string) ffprobe.Result {
	return ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "video", Width: width, Height: height}},
		Format:  ffprobe.Format{Duration: duration},
	}
}

func argAfter(args []string, flag string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func TestAssembleEmptyPoolFailsBeforeRendering(t *testing.T) {
	f := newFixture(t)
	runner := &fakeRunner{}
	prober := &fakeProber{}
	asm := NewAssembler(testOptions(f.pool), nil, WithRunner(runner), WithProber(prober))

	_, err := asm.Assemble(context.Background(), Request{
		NarrationPath: f.narration,
		CaptionsPath:  f.captions,
		OutputPath:    f.output,
		Speed:         1,
	})
	if !errors.Is(err, services.ErrNoVideo) {
		t.Fatalf("expected ErrNoVideo, got %v", err)
	}
	if runner.calls != 0 || prober.calls != 0 {
		t.Fatalf("expected no probe or render calls, got probe=%d render=%d", prober.calls, runner.calls)
	}
	if _, statErr := os.Stat(f.output); !os.IsNotExist(statErr) {
		t.Fatalf("expected no output file, got %v", statErr)
	}
}

func TestAssembleMissingPoolDirFails(t *testing.T) {
	f := newFixture(t)
	asm := NewAssembler(testOptions(filepath.Join(f.dir, "absent")), nil, WithRunner(&fakeRunner{}), WithProber(&fakeProber{}))
	_, err := asm.Assemble(context.Background(), Request{
		NarrationPath: f.narration,
		CaptionsPath:  f.captions,
		OutputPath:    f.output,
	})
	if !errors.Is(err, services.ErrNoVideo) {
		t.Fatalf("expected ErrNoVideo, got %v", err)
	}
}

func TestSelectVideoFiltersPool(t *testing.T) {
	f := newFixture(t, "a.mp4", "b.MOV", "notes.txt", ".hidden.mp4")
	candidates, err := PoolCandidates(f.pool)
	if err != nil {
		t.Fatalf("PoolCandidates: %v", err)
	}
	want := []string{filepath.Join(f.pool, "a.mp4"), filepath.Join(f.pool, "b.MOV")}
	if !slices.Equal(candidates, want) {
		t.Fatalf("candidates = %v, want %v", candidates, want)
	}

	var seen int
	got, err := SelectVideo("", f.pool, func(n int) int { seen = n; return 1 })
	if err != nil {
		t.Fatalf("SelectVideo: %v", err)
	}
	if seen != 2 || got != want[1] {
		t.Fatalf("picked %q from %d candidates", got, seen)
	}

	explicit := filepath.Join(f.dir, "chosen.mkv")
	testsupport.WriteFile(t, explicit, 8)
	got, err = SelectVideo(explicit, f.pool, func(int) int { t.Fatal("pool must not be consulted"); return 0 })
	if err != nil || got != explicit {
		t.Fatalf("explicit selection = %q, %v", got, err)
	}

	if _, err := SelectVideo(filepath.Join(f.dir, "gone.mp4"), f.pool, nil); !errors.Is(err, services.ErrNoVideo) {
		t.Fatalf("expected ErrNoVideo for missing explicit path, got %v", err)
	}
}

func TestAssembleRendersWithProbedResolution(t *testing.T) {
	f := newFixture(t, "clip.mp4")
	clip := filepath.Join(f.pool, "clip.mp4")
	runner := &fakeRunner{stdout: []string{
		"out_time_us=10000000",
		"progress=continue",
		"out_time_us=20000000",
		"progress=end",
	}}
	prober := &fakeProber{results: map[string]ffprobe.Result{
		clip:        videoResult(720, 1280, "20.0"),
		f.narration: {Format: ffprobe.Format{Duration: "18.5"}},
	}}
	asm := NewAssembler(testOptions(f.pool), nil, WithRunner(runner), WithProber(prober))

	result, err := asm.Assemble(context.Background(), Request{
		NarrationPath: f.narration,
		CaptionsPath:  f.captions,
		OutputPath:    f.output,
		Speed:         1,
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if result.VideoPath != clip || !result.Probed || result.Width != 720 || result.Height != 1280 {
		t.Fatalf("unexpected result %+v", result)
	}
	if runner.calls != 1 || runner.binary != "ffmpeg" {
		t.Fatalf("expected one ffmpeg call, got %d (%s)", runner.calls, runner.binary)
	}
	if !strings.Contains(argAfter(runner.args, "-filter_complex"), "original_size=720x1280") {
		t.Fatalf("filter does not carry probed size: %v", runner.args)
	}
	if argAfter(runner.args, "-progress") != "pipe:1" {
		t.Fatalf("expected progress on stdout: %v", runner.args)
	}
	if runner.args[len(runner.args)-1] != f.output {
		t.Fatalf("output path must be last: %v", runner.args)
	}
	if _, err := os.Stat(filepath.Dir(f.output)); err != nil {
		t.Fatalf("expected output directory to exist: %v", err)
	}
}

func TestAssembleFallsBackToDefaultResolution(t *testing.T) {
	f := newFixture(t, "clip.mp4")
	runner := &fakeRunner{}
	asm := NewAssembler(testOptions(f.pool), nil,
		WithRunner(runner),
		WithProber(&fakeProber{err: errors.New("ffprobe missing")}),
	)
	result, err := asm.Assemble(context.Background(), Request{
		NarrationPath: f.narration,
		CaptionsPath:  f.captions,
		OutputPath:    f.output,
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if result.Probed || result.Width != 1080 || result.Height != 1920 {
		t.Fatalf("expected default resolution, got %+v", result)
	}
	if result.Speed != 1 {
		t.Fatalf("expected zero speed to default to 1, got %v", result.Speed)
	}
	if !strings.Contains(argAfter(runner.args, "-filter_complex"), "original_size=1080x1920") {
		t.Fatalf("filter does not carry default size: %v", runner.args)
	}
}

func TestAssembleMixesBackgroundAudioAtSpeed(t *testing.T) {
	f := newFixture(t, "clip.mp4")
	runner := &fakeRunner{}
	asm := NewAssembler(testOptions(f.pool), nil, WithRunner(runner), WithProber(&fakeProber{}))

	_, err := asm.Assemble(context.Background(), Request{
		NarrationPath:       f.narration,
		CaptionsPath:        f.captions,
		BackgroundAudioPath: f.music,
		OutputPath:          f.output,
		Speed:               1.25,
		Centered:            true,
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	inputs := []string{}
	for i := 0; i+1 < len(runner.args); i++ {
		if runner.args[i] == "-i" {
			inputs = append(inputs, runner.args[i+1])
		}
	}
	if len(inputs) != 3 || inputs[1] != f.narration || inputs[2] != f.music {
		t.Fatalf("unexpected inputs %v", inputs)
	}
	filter := argAfter(runner.args, "-filter_complex")
	for _, want := range []string{
		"setpts=PTS/1.25[v]",
		"[1:a]volume=1.0,atempo=1.25[n]",
		"[2:a]volume=0.15,atempo=1.25[b]",
		"amix=inputs=2:duration=shortest",
		"Alignment=5",
	} {
		if !strings.Contains(filter, want) {
			t.Fatalf("filter missing %q:\n%s", want, filter)
		}
	}
	maps := []string{}
	for i := 0; i+1 < len(runner.args); i++ {
		if runner.args[i] == "-map" {
			maps = append(maps, runner.args[i+1])
		}
	}
	if !slices.Equal(maps, []string{"[v]", "[a]"}) {
		t.Fatalf("unexpected maps %v", maps)
	}
}

func TestAssembleRejectsOutOfRangeSpeed(t *testing.T) {
	f := newFixture(t, "clip.mp4")
	runner := &fakeRunner{}
	asm := NewAssembler(testOptions(f.pool), nil, WithRunner(runner), WithProber(&fakeProber{}))
	_, err := asm.Assemble(context.Background(), Request{
		NarrationPath: f.narration,
		CaptionsPath:  f.captions,
		OutputPath:    f.output,
		Speed:         8,
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if runner.calls != 0 {
		t.Fatal("render must not start")
	}
}

func TestAssembleRenderFailureKeepsPartialOutput(t *testing.T) {
	f := newFixture(t, "clip.mp4")
	runner := &fakeRunner{
		err: errors.New("exit status 1: Invalid data found"),
		onRun: func(args []string) {
			_ = os.WriteFile(args[len(args)-1], []byte("partial"), 0o644)
		},
	}
	asm := NewAssembler(testOptions(f.pool), nil, WithRunner(runner), WithProber(&fakeProber{}))
	_, err := asm.Assemble(context.Background(), Request{
		NarrationPath: f.narration,
		CaptionsPath:  f.captions,
		OutputPath:    f.output,
	})
	if !errors.Is(err, services.ErrRender) {
		t.Fatalf("expected ErrRender, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("expected engine diagnostic in error, got %v", err)
	}
	if _, statErr := os.Stat(f.output); statErr != nil {
		t.Fatalf("partial output should remain: %v", statErr)
	}
}

func TestAssembleMissingNarrationFails(t *testing.T) {
	f := newFixture(t, "clip.mp4")
	runner := &fakeRunner{}
	asm := NewAssembler(testOptions(f.pool), nil, WithRunner(runner), WithProber(&fakeProber{}))
	_, err := asm.Assemble(context.Background(), Request{
		NarrationPath: filepath.Join(f.dir, "missing.mp3"),
		CaptionsPath:  f.captions,
		OutputPath:    f.output,
	})
	if !errors.Is(err, services.ErrRender) {
		t.Fatalf("expected ErrRender, got %v", err)
	}
	if runner.calls != 0 {
		t.Fatal("render must not start")
	}
}

func TestCommandRunnerStreamsStdoutAndReportsStderr(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}
	dir := t.TempDir()
	ok := filepath.Join(dir, "ok")
	if err := os.WriteFile(ok, []byte("#!/bin/sh\necho out_time_us=1000000\necho progress=end\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	var lines []string
	if err := (commandRunner{}).Run(context.Background(), ok, nil, func(line string) { lines = append(lines, line) }); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !slices.Equal(lines, []string{"out_time_us=1000000", "progress=end"}) {
		t.Fatalf("unexpected stdout lines %v", lines)
	}

	fail := filepath.Join(dir, "fail")
	if err := os.WriteFile(fail, []byte("#!/bin/sh\necho 'No such filter: subtitles' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	err := (commandRunner{}).Run(context.Background(), fail, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "No such filter: subtitles") {
		t.Fatalf("expected stderr tail in error, got %v", err)
	}
}
