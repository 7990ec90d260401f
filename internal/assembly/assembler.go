package assembly

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"explainer/internal/config"
	"explainer/internal/fileutil"
	"explainer/internal/logging"
	"explainer/internal/media/ffprobe"
	"explainer/internal/services"
)

const stageName = "assembly"

// Options holds the renderer settings resolved from configuration.
type Options struct {
	FFmpegBinary     string
	FFprobeBinary    string
	VideoPoolDir     string
	Style            Style
	BackgroundVolume float64
	TargetWidth      int
	TargetHeight     int
	DefaultWidth     int
	DefaultHeight    int
	VideoCodec       string
	AudioCodec       string
	Preset           string
}

// OptionsFromConfig maps the [assembly] and [paths] sections onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	a := cfg.Assembly
	return Options{
		FFmpegBinary:  cfg.FFmpegBinary(),
		FFprobeBinary: cfg.FFprobeBinary(),
		VideoPoolDir:  cfg.Paths.VideoPoolDir,
		Style: Style{
			FontName:      a.FontName,
			FontSize:      a.FontSize,
			PrimaryColour: a.PrimaryColour,
			OutlineColour: a.OutlineColour,
			Outline:       a.Outline,
			Alignment:     AlignBottomCenter,
		},
		BackgroundVolume: a.BackgroundVolume,
		TargetWidth:      a.TargetWidth,
		TargetHeight:     a.TargetHeight,
		DefaultWidth:     a.DefaultWidth,
		DefaultHeight:    a.DefaultHeight,
		VideoCodec:       a.VideoCodec,
		AudioCodec:       a.AudioCodec,
		Preset:           a.Preset,
	}
}

// Request describes one render.
type Request struct {
	// VideoPath is the explicit background clip; empty picks from the pool.
	VideoPath           string
	NarrationPath       string
	CaptionsPath        string
	BackgroundAudioPath string
	Speed               float64
	Centered            bool
	OutputPath          string
}

// Result reports a finished render.
type Result struct {
	OutputPath string
	VideoPath  string
	Width      int
	Height     int
	// Probed is false when the default resolution was used.
	Probed  bool
	Speed   float64
	Elapsed time.Duration
}

// Prober inspects a media file.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

type ffprobeProber struct {
	binary string
}

func (p ffprobeProber) Inspect(ctx context.Context, path string) (ffprobe.Result, error) {
	return ffprobe.Inspect(ctx, p.binary, path)
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithRunner injects the render engine runner.
func WithRunner(r Runner) Option {
	return func(a *Assembler) {
		if r != nil {
			a.runner = r
		}
	}
}

// WithProber injects the media prober.
func WithProber(p Prober) Option {
	return func(a *Assembler) {
		if p != nil {
			a.prober = p
		}
	}
}

// WithPicker overrides the random pool index chooser.
func WithPicker(pick func(n int) int) Option {
	return func(a *Assembler) {
		a.pick = pick
	}
}

// Assembler renders the final video.
type Assembler struct {
	opts   Options
	runner Runner
	prober Prober
	pick   func(n int) int
	logger *slog.Logger
}

// NewAssembler constructs an Assembler backed by ffmpeg and ffprobe.
func NewAssembler(opts Options, logger *slog.Logger, options ...Option) *Assembler {
	if strings.TrimSpace(opts.FFmpegBinary) == "" {
		opts.FFmpegBinary = "ffmpeg"
	}
	if opts.DefaultWidth <= 0 || opts.DefaultHeight <= 0 {
		opts.DefaultWidth, opts.DefaultHeight = 1080, 1920
	}
	a := &Assembler{
		opts:   opts,
		runner: commandRunner{},
		prober: ffprobeProber{binary: opts.FFprobeBinary},
		logger: logging.NewComponentLogger(logger, stageName),
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// Assemble composites the request inputs into req.OutputPath.
func (a *Assembler) Assemble(ctx context.Context, req Request) (Result, error) {
	started := time.Now()
	logger := logging.WithContext(ctx, a.logger)

	videoPath, err := SelectVideo(req.VideoPath, a.opts.VideoPoolDir, a.pick)
	if err != nil {
		return Result{}, err
	}
	if err := a.checkInputs(req); err != nil {
		return Result{}, err
	}
	speed := req.Speed
	if speed == 0 {
		speed = 1
	}
	if err := config.ValidateSpeed(speed); err != nil {
		return Result{}, services.Wrap(services.ErrValidation, stageName, "validate", "speed factor", err)
	}
	logger.Info("background video selected",
		logging.String("video", videoPath),
		logging.Bool("explicit", strings.TrimSpace(req.VideoPath) != ""),
	)

	width, height, videoSeconds, probed := a.probeVideo(ctx, logger, videoPath)
	expected := a.expectedSeconds(ctx, videoSeconds, req.NarrationPath, speed)

	style := a.opts.Style
	style.Alignment = AlignBottomCenter
	if req.Centered {
		style.Alignment = AlignMiddleCenter
	}
	graph := BuildFilterGraph(GraphInput{
		CaptionsPath:     req.CaptionsPath,
		Width:            width,
		Height:           height,
		TargetWidth:      a.opts.TargetWidth,
		TargetHeight:     a.opts.TargetHeight,
		Style:            style,
		Speed:            speed,
		BackgroundAudio:  strings.TrimSpace(req.BackgroundAudioPath) != "",
		BackgroundVolume: a.opts.BackgroundVolume,
	})
	args := BuildArgs(a.opts, videoPath, req, graph)

	if dir := filepath.Dir(req.OutputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Result{}, services.Wrap(services.ErrRender, stageName, "prepare", "create output directory", err)
		}
	}

	logger.Info("render started",
		logging.String("output", req.OutputPath),
		logging.Int("width", width),
		logging.Int("height", height),
		logging.Float64("speed", speed),
		logging.Bool("background_audio", strings.TrimSpace(req.BackgroundAudioPath) != ""),
	)
	logger.Debug("ffmpeg command", logging.String("args", strings.Join(args, " ")))

	sampler := logging.NewProgressSampler(10)
	parser := &progressParser{}
	onStdout := func(line string) {
		block, ok := parser.Feed(line)
		if !ok {
			return
		}
		pct := block.Percent(expected)
		if !sampler.ShouldLog(pct, "render") {
			return
		}
		attrs := []logging.Attr{logging.Float64("out_time_s", block.OutTimeSeconds)}
		if pct >= 0 {
			attrs = append(attrs, logging.Float64("percent", roundPercent(pct)))
		}
		if block.Speed != "" {
			attrs = append(attrs, logging.String("encode_speed", block.Speed))
		}
		logger.Info("render progress", logging.Args(attrs...)...)
	}

	if err := a.runner.Run(ctx, a.opts.FFmpegBinary, args, onStdout); err != nil {
		return Result{}, services.Wrap(services.ErrRender, stageName, "render", "ffmpeg failed", err)
	}

	result := Result{
		OutputPath: req.OutputPath,
		VideoPath:  videoPath,
		Width:      width,
		Height:     height,
		Probed:     probed,
		Speed:      speed,
		Elapsed:    time.Since(started),
	}
	attrs := []logging.Attr{
		logging.String("output", result.OutputPath),
		logging.Duration("elapsed", result.Elapsed),
	}
	if size, err := fileutil.FileSize(result.OutputPath); err == nil {
		attrs = append(attrs, logging.Int64("output_bytes", size))
	}
	logger.Info("render complete", logging.Args(attrs...)...)
	return result, nil
}

func (a *Assembler) checkInputs(req Request) error {
	if strings.TrimSpace(req.OutputPath) == "" {
		return services.Wrap(services.ErrRender, stageName, "validate", "output path required", nil)
	}
	type input struct {
		label string
		path  string
	}
	inputs := []input{
		{"narration", req.NarrationPath},
		{"captions", req.CaptionsPath},
	}
	if strings.TrimSpace(req.BackgroundAudioPath) != "" {
		inputs = append(inputs, input{"background audio", req.BackgroundAudioPath})
	}
	for _, in := range inputs {
		if strings.TrimSpace(in.path) == "" {
			return services.Wrap(services.ErrRender, stageName, "validate", in.label+" path required", nil)
		}
		if _, err := fileutil.FileSize(in.path); err != nil {
			return services.Wrap(services.ErrRender, stageName, "validate", fmt.Sprintf("%s input not readable", in.label), err)
		}
	}
	return nil
}

func (a *Assembler) probeVideo(ctx context.Context, logger *slog.Logger, path string) (int, int, float64, bool) {
	result, err := a.prober.Inspect(ctx, path)
	if err != nil {
		logging.WarnWithContext(logger, "video probe failed; using default resolution", "video_probe_fallback",
			logging.String("video", path),
			logging.Error(err),
			logging.Int("width", a.opts.DefaultWidth),
			logging.Int("height", a.opts.DefaultHeight),
			logging.String(logging.FieldErrorHint, "verify ffprobe is installed and the clip is readable"),
			logging.String(logging.FieldImpact, "captions are styled against the default frame size"),
		)
		return a.opts.DefaultWidth, a.opts.DefaultHeight, 0, false
	}
	width, height, ok := result.VideoDimensions()
	if !ok {
		logging.WarnWithContext(logger, "video has no usable stream; using default resolution", "video_probe_fallback",
			logging.String("video", path),
			logging.Int("width", a.opts.DefaultWidth),
			logging.Int("height", a.opts.DefaultHeight),
			logging.String(logging.FieldImpact, "captions are styled against the default frame size"),
		)
		return a.opts.DefaultWidth, a.opts.DefaultHeight, result.DurationSeconds(), false
	}
	logger.Debug("video probed",
		logging.Int("width", width),
		logging.Int("height", height),
		logging.Float64("duration_s", result.DurationSeconds()),
	)
	return width, height, result.DurationSeconds(), true
}

// expectedSeconds estimates the output length used to scale progress. The
// output runs as long as its longest mapped stream.
func (a *Assembler) expectedSeconds(ctx context.Context, videoSeconds float64, narrationPath string, speed float64) float64 {
	longest := videoSeconds
	if result, err := a.prober.Inspect(ctx, narrationPath); err == nil {
		if d := result.DurationSeconds(); d > longest {
			longest = d
		}
	}
	if longest <= 0 {
		return 0
	}
	return longest / speed
}

// BuildArgs renders the ffmpeg argument list for a prepared graph.
func BuildArgs(opts Options, videoPath string, req Request, graph Graph) []string {
	args := []string{"-hide_banner", "-nostdin", "-y",
		"-i", videoPath,
		"-i", req.NarrationPath,
	}
	if strings.TrimSpace(req.BackgroundAudioPath) != "" {
		args = append(args, "-i", req.BackgroundAudioPath)
	}
	args = append(args,
		"-filter_complex", graph.Filter,
		"-map", graph.VideoOut,
		"-map", graph.AudioOut,
		"-c:v", valueOr(opts.VideoCodec, "libx264"),
	)
	if preset := strings.TrimSpace(opts.Preset); preset != "" {
		args = append(args, "-preset", preset)
	}
	args = append(args,
		"-pix_fmt", "yuv420p",
		"-c:a", valueOr(opts.AudioCodec, "aac"),
		"-movflags", "+faststart",
		"-progress", "pipe:1",
		"-nostats",
		req.OutputPath,
	)
	return args
}

func valueOr(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func roundPercent(p float64) float64 {
	return float64(int(p*10)) / 10
}
