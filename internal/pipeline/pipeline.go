package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"explainer/internal/assembly"
	"explainer/internal/captions"
	"explainer/internal/config"
	"explainer/internal/fileutil"
	"explainer/internal/history"
	"explainer/internal/logging"
	"explainer/internal/narration"
	"explainer/internal/notifications"
	"explainer/internal/reconcile"
	"explainer/internal/script"
	"explainer/internal/services"
	"explainer/internal/services/openai"
	"explainer/internal/stageexec"
	"explainer/internal/textutil"
	"explainer/internal/transcription"
)

// Stage names used in logs, errors, and the history ledger.
const (
	StageScript        = "script"
	StageNarration     = "narration"
	StageTranscription = "transcription"
	StageReconcile     = "reconcile"
	StageAssembly      = "assembly"
)

// Artifact file names inside the run directory.
const (
	ScriptFile        = "script.txt"
	NarrationFile     = "narration.mp3"
	TranscriptFile    = "transcript.json"
	DraftCaptionsFile = "captions.draft.srt"
	CaptionsFile      = "captions.srt"
	RunLogFile        = "run.log"
	lockFile          = ".lock"
)

// VideoAssembler renders the final video.
type VideoAssembler interface {
	Assemble(ctx context.Context, req assembly.Request) (assembly.Result, error)
}

// Recorder persists run outcomes.
type Recorder interface {
	Begin(ctx context.Context, run history.Run) error
	Finish(ctx context.Context, id string, outcome history.Outcome) error
}

// Capabilities are the external collaborators a run depends on.
type Capabilities struct {
	Generator   script.Generator
	Speaker     narration.Speaker
	Transcriber transcription.Transcriber
	Corrector   reconcile.Corrector
	Assembler   VideoAssembler
}

// Result lists the artifacts of a successful run.
type Result struct {
	RunID             string
	Script            script.Script
	NarrationPath     string
	TranscriptPath    string
	DraftCaptionsPath string
	CaptionsPath      string
	CaptionsSidecar   string
	VideoPath         string
	OutputPath        string
	Drift             []string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder attaches a run ledger.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// WithNotifier announces finished runs.
func WithNotifier(n notifications.Service) Option {
	return func(p *Pipeline) {
		p.notifier = n
	}
}

// WithRunLog toggles the per-run log file tee.
func WithRunLog(enabled bool) Option {
	return func(p *Pipeline) {
		p.runLog = enabled
	}
}

// Pipeline wires the stages together.
type Pipeline struct {
	cfg      *config.Config
	caps     Capabilities
	recorder Recorder
	notifier notifications.Service
	runLog   bool
	logger   *slog.Logger
}

// New constructs a Pipeline from explicit capabilities.
func New(cfg *config.Config, caps Capabilities, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:    cfg,
		caps:   caps,
		runLog: true,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewFromConfig wires the OpenAI-compatible provider and the ffmpeg assembler.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if err := cfg.RequireOpenAI(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "capability provider", err)
	}
	client := openai.NewClient(openai.Config{
		APIKey:             cfg.OpenAI.APIKey,
		BaseURL:            cfg.OpenAI.BaseURL,
		ChatModel:          cfg.OpenAI.ChatModel,
		TTSModel:           cfg.OpenAI.TTSModel,
		TranscriptionModel: cfg.OpenAI.TranscriptionModel,
		TimeoutSeconds:     cfg.OpenAI.TimeoutSeconds,
		RetryAttempts:      cfg.OpenAI.RetryAttempts,
	})
	caps := Capabilities{
		Generator:   client.Completer(cfg.Script.Temperature),
		Speaker:     client,
		Transcriber: client,
		Corrector:   client.Completer(cfg.Reconcile.Temperature),
		Assembler:   assembly.NewAssembler(assembly.OptionsFromConfig(cfg), logger),
	}
	return New(cfg, caps, logger, opts...), nil
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Run executes every stage for rc. The first failure aborts the run.
func (p *Pipeline) Run(ctx context.Context, rc Context) (result Result, err error) {
	ctx = services.WithRunID(ctx, rc.RunID())
	result.RunID = rc.RunID()

	if err := os.MkdirAll(rc.RunDir(), 0o755); err != nil {
		return result, services.Wrap(services.ErrConfiguration, "pipeline", "prepare", "create run directory", err)
	}
	lock := flock.New(filepath.Join(rc.RunDir(), lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return result, services.Wrap(services.ErrConfiguration, "pipeline", "prepare", "acquire run lock", err)
	}
	if !locked {
		return result, services.Wrap(services.ErrConfiguration, "pipeline", "prepare", "run directory "+rc.RunDir()+" is in use by another process", nil)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	logger := p.logger
	if p.runLog {
		handler, closer, openErr := logging.OpenFileHandler(filepath.Join(rc.RunDir(), RunLogFile), p.cfg.Logging.Level)
		if openErr != nil {
			logging.WarnWithContext(logging.WithContext(ctx, logger), "run log unavailable", "run_log_unavailable",
				logging.Error(openErr),
				logging.String(logging.FieldImpact, "run records only reach the main log"),
			)
		} else {
			defer closer.Close()
			logger = logging.TeeLogger(logger, handler)
		}
	}
	runLogger := logging.WithContext(ctx, logger)

	started := time.Now()
	p.begin(ctx, runLogger, rc)
	failedStage := ""
	defer func() {
		p.finish(ctx, runLogger, rc, result, failedStage, err)
		p.notify(ctx, runLogger, rc, result, failedStage, time.Since(started), err)
	}()

	runLogger.Info("run started",
		logging.String("language", string(rc.Language())),
		logging.String("mode", rc.Mode()),
		logging.Bool("custom_script", rc.CustomScript()),
		logging.Float64("speed", rc.Speed()),
		logging.String("run_dir", rc.RunDir()),
	)

	stages := []struct {
		name  string
		attrs []logging.Attr
		run   func(context.Context) error
	}{
		{StageScript, []logging.Attr{logging.Bool("custom", rc.CustomScript())}, func(ctx context.Context) error {
			return p.runScript(ctx, rc, logger, &result)
		}},
		{StageNarration, []logging.Attr{logging.String("voice", rc.Language().Profile().Voice)}, func(ctx context.Context) error {
			return p.runNarration(ctx, rc, logger, &result)
		}},
		{StageTranscription, []logging.Attr{logging.Int("max_words", rc.MaxWords())}, func(ctx context.Context) error {
			return p.runTranscription(ctx, rc, logger, &result)
		}},
		{StageReconcile, []logging.Attr{logging.Bool("centered", rc.Centered())}, func(ctx context.Context) error {
			return p.runReconcile(ctx, rc, logger, &result)
		}},
		{StageAssembly, []logging.Attr{logging.Float64("speed", rc.Speed())}, func(ctx context.Context) error {
			return p.runAssembly(ctx, rc, logger, &result)
		}},
	}

	for _, stage := range stages {
		if err = stageexec.Run(ctx, stageexec.Options{
			Logger:    logger,
			StageName: stage.name,
			Attrs:     stage.attrs,
			Execute:   stage.run,
		}); err != nil {
			failedStage = stage.name
			return result, err
		}
	}

	runLogger.Info("run complete",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("output", result.OutputPath),
		logging.String("captions", result.CaptionsSidecar),
	)
	return result, nil
}

func (p *Pipeline) runScript(ctx context.Context, rc Context, logger *slog.Logger, result *Result) error {
	var s script.Script
	if rc.CustomScript() {
		s = script.FromCustom(rc.ScriptText(), rc.Language())
	} else {
		synth := script.NewSynthesizer(p.caps.Generator, p.cfg.Script.TargetWords, logger)
		generated, err := synth.Synthesize(ctx, rc.SourceText(), rc.Language())
		if err != nil {
			return err
		}
		s = generated
	}
	path := filepath.Join(rc.RunDir(), ScriptFile)
	if err := fileutil.WriteFileAtomic(path, []byte(s.Text+"\n"), 0o644); err != nil {
		return services.Wrap(services.ErrGeneration, StageScript, "persist", "write script", err)
	}
	result.Script = s
	return nil
}

func (p *Pipeline) runNarration(ctx context.Context, rc Context, logger *slog.Logger, result *Result) error {
	renderer := narration.NewRenderer(p.caps.Speaker, logger)
	audio, err := renderer.Render(ctx, result.Script, filepath.Join(rc.RunDir(), NarrationFile))
	if err != nil {
		return err
	}
	result.NarrationPath = audio.Path
	return nil
}

func (p *Pipeline) runTranscription(ctx context.Context, rc Context, logger *slog.Logger, result *Result) error {
	segmenter := transcription.NewSegmenter(p.caps.Transcriber, rc.MaxWords(), logger)
	audio := narration.Audio{Path: result.NarrationPath}
	transcribed, err := segmenter.Transcribe(ctx, audio, rc.Language())
	if err != nil {
		return err
	}

	transcriptPath := filepath.Join(rc.RunDir(), TranscriptFile)
	transcript := captions.Transcript{Language: string(rc.Language()), Segments: transcribed.Segments}
	if err := captions.WriteTranscript(transcriptPath, transcript); err != nil {
		return services.Wrap(services.ErrTranscription, StageTranscription, "persist", "write transcript", err)
	}
	draftPath := filepath.Join(rc.RunDir(), DraftCaptionsFile)
	if err := transcribed.Draft.Write(draftPath); err != nil {
		return services.Wrap(services.ErrTranscription, StageTranscription, "persist", "write draft captions", err)
	}
	result.TranscriptPath = transcriptPath
	result.DraftCaptionsPath = draftPath
	return nil
}

func (p *Pipeline) runReconcile(ctx context.Context, rc Context, logger *slog.Logger, result *Result) error {
	draft, err := captions.Read(result.DraftCaptionsPath)
	if err != nil {
		return services.Wrap(services.ErrReconciliation, StageReconcile, "load", "read draft captions", err)
	}
	reconciler := reconcile.NewReconciler(p.caps.Corrector, reconcile.Options{
		Centered:         rc.Centered(),
		EnforceStructure: p.cfg.Reconcile.EnforceStructure,
	}, logger)
	correction, err := reconciler.Reconcile(ctx, draft, result.Script)
	if err != nil {
		return err
	}
	path := filepath.Join(rc.RunDir(), CaptionsFile)
	if err := correction.Write(path); err != nil {
		return services.Wrap(services.ErrReconciliation, StageReconcile, "persist", "write captions", err)
	}
	result.CaptionsPath = path
	result.Drift = correction.Drift
	return nil
}

func (p *Pipeline) runAssembly(ctx context.Context, rc Context, logger *slog.Logger, result *Result) error {
	if p.caps.Assembler == nil {
		return services.Wrap(services.ErrRender, StageAssembly, "render", "no assembler configured", nil)
	}
	outputPath := rc.OutputPath()
	if outputPath == "" {
		outputPath = defaultOutputPath(rc, result.Script)
	}
	rendered, err := p.caps.Assembler.Assemble(ctx, assembly.Request{
		VideoPath:           rc.VideoPath(),
		NarrationPath:       result.NarrationPath,
		CaptionsPath:        result.CaptionsPath,
		BackgroundAudioPath: rc.BackgroundAudioPath(),
		Speed:               rc.Speed(),
		Centered:            rc.Centered(),
		OutputPath:          outputPath,
	})
	if err != nil {
		return err
	}
	result.OutputPath = rendered.OutputPath
	result.VideoPath = rendered.VideoPath

	sidecar := strings.TrimSuffix(rendered.OutputPath, filepath.Ext(rendered.OutputPath)) + ".srt"
	if err := fileutil.CopyFile(result.CaptionsPath, sidecar); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, logger), "caption sidecar not written", "caption_sidecar_failed",
			logging.String("path", sidecar),
			logging.Error(err),
			logging.String(logging.FieldImpact, "captions remain burned into the video and in the run directory"),
		)
		return nil
	}
	result.CaptionsSidecar = sidecar
	return nil
}

func defaultOutputPath(rc Context, s script.Script) string {
	id := rc.RunID()
	if len(id) > 8 {
		id = id[:8]
	}
	name := fmt.Sprintf("%s-%s.mp4", textutil.Slug(s.Text, 6), id)
	return filepath.Join(rc.OutputDir(), name)
}

func (p *Pipeline) begin(ctx context.Context, logger *slog.Logger, rc Context) {
	if p.recorder == nil {
		return
	}
	err := p.recorder.Begin(ctx, history.Run{
		ID:                  rc.RunID(),
		Language:            string(rc.Language()),
		CaptionMode:         rc.Mode(),
		CustomScript:        rc.CustomScript(),
		Speed:               rc.Speed(),
		VideoPath:           rc.VideoPath(),
		BackgroundAudioPath: rc.BackgroundAudioPath(),
		WorkDir:             rc.RunDir(),
	})
	if err != nil {
		logging.WarnWithContext(logger, "run not recorded in history", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run will not appear in 'explainer runs'"),
		)
	}
}

func (p *Pipeline) finish(ctx context.Context, logger *slog.Logger, rc Context, result Result, failedStage string, runErr error) {
	if p.recorder == nil {
		return
	}
	outcome := history.Outcome{
		Status:       history.StatusSucceeded,
		VideoPath:    result.VideoPath,
		OutputPath:   result.OutputPath,
		CaptionsPath: result.CaptionsPath,
	}
	if runErr != nil {
		details := services.Details(runErr)
		outcome = history.Outcome{
			Status:       history.StatusFailed,
			CaptionsPath: result.CaptionsPath,
			FailedStage:  failedStage,
			FailureKind:  details.Kind,
			ErrorMessage: details.Message,
		}
	}
	// Record the outcome even when the run context was cancelled.
	recordCtx := context.WithoutCancel(ctx)
	if err := p.recorder.Finish(recordCtx, rc.RunID(), outcome); err != nil && !errors.Is(err, history.ErrNotFound) {
		logging.WarnWithContext(logger, "run outcome not recorded", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "history shows the run as still running"),
		)
	}
}

func (p *Pipeline) notify(ctx context.Context, logger *slog.Logger, rc Context, result Result, failedStage string, elapsed time.Duration, runErr error) {
	if p.notifier == nil {
		return
	}
	notifyCtx := context.WithoutCancel(ctx)
	var err error
	if runErr == nil {
		err = p.notifier.NotifyRunCompleted(notifyCtx, notifications.RunSummary{
			RunID:      rc.RunID(),
			OutputPath: result.OutputPath,
			Language:   string(rc.Language()),
			Elapsed:    elapsed,
		})
	} else {
		details := services.Details(runErr)
		err = p.notifier.NotifyRunFailed(notifyCtx, notifications.RunFailure{
			RunID:   rc.RunID(),
			Stage:   failedStage,
			Kind:    details.Kind,
			Message: details.Message,
		})
	}
	if err != nil {
		logging.WarnWithContext(logger, "run notification not sent", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "no push notice for this run"),
		)
	}
}
