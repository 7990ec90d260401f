package stageexec

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"explainer/internal/logging"
	"explainer/internal/services"
)

// Options controls a single stage execution.
type Options struct {
	Logger    *slog.Logger
	StageName string
	// Attrs are attached to the stage_start record.
	Attrs   []logging.Attr
	Execute func(ctx context.Context) error
}

// Run executes a stage with standardized start, completion, and failure
// records. The stage error is returned unchanged.
func Run(ctx context.Context, opts Options) error {
	if opts.Execute == nil {
		return services.Wrap(services.ErrConfiguration, opts.StageName, "execute", "stage handler unavailable", nil)
	}

	stageCtx := services.WithStage(ctx, opts.StageName)
	stageLogger := logging.WithContext(stageCtx, opts.Logger)

	startAttrs := append([]logging.Attr{logging.String(logging.FieldEventType, "stage_start")}, opts.Attrs...)
	stageLogger.Info("stage started", logging.Args(startAttrs...)...)

	started := time.Now()
	if err := opts.Execute(stageCtx); err != nil {
		return handleFailure(stageLogger, err, time.Since(started))
	}

	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func handleFailure(logger *slog.Logger, stageErr error, elapsed time.Duration) error {
	details := services.Details(stageErr)
	message := strings.TrimSpace(details.Message)
	if message == "" {
		message = "stage failed"
	}
	hint := "check the run log for the underlying cause"
	if errors.Is(stageErr, context.Canceled) {
		hint = "run was cancelled"
	}
	logging.ErrorWithContext(logger, "stage failed", "stage_failure",
		logging.String("failure_kind", details.Kind),
		logging.String("error_message", message),
		logging.Duration("elapsed", elapsed),
		logging.String(logging.FieldErrorHint, hint),
		logging.Error(stageErr),
	)
	return stageErr
}
