package services

import (
	"errors"
	"fmt"
	"strings"
)

// Pipeline failure taxonomy. Every stage error is tagged with exactly one of
// these markers so callers can classify failures with errors.Is.
var (
	ErrGeneration     = errors.New("generation failure")
	ErrSynthesis      = errors.New("synthesis failure")
	ErrTranscription  = errors.New("transcription failure")
	ErrReconciliation = errors.New("reconciliation failure")
	ErrNoVideo        = errors.New("no video available")
	ErrRender         = errors.New("render failure")

	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
)

var markers = []struct {
	err  error
	kind string
}{
	{ErrGeneration, "GenerationFailure"},
	{ErrSynthesis, "SynthesisFailure"},
	{ErrTranscription, "TranscriptionFailure"},
	{ErrReconciliation, "ReconciliationFailure"},
	{ErrNoVideo, "NoVideoAvailable"},
	{ErrRender, "RenderFailure"},
	{ErrExternalTool, "ExternalToolError"},
	{ErrValidation, "ValidationError"},
	{ErrConfiguration, "ConfigurationError"},
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ErrorDetails summarizes a wrapped stage error for operator display.
type ErrorDetails struct {
	Kind    string
	Message string
}

// Details classifies err against the failure taxonomy. Kind is empty when the
// error carries no known marker.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	return ErrorDetails{Kind: FailureKind(err), Message: strings.TrimSpace(err.Error())}
}

// FailureKind returns the taxonomy label for err, or "" when unclassified.
func FailureKind(err error) string {
	if err == nil {
		return ""
	}
	for _, m := range markers {
		if errors.Is(err, m.err) {
			return m.kind
		}
	}
	return ""
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
