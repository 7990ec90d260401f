// Package logging assembles structured slog loggers and formatting helpers used
// across explainer.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so pipeline stages tag log lines with the
// run ID, stage name, and correlation ID. TeeLogger duplicates a run's records
// into a per-run log file; ProgressSampler keeps render progress readable.
package logging
