// Package stageexec runs one pipeline stage with the standard stage_start,
// stage_complete, and stage_failure log records.
package stageexec
