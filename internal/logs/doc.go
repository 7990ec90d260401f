// Package logs reads per-run log files written by the pipeline.
//
// Run logs are JSON lines. Last and From return complete lines with the byte
// offset to resume from, Follow polls for appended lines until its context
// ends, and Format renders a JSON record as a single readable line. A
// trailing line without a newline is left for the next read so a record the
// pipeline is still writing is never split.
package logs
