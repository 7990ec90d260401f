// Package pipeline runs the explainer stages strictly in sequence:
// script, narration, transcription, reconciliation, assembly.
//
// A Context is built once from CLI inputs and configuration and never
// mutated. Stages hand artifacts to each other as files inside a per-run
// work directory guarded by an advisory lock; the first failure aborts the
// run and is recorded in the history ledger with its taxonomy label.
package pipeline
