// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and correlation
//     identifiers for logging.
//   - The failure taxonomy (generation, synthesis, transcription,
//     reconciliation, missing video, render) plus the Wrap helper that tags
//     stage errors with a marker testable through errors.Is.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
