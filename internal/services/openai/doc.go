// Package openai talks to an OpenAI-compatible provider for the four model
// capabilities the pipeline consumes: script generation and caption
// correction (chat completions), narration (speech), and transcription with
// segment timestamps.
//
// Transient failures (HTTP 408/429/5xx, network timeouts, empty completions)
// are retried with exponential backoff up to the configured attempt count.
// The default is a single attempt so a failing provider surfaces immediately.
package openai
