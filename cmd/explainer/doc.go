// Package main hosts the explainer CLI entrypoint and command graph.
//
// `explainer generate` runs the full pipeline; the remaining commands are
// offline helpers for captions, run history, environment checks, and
// configuration scaffolding. Heavy lifting lives in internal packages; this
// package resolves configuration and logging once and renders results.
package main
