// Package language maps the spoken languages explainer can narrate in.
//
// Code normalization (ISO 639-1, ISO 639-2, display names) and the
// per-language narration profile (voice, tone instruction, accented
// letters kept by the script filter) are consolidated here so the script,
// narration, and reconcile packages agree on one table.
package language
