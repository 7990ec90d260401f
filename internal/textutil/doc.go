// Package textutil provides small text helpers shared across stages: token
// fingerprints for comparing caption text to the script, code-fence removal
// for model responses, and filesystem-safe slugs for output names.
package textutil
