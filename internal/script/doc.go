// Package script produces the voice-over script a run narrates.
//
// Generated scripts come from a text-generation capability prompted to write
// numbers as words, then pass through FilterCharacters to drop markup and
// symbols the narrator would read aloud. Caller-supplied scripts are used
// verbatim.
package script
