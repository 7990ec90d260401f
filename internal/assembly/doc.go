// Package assembly composites narration, optional background audio, and
// burned-in captions onto a background clip with ffmpeg.
//
// Assembler.Assemble resolves the background video (explicit path or a
// uniform random pick from the pool directory), probes its frame size,
// builds a single filter_complex graph, and runs ffmpeg while streaming
// `-progress pipe:1` output into the sampled progress logger.
//
// The graph builder is pure: BuildFilterGraph and BuildArgs can be tested
// without ffmpeg installed. Runner and Prober abstract the two binaries.
package assembly
