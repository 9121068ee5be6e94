// Package config holds the small set of fixed, non-source-level settings
// shared by the CLI and the diagnostic renderer. Plain package vars and
// constants; this tool has no deployment knobs worth a parsed config file.
package config

// SourceExtension is the file extension the CLI expects; in multi-file
// mode a path without it draws a warning, and the file is still run.
const SourceExtension = ".cods"

// ForceColor and DisableColor let a caller override the CLI's TTY-based
// ANSI detection (renderer.ShouldColor).
var (
	ForceColor   bool
	DisableColor bool
)

// SinkBufferSize is the buffer size used for the CLI's stdout writer.
const SinkBufferSize = 4096
