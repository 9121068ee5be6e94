// Package renderer formats diagnostics for a terminal: the offending
// source line plus an underline beneath every span a diagnostic carries.
// ANSI color is gated on the output being a TTY, overridable via
// internal/config.
package renderer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/cods/internal/config"
	"github.com/funvibe/cods/internal/errors"
	"github.com/funvibe/cods/internal/span"
)

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiBold   = "\x1b[1m"
	ansiReset  = "\x1b[0m"
)

// ShouldColor decides whether ANSI escapes should be emitted for w,
// honoring the config package's force/disable overrides before falling
// back to a TTY check.
func ShouldColor(w io.Writer) bool {
	if config.DisableColor {
		return false
	}
	if config.ForceColor {
		return true
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Error renders a fatal diagnostic against its source text.
func Error(w io.Writer, src string, e *errors.Error) {
	render(w, src, "error", ansiRed, e.Message, e.Spans, ShouldColor(w))
}

// Warning renders a recoverable diagnostic against its source text.
func Warning(w io.Writer, src string, wrn *errors.Warning) {
	render(w, src, "warning", ansiYellow, wrn.Message, wrn.Spans, ShouldColor(w))
}

func render(w io.Writer, src, label, color, msg string, spans []span.Span, colorize bool) {
	if colorize {
		fmt.Fprintf(w, "%s%s%s%s: %s\n", color, ansiBold, label, ansiReset, msg)
	} else {
		fmt.Fprintf(w, "%s: %s\n", label, msg)
	}
	for _, sp := range spans {
		renderSpan(w, src, sp, color, colorize)
	}
}

func renderSpan(w io.Writer, src string, sp span.Span, color string, colorize bool) {
	lineStart, lineEnd, lineNo := lineBounds(src, sp.Start)
	line := src[lineStart:lineEnd]
	col := sp.Start - lineStart
	underlineLen := sp.Len()
	if underlineLen < 1 {
		underlineLen = 1
	}
	if col+underlineLen > len(line) {
		underlineLen = len(line) - col
		if underlineLen < 1 {
			underlineLen = 1
		}
	}

	fmt.Fprintf(w, "  %d | %s\n", lineNo, line)
	prefix := fmt.Sprintf("  %d | ", lineNo)
	pad := strings.Repeat(" ", len(prefix)+col)
	underline := strings.Repeat("^", underlineLen)
	if colorize {
		fmt.Fprintf(w, "%s%s%s%s\n", pad, color, underline, ansiReset)
	} else {
		fmt.Fprintf(w, "%s%s\n", pad, underline)
	}
}

// lineBounds finds the [start,end) byte range of the line containing
// byte offset pos, plus its 1-indexed line number.
func lineBounds(src string, pos int) (start, end, lineNo int) {
	lineNo = 1
	start = 0
	for i := 0; i < pos && i < len(src); i++ {
		if src[i] == '\n' {
			start = i + 1
			lineNo++
		}
	}
	end = len(src)
	if idx := strings.IndexByte(src[start:], '\n'); idx >= 0 {
		end = start + idx
	}
	return start, end, lineNo
}
