package renderer_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/funvibe/cods/internal/config"
	"github.com/funvibe/cods/internal/errors"
	"github.com/funvibe/cods/internal/renderer"
	"github.com/funvibe/cods/internal/span"
)

func TestErrorUnderlinesSpan(t *testing.T) {
	config.DisableColor = true
	defer func() { config.DisableColor = false }()

	src := "val x = 2\nx = 4"
	e := errors.NewImmutableAssign("x", span.Of(4, 5), span.Of(10, 11))
	var out bytes.Buffer
	renderer.Error(&out, src, e)

	got := out.String()
	if !strings.HasPrefix(got, "error: ") {
		t.Fatalf("output should start with the error label, got %q", got)
	}
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	// message + two spans, each a source line plus an underline line
	if len(lines) != 5 {
		t.Fatalf("expected 5 output lines, got %d:\n%s", len(lines), got)
	}
	if !strings.Contains(lines[1], "val x = 2") {
		t.Fatalf("first span should show line 1, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "^") {
		t.Fatalf("expected an underline beneath line 1, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "x = 4") {
		t.Fatalf("second span should show line 2, got %q", lines[3])
	}
	// the second span starts at byte 10, column 0 of line 2
	caret := strings.IndexByte(lines[4], '^')
	prefixLen := strings.Index(lines[3], "x = 4")
	if caret != prefixLen {
		t.Fatalf("underline column %d should match source column %d", caret, prefixLen)
	}
}

func TestWarningUsesWarningLabel(t *testing.T) {
	config.DisableColor = true
	defer func() { config.DisableColor = false }()

	src := "(1 + 2]"
	w := errors.NewMismatchedParentheses(span.Of(0, 1), span.Of(6, 7))
	var out bytes.Buffer
	renderer.Warning(&out, src, w)
	if !strings.HasPrefix(out.String(), "warning: ") {
		t.Fatalf("output should start with the warning label, got %q", out.String())
	}
}

func TestShouldColorHonorsOverrides(t *testing.T) {
	var buf bytes.Buffer

	config.ForceColor = true
	if !renderer.ShouldColor(&buf) {
		t.Fatalf("ForceColor should win over the non-TTY default")
	}
	config.ForceColor = false

	config.DisableColor = true
	if renderer.ShouldColor(&buf) {
		t.Fatalf("DisableColor should suppress color")
	}
	config.DisableColor = false

	if renderer.ShouldColor(&buf) {
		t.Fatalf("a plain buffer is not a TTY and should not be colorized")
	}
}
