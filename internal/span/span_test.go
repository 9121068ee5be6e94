package span_test

import (
	"testing"

	"github.com/funvibe/cods/internal/span"
)

func TestOfNormalizesOrder(t *testing.T) {
	s := span.Of(10, 3)
	if s.Start != 3 || s.End != 10 {
		t.Fatalf("Of(10,3) = %v, want {3 10}", s)
	}
}

func TestToMerges(t *testing.T) {
	a := span.Of(4, 8)
	b := span.Of(2, 6)
	m := a.To(b)
	if m.Start != 2 || m.End != 8 {
		t.Fatalf("To merge = %v, want {2 8}", m)
	}
}

func TestLenAndEmpty(t *testing.T) {
	p := span.Pos(5)
	if !p.Empty() {
		t.Fatalf("Pos(5) should be empty")
	}
	if p.Len() != 0 {
		t.Fatalf("Pos(5).Len() = %d, want 0", p.Len())
	}

	s := span.Of(5, 9)
	if s.Empty() {
		t.Fatalf("Of(5,9) should not be empty")
	}
	if s.Len() != 4 {
		t.Fatalf("Of(5,9).Len() = %d, want 4", s.Len())
	}
}

func TestSliceClampsToSource(t *testing.T) {
	src := "hello world"
	if got := span.Of(0, 5).Slice(src); got != "hello" {
		t.Fatalf("Slice(0,5) = %q, want %q", got, "hello")
	}
	if got := span.Of(6, 100).Slice(src); got != "world" {
		t.Fatalf("Slice(6,100) = %q, want %q", got, "world")
	}
	if got := span.Of(100, 200).Slice(src); got != "" {
		t.Fatalf("out-of-range Slice = %q, want empty", got)
	}
}
