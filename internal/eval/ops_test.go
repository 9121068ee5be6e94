package eval

import (
	"math"
	"testing"

	"github.com/funvibe/cods/internal/span"
)

func TestCheckedAddOverflow(t *testing.T) {
	if _, err := checkedAdd(math.MaxInt64, 1, span.Pos(0)); err == nil {
		t.Fatalf("expected overflow error adding 1 to MaxInt64")
	}
	r, err := checkedAdd(2, 3, span.Pos(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.val.I != 5 {
		t.Fatalf("2+3 = %d, want 5", r.val.I)
	}
}

func TestCheckedMulOverflow(t *testing.T) {
	if _, err := checkedMul(math.MaxInt64, 2, span.Pos(0)); err == nil {
		t.Fatalf("expected overflow error multiplying MaxInt64 by 2")
	}
	r, err := checkedMul(0, math.MaxInt64, span.Pos(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.val.I != 0 {
		t.Fatalf("0*MaxInt64 = %d, want 0", r.val.I)
	}
}

func TestCheckedSubOverflow(t *testing.T) {
	if _, err := checkedSub(math.MinInt64, 1, span.Pos(0)); err == nil {
		t.Fatalf("expected overflow error subtracting 1 from MinInt64")
	}
}

func TestEuclidMod(t *testing.T) {
	cases := []struct {
		a, b    int64
		wantMod int64
	}{
		{8, 3, 2},
		{-8, 3, 1},
		{8, -3, -1},
		{-8, -3, -2},
	}
	for _, tc := range cases {
		if got := euclidMod(tc.a, tc.b); got != tc.wantMod {
			t.Errorf("euclidMod(%d,%d) = %d, want %d", tc.a, tc.b, got, tc.wantMod)
		}
	}
}

func TestFactorial(t *testing.T) {
	r, err := factorial(5, span.Pos(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.val.I != 120 {
		t.Fatalf("5! = %d, want 120", r.val.I)
	}

	if _, err := factorial(-1, span.Pos(0)); err == nil {
		t.Fatalf("expected NegativeFactorial error for -1!")
	}

	if _, err := factorial(34, span.Pos(0)); err == nil {
		t.Fatalf("expected FactorialOverflow error for 34!")
	}
}

func TestNcrAndGcd(t *testing.T) {
	r, err := ncr(5, 2, span.Pos(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.val.I != 10 {
		t.Fatalf("ncr(5,2) = %d, want 10", r.val.I)
	}

	if _, err := ncr(2, 5, span.Pos(0)); err == nil {
		t.Fatalf("expected InvalidNcr error when r > n")
	}
	if _, err := ncr(5, -1, span.Pos(0)); err == nil {
		t.Fatalf("expected NegativeNcr error for negative r")
	}

	g := gcd(-12, 18)
	if g.val.I != 6 {
		t.Fatalf("gcd(-12,18) = %d, want 6", g.val.I)
	}
}
