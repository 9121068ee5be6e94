package value_test

import (
	"testing"

	"github.com/funvibe/cods/internal/value"
)

func TestEqNumericCrossesIntFloat(t *testing.T) {
	if !value.Eq(value.Int(3), value.Float(3.0)) {
		t.Fatalf("Int(3) should equal Float(3.0)")
	}
	if value.Eq(value.Int(3), value.Float(3.5)) {
		t.Fatalf("Int(3) should not equal Float(3.5)")
	}
}

func TestEqStructuralWithinType(t *testing.T) {
	if !value.Eq(value.Str("a"), value.Str("a")) {
		t.Fatalf("equal strings should compare equal")
	}
	if value.Eq(value.Str("a"), value.Str("b")) {
		t.Fatalf("different strings should not compare equal")
	}
	if value.Eq(value.Bool(true), value.Int(1)) {
		t.Fatalf("bool and int of different kinds should never be equal")
	}
}

func TestEqRange(t *testing.T) {
	a := value.Range(value.Inclusive, 1, 5)
	b := value.Range(value.Inclusive, 1, 5)
	c := value.Range(value.Exclusive, 1, 5)
	if !value.Eq(a, b) {
		t.Fatalf("identical ranges should be equal")
	}
	if value.Eq(a, c) {
		t.Fatalf("ranges with different kinds should not be equal")
	}
}

func TestNormalizeFloatCoercesExactIntegers(t *testing.T) {
	got := value.NormalizeFloat(value.Float(27.0))
	if got.Kind != value.IntType || got.I != 27 {
		t.Fatalf("NormalizeFloat(27.0) = %+v, want Int(27)", got)
	}

	got2 := value.NormalizeFloat(value.Float(27.5))
	if got2.Kind != value.FloatType {
		t.Fatalf("NormalizeFloat(27.5) should stay Float, got %+v", got2)
	}
}

func TestNormalizeFloatLeavesNonFloatAlone(t *testing.T) {
	got := value.NormalizeFloat(value.Int(5))
	if got.Kind != value.IntType || got.I != 5 {
		t.Fatalf("NormalizeFloat(Int(5)) should pass through unchanged, got %+v", got)
	}
}

func TestStringFormatting(t *testing.T) {
	cases := []struct {
		v    value.Val
		want string
	}{
		{value.Int(42), "42"},
		{value.Bool(true), "true"},
		{value.Str("hi"), "hi"},
		{value.UnitVal(), "()"},
		{value.Range(value.Exclusive, 1, 4), "1..4"},
		{value.Range(value.Inclusive, 1, 4), "1..=4"},
	}
	for _, tc := range cases {
		if got := tc.v.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestAsF64Widens(t *testing.T) {
	if value.Int(3).AsF64() != 3.0 {
		t.Fatalf("Int(3).AsF64() should widen to 3.0")
	}
	if value.Float(2.5).AsF64() != 2.5 {
		t.Fatalf("Float(2.5).AsF64() should stay 2.5")
	}
}
