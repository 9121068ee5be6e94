// Package value holds the runtime value representation (Val) and the
// static type lattice (DataType) shared by the checker and the evaluator.
// Values are a closed sum of cheap value types or small owned strings,
// never a heap object graph.
package value

import (
	"fmt"
	"math"
	"strconv"
)

// DataType is the closed set of static types in the language.
type DataType int

const (
	Unit DataType = iota
	IntType
	FloatType
	BoolType
	CharType
	StrType
	RangeType
	AnyType // used only in builtin parameter signatures (variadic print)
)

func (d DataType) String() string {
	switch d {
	case Unit:
		return "unit"
	case IntType:
		return "int"
	case FloatType:
		return "float"
	case BoolType:
		return "bool"
	case CharType:
		return "char"
	case StrType:
		return "str"
	case RangeType:
		return "range"
	case AnyType:
		return "any"
	default:
		return "?"
	}
}

// RangeKind distinguishes inclusive (..=) from exclusive (..) ranges.
type RangeKind int

const (
	Exclusive RangeKind = iota
	Inclusive
)

// Val is a runtime value. Exactly one field is meaningful, selected by Kind.
// Values are cheap to clone except Str.
type Val struct {
	Kind  DataType
	I     int64
	F     float64
	B     bool
	Ch    rune
	S     string
	RKind RangeKind
	RLo   int64
	RHi   int64
}

func Int(i int64) Val      { return Val{Kind: IntType, I: i} }
func Float(f float64) Val  { return Val{Kind: FloatType, F: f} }
func Bool(b bool) Val      { return Val{Kind: BoolType, B: b} }
func Char(c rune) Val      { return Val{Kind: CharType, Ch: c} }
func Str(s string) Val     { return Val{Kind: StrType, S: s} }
func UnitVal() Val         { return Val{Kind: Unit} }
func Range(k RangeKind, lo, hi int64) Val {
	return Val{Kind: RangeType, RKind: k, RLo: lo, RHi: hi}
}

// DataType reports the static type of the value.
func (v Val) DataType() DataType { return v.Kind }

// String renders the value the way print/println format it.
func (v Val) String() string {
	switch v.Kind {
	case IntType:
		return strconv.FormatInt(v.I, 10)
	case FloatType:
		return formatFloat(v.F)
	case BoolType:
		return strconv.FormatBool(v.B)
	case CharType:
		return string(v.Ch)
	case StrType:
		return v.S
	case RangeType:
		if v.RKind == Inclusive {
			return fmt.Sprintf("%d..=%d", v.RLo, v.RHi)
		}
		return fmt.Sprintf("%d..%d", v.RLo, v.RHi)
	case Unit:
		return "()"
	default:
		return "?"
	}
}

func formatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// AsF64 widens an Int or Float value to float64. Panics on other kinds;
// callers must only invoke this after the checker has already proven the
// operand is numeric.
func (v Val) AsF64() float64 {
	switch v.Kind {
	case IntType:
		return float64(v.I)
	case FloatType:
		return v.F
	default:
		panic("value: AsF64 on non-numeric value")
	}
}

// NormalizeFloat coerces a Float value to Int when it is exactly
// representable as one. This is why ln(pow(E, 27.0)) evaluates to the
// integer 27 rather than a float.
func NormalizeFloat(v Val) Val {
	if v.Kind != FloatType {
		return v
	}
	f := v.F
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return v
	}
	i := int64(f)
	if float64(i) == f {
		return Int(i)
	}
	return v
}

// Eq implements the language's structural/numeric equality: within the
// same type it is structural; Int and Float compare by mathematical
// value when either side is float.
func Eq(a, b Val) bool {
	if a.Kind == IntType && b.Kind == IntType {
		return a.I == b.I
	}
	if (a.Kind == IntType || a.Kind == FloatType) && (b.Kind == IntType || b.Kind == FloatType) {
		return a.AsF64() == b.AsF64()
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case BoolType:
		return a.B == b.B
	case CharType:
		return a.Ch == b.Ch
	case StrType:
		return a.S == b.S
	case RangeType:
		return a.RKind == b.RKind && a.RLo == b.RLo && a.RHi == b.RHi
	case Unit:
		return true
	}
	return false
}
