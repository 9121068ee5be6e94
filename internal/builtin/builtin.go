// Package builtin holds the monomorphized builtin-function catalogue:
// one Which per concrete overload, grouped into ordered signature lists
// keyed by surface name, matched first-candidate-wins by the checker.
package builtin

import "github.com/funvibe/cods/internal/value"

// Which identifies one monomorphized builtin overload. The evaluator
// switches on Which only — it never redispatches on argument type.
type Which int

const (
	PowInt Which = iota
	PowFloat
	Ln
	Log
	Sqrt
	Ncr
	ToDeg
	ToRad
	Sin
	Cos
	Tan
	Asin
	Acos
	Atan
	Gcd
	MinInt
	MinFloat
	MaxInt
	MaxFloat
	ClampInt
	ClampFloat
	AbsInt
	AbsFloat
	Print
	Println
	Spill
	SpillLocal
	Assert
	AssertEq
)

func (w Which) String() string {
	names := [...]string{
		"PowInt", "PowFloat", "Ln", "Log", "Sqrt", "Ncr", "ToDeg", "ToRad",
		"Sin", "Cos", "Tan", "Asin", "Acos", "Atan", "Gcd",
		"MinInt", "MinFloat", "MaxInt", "MaxFloat",
		"ClampInt", "ClampFloat", "AbsInt", "AbsFloat",
		"Print", "Println", "Spill", "SpillLocal", "Assert", "AssertEq",
	}
	if int(w) < len(names) {
		return names[w]
	}
	return "?"
}

// Repetition describes how the last declared parameter repeats.
type Repetition int

const (
	One Repetition = iota
	ZeroOrMore
	OneOrMore
)

// Signature is one candidate overload: a fixed parameter type list (whose
// last entry may repeat per Repetition) and a return type.
type Signature struct {
	Which      Which
	Params     []value.DataType
	Repetition Repetition
	Return     value.DataType
}

// Table maps a builtin's surface name to its ordered candidate list.
// The first candidate whose arity and argument types match wins.
var Table = map[string][]Signature{
	"pow": {
		{Which: PowInt, Params: []value.DataType{value.IntType, value.IntType}, Return: value.IntType},
		{Which: PowFloat, Params: []value.DataType{value.FloatType, value.FloatType}, Return: value.FloatType},
	},
	"ln":    {{Which: Ln, Params: []value.DataType{value.FloatType}, Return: value.FloatType}},
	"log":   {{Which: Log, Params: []value.DataType{value.FloatType, value.FloatType}, Return: value.FloatType}},
	"sqrt":  {{Which: Sqrt, Params: []value.DataType{value.FloatType}, Return: value.FloatType}},
	"ncr":   {{Which: Ncr, Params: []value.DataType{value.IntType, value.IntType}, Return: value.IntType}},
	"to_deg": {{Which: ToDeg, Params: []value.DataType{value.FloatType}, Return: value.FloatType}},
	"to_rad": {{Which: ToRad, Params: []value.DataType{value.FloatType}, Return: value.FloatType}},
	"sin":   {{Which: Sin, Params: []value.DataType{value.FloatType}, Return: value.FloatType}},
	"cos":   {{Which: Cos, Params: []value.DataType{value.FloatType}, Return: value.FloatType}},
	"tan":   {{Which: Tan, Params: []value.DataType{value.FloatType}, Return: value.FloatType}},
	"asin":  {{Which: Asin, Params: []value.DataType{value.FloatType}, Return: value.FloatType}},
	"acos":  {{Which: Acos, Params: []value.DataType{value.FloatType}, Return: value.FloatType}},
	"atan":  {{Which: Atan, Params: []value.DataType{value.FloatType}, Return: value.FloatType}},
	"gcd":   {{Which: Gcd, Params: []value.DataType{value.IntType, value.IntType}, Return: value.IntType}},
	"min": {
		{Which: MinInt, Params: []value.DataType{value.IntType}, Repetition: OneOrMore, Return: value.IntType},
		{Which: MinFloat, Params: []value.DataType{value.FloatType}, Repetition: OneOrMore, Return: value.FloatType},
	},
	"max": {
		{Which: MaxInt, Params: []value.DataType{value.IntType}, Repetition: OneOrMore, Return: value.IntType},
		{Which: MaxFloat, Params: []value.DataType{value.FloatType}, Repetition: OneOrMore, Return: value.FloatType},
	},
	"clamp": {
		{Which: ClampInt, Params: []value.DataType{value.IntType, value.IntType, value.IntType}, Return: value.IntType},
		{Which: ClampFloat, Params: []value.DataType{value.FloatType, value.FloatType, value.FloatType}, Return: value.FloatType},
	},
	"abs": {
		{Which: AbsInt, Params: []value.DataType{value.IntType}, Return: value.IntType},
		{Which: AbsFloat, Params: []value.DataType{value.FloatType}, Return: value.FloatType},
	},
	"print":       {{Which: Print, Params: []value.DataType{value.AnyType}, Repetition: ZeroOrMore, Return: value.Unit}},
	"println":     {{Which: Println, Params: []value.DataType{value.AnyType}, Repetition: ZeroOrMore, Return: value.Unit}},
	"spill":       {{Which: Spill, Params: nil, Return: value.Unit}},
	"spill_local": {{Which: SpillLocal, Params: nil, Return: value.Unit}},
	"assert":      {{Which: Assert, Params: []value.DataType{value.BoolType}, Return: value.Unit}},
	"assert_eq":   {{Which: AssertEq, Params: []value.DataType{value.AnyType, value.AnyType}, Return: value.Unit}},
}

// Constants are the builtin named float constants.
var Constants = map[string]value.Val{
	"PI":  value.Float(3.14159265358979323846),
	"TAU": value.Float(6.28318530717958647692),
	"E":   value.Float(2.71828182845904523536),
}
