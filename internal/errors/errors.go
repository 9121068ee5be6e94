// Package errors implements the diagnostic representation shared by every
// pipeline stage: lex, grouper, checker, and evaluator all report through
// *errors.Error / *errors.Warning, each carrying one display sentence and
// the spans a renderer would underline. Each constructor embeds the
// operand values it needs to render a full sentence, not just a generic
// message string.
package errors

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/funvibe/cods/internal/span"
)

// Kind identifies a diagnostic variant, split five ways: lex, grouper,
// parse/check, runtime, and warning.
type Kind string

const (
	// Lex errors
	InvalidChar              Kind = "InvalidChar"
	InvalidNumberFormat      Kind = "InvalidNumberFormat"
	MissingClosingQuote      Kind = "MissingClosingQuote"
	UnterminatedBlockComment Kind = "UnterminatedBlockComment"
	InvalidEscape            Kind = "InvalidEscape"

	// Grouper errors
	MismatchedParentheses      Kind = "MismatchedParentheses"
	MissingClosingParenthesis  Kind = "MissingClosingParenthesis"
	UnexpectedParenthesis      Kind = "UnexpectedParenthesis"

	// Parse/check errors
	MissingExpr                    Kind = "MissingExpr"
	MissingOperand                 Kind = "MissingOperand"
	MissingOperator                Kind = "MissingOperator"
	UnexpectedOperator              Kind = "UnexpectedOperator"
	UnexpectedSeparator              Kind = "UnexpectedSeparator"
	MissingFunctionParentheses      Kind = "MissingFunctionParentheses"
	MissingFunctionArguments        Kind = "MissingFunctionArguments"
	UnexpectedFunctionArguments     Kind = "UnexpectedFunctionArguments"
	UndefinedVar                    Kind = "UndefinedVar"
	RedefinedVar                    Kind = "RedefinedVar"
	RedefinedFun                    Kind = "RedefinedFun"
	ImmutableAssign                 Kind = "ImmutableAssign"
	CapturingFromDynamicScope       Kind = "CapturingFromDynamicScope"
	NoMatchingBuiltinSignature      Kind = "NoMatchingBuiltinSignature"
	ExpectedNumber                  Kind = "ExpectedNumber"
	ExpectedBool                    Kind = "ExpectedBool"
	ExpectedValue                   Kind = "ExpectedValue"
	ExpectedInt                     Kind = "ExpectedInt"
	ExpectedStr                     Kind = "ExpectedStr"
	InvalidAssignment               Kind = "InvalidAssignment"
	InvalidBwOr                     Kind = "InvalidBwOr"
	InvalidBwAnd                    Kind = "InvalidBwAnd"
	TypeMismatch                    Kind = "TypeMismatch"

	// Runtime errors
	AddOverflow        Kind = "AddOverflow"
	SubOverflow        Kind = "SubOverflow"
	MulOverflow        Kind = "MulOverflow"
	PowOverflow        Kind = "PowOverflow"
	FactorialOverflow  Kind = "FactorialOverflow"
	DivideByZero       Kind = "DivideByZero"
	RemainderByZero    Kind = "RemainderByZero"
	NegativeFactorial  Kind = "NegativeFactorial"
	FractionFactorial  Kind = "FractionFactorial"
	NegativeNcr        Kind = "NegativeNcr"
	InvalidNcr         Kind = "InvalidNcr"
	FractionRemainder  Kind = "FractionRemainder"
	FractionGcd        Kind = "FractionGcd"
	FractionEuclidDiv  Kind = "FractionEuclidDiv"
	FractionNcr        Kind = "FractionNcr"
	InvalidClampBounds Kind = "InvalidClampBounds"
	AssertFailed       Kind = "AssertFailed"
	AssertEqFailed     Kind = "AssertEqFailed"
	UseOfUninitializedVar Kind = "UseOfUninitializedVar"

	// Warnings
	WarnConfusingCase              Kind = "ConfusingCase"
	WarnSignFollowingAddition      Kind = "SignFollowingAddition"
	WarnSignFollowingSubtraction   Kind = "SignFollowingSubtraction"
	WarnMultipleSigns              Kind = "MultipleSigns"
	WarnMismatchedParentheses      Kind = "MismatchedParentheses"
	WarnConfusingFunctionParens    Kind = "ConfusingFunctionParentheses"
	WarnConfusingSeparator         Kind = "ConfusingSeparator"
)

// Error is a fatal diagnostic. It always carries at least one span,
// except MissingExpr which legitimately has none (there is no token to
// point at when an expression was expected but the input just ended).
type Error struct {
	Kind    Kind
	Message string
	Spans   []span.Span
}

func (e *Error) Error() string { return e.Message }

// Warning is a recoverable, non-fatal diagnostic accumulated on a Context.
type Warning struct {
	Kind    Kind
	Message string
	Spans   []span.Span
}

func (w *Warning) Error() string { return w.Message }

func newErr(kind Kind, msg string, spans ...span.Span) *Error {
	return &Error{Kind: kind, Message: msg, Spans: spans}
}

func newWarn(kind Kind, msg string, spans ...span.Span) *Warning {
	return &Warning{Kind: kind, Message: msg, Spans: spans}
}

// --- Lex errors ---

func NewInvalidChar(ch rune, at span.Span) *Error {
	return newErr(InvalidChar, fmt.Sprintf("invalid character %q", ch), at)
}

func NewInvalidNumberFormat(lexeme string, at span.Span) *Error {
	return newErr(InvalidNumberFormat, fmt.Sprintf("invalid number format: %q", lexeme), at)
}

func NewMissingClosingQuote(openAt span.Span) *Error {
	return newErr(MissingClosingQuote, "missing closing quote", openAt)
}

func NewUnterminatedBlockComment(openAt span.Span) *Error {
	return newErr(UnterminatedBlockComment, "unterminated block comment", openAt)
}

func NewInvalidEscape(seq string, at span.Span) *Warning {
	return newWarn(InvalidEscape, fmt.Sprintf("invalid escape sequence %q", seq), at)
}

// --- Grouper errors ---

func NewMismatchedParentheses(open, close span.Span) *Warning {
	return newWarn(MismatchedParentheses, "mismatched parentheses", open, close)
}

func NewMissingClosingParenthesis(openAt span.Span) *Error {
	return newErr(MissingClosingParenthesis, "missing closing parenthesis", openAt)
}

func NewUnexpectedParenthesis(at span.Span) *Error {
	return newErr(UnexpectedParenthesis, "unexpected closing parenthesis", at)
}

// --- Parse/check errors ---

func NewMissingExpr() *Error {
	return &Error{Kind: MissingExpr, Message: "missing expression"}
}

func NewMissingOperand(at span.Span) *Error {
	return newErr(MissingOperand, "missing operand", at)
}

func NewMissingOperator(at span.Span) *Error {
	return newErr(MissingOperator, "missing operator", at)
}

func NewUnexpectedOperator(lexeme string, at span.Span) *Error {
	return newErr(UnexpectedOperator, fmt.Sprintf("unexpected operator %q", lexeme), at)
}

func NewUnexpectedSeparator(lexeme string, at span.Span) *Error {
	return newErr(UnexpectedSeparator, fmt.Sprintf("unexpected separator %q", lexeme), at)
}

func NewMissingFunctionParentheses(name string, at span.Span) *Error {
	return newErr(MissingFunctionParentheses, fmt.Sprintf("function %q is missing parentheses", name), at)
}

func NewMissingFunctionArguments(name string, expected, found int, at span.Span) *Error {
	return newErr(MissingFunctionArguments,
		fmt.Sprintf("function %q expects %d argument(s), found %d", name, expected, found), at)
}

func NewUnexpectedFunctionArguments(name string, expected, found int, ranges ...span.Span) *Error {
	return newErr(UnexpectedFunctionArguments,
		fmt.Sprintf("function %q expects %d argument(s), found %d", name, expected, found), ranges...)
}

func NewUndefinedVar(name string, at span.Span) *Error {
	return newErr(UndefinedVar, fmt.Sprintf("undefined variable %q", name), at)
}

func NewRedefinedVar(name string, first, second span.Span) *Error {
	return newErr(RedefinedVar, fmt.Sprintf("variable %q is redefined", name), first, second)
}

func NewRedefinedFun(name string, first, second span.Span) *Error {
	return newErr(RedefinedFun, fmt.Sprintf("function %q is redefined", name), first, second)
}

func NewImmutableAssign(name string, decl, use span.Span) *Error {
	return newErr(ImmutableAssign, fmt.Sprintf("cannot assign to immutable variable %q", name), decl, use)
}

func NewCapturingFromDynamicScope(def, use span.Span) *Error {
	return newErr(CapturingFromDynamicScope,
		"cannot capture a variable from an enclosing function's dynamic scope", def, use)
}

func NewNoMatchingBuiltinSignature(name string, candidates []string, argTypes []string, at span.Span) *Error {
	return newErr(NoMatchingBuiltinSignature,
		fmt.Sprintf("no matching signature for %q(%s); candidates: %s",
			name, joinComma(argTypes), joinComma(candidates)), at)
}

func NewExpectedNumber(at span.Span) *Error { return newErr(ExpectedNumber, "expected a number", at) }
func NewExpectedBool(at span.Span) *Error   { return newErr(ExpectedBool, "expected a bool", at) }
func NewExpectedValue(at span.Span) *Error  { return newErr(ExpectedValue, "expected a value", at) }
func NewExpectedInt(at span.Span) *Error    { return newErr(ExpectedInt, "expected an int", at) }
func NewExpectedStr(at span.Span) *Error    { return newErr(ExpectedStr, "expected a string", at) }

func NewInvalidAssignment(lhs, rhs span.Span) *Error {
	return newErr(InvalidAssignment, "invalid assignment target", lhs, rhs)
}

func NewInvalidBwOr(a, b span.Span) *Error {
	return newErr(InvalidBwOr, "`|` requires (int, int) or (bool, bool) operands", a, b)
}

func NewInvalidBwAnd(a, b span.Span) *Error {
	return newErr(InvalidBwAnd, "`&` requires (int, int) or (bool, bool) operands", a, b)
}

func NewTypeMismatch(expected, found string, at span.Span) *Error {
	return newErr(TypeMismatch, fmt.Sprintf("expected type %s, found %s", expected, found), at)
}


// --- Runtime errors ---

func NewAddOverflow(a, b int64, at span.Span) *Error {
	return newErr(AddOverflow, fmt.Sprintf("%s + %s overflows", humanize.Comma(a), humanize.Comma(b)), at)
}

func NewSubOverflow(a, b int64, at span.Span) *Error {
	return newErr(SubOverflow, fmt.Sprintf("%s - %s overflows", humanize.Comma(a), humanize.Comma(b)), at)
}

func NewMulOverflow(a, b int64, at span.Span) *Error {
	return newErr(MulOverflow, fmt.Sprintf("%s * %s overflows", humanize.Comma(a), humanize.Comma(b)), at)
}

func NewPowOverflow(base, exp int64, at span.Span) *Error {
	return newErr(PowOverflow, fmt.Sprintf("%s ** %s overflows", humanize.Comma(base), humanize.Comma(exp)), at)
}

func NewFactorialOverflow(n int64, at span.Span) *Error {
	return newErr(FactorialOverflow, fmt.Sprintf("%s! overflows", humanize.Comma(n)), at)
}

func NewDivideByZero(at span.Span) *Error {
	return newErr(DivideByZero, "division by zero", at)
}

func NewRemainderByZero(at span.Span) *Error {
	return newErr(RemainderByZero, "remainder by zero", at)
}

func NewNegativeFactorial(n int64, at span.Span) *Error {
	return newErr(NegativeFactorial, fmt.Sprintf("factorial of negative number %s", humanize.Comma(n)), at)
}

func NewFractionFactorial(at span.Span) *Error {
	return newErr(FractionFactorial, "factorial requires an int operand", at)
}

func NewNegativeNcr(r int64, at span.Span) *Error {
	return newErr(NegativeNcr, fmt.Sprintf("ncr: r must not be negative, found %s", humanize.Comma(r)), at)
}

func NewInvalidNcr(n, r int64, at span.Span) *Error {
	return newErr(InvalidNcr, fmt.Sprintf("ncr: n (%s) must be >= r (%s)", humanize.Comma(n), humanize.Comma(r)), at)
}

func NewFractionRemainder(at span.Span) *Error {
	return newErr(FractionRemainder, "remainder requires int operands", at)
}

func NewFractionGcd(at span.Span) *Error {
	return newErr(FractionGcd, "gcd requires int operands", at)
}

func NewFractionEuclidDiv(at span.Span) *Error {
	return newErr(FractionEuclidDiv, "integer division requires int operands", at)
}

func NewFractionNcr(at span.Span) *Error {
	return newErr(FractionNcr, "ncr requires int operands", at)
}

func NewInvalidClampBounds(min, max span.Span) *Error {
	return newErr(InvalidClampBounds, "clamp: min must not exceed max", min, max)
}

func NewAssertFailed(at span.Span) *Error {
	return newErr(AssertFailed, "assertion failed", at)
}

func NewAssertEqFailed(a, b string, aSpan, bSpan span.Span) *Error {
	return newErr(AssertEqFailed, fmt.Sprintf("assert_eq failed: %s != %s", a, b), aSpan, bSpan)
}

func NewUseOfUninitializedVar(at span.Span) *Error {
	return newErr(UseOfUninitializedVar, "use of uninitialized variable", at)
}

// --- Warnings ---

func NewConfusingCase(at span.Span) *Warning {
	return newWarn(WarnConfusingCase, "confusing case expression", at)
}

func NewSignFollowingAddition(at span.Span) *Warning {
	return newWarn(WarnSignFollowingAddition, "sign immediately following `+` is confusing", at)
}

func NewSignFollowingSubtraction(at span.Span) *Warning {
	return newWarn(WarnSignFollowingSubtraction, "sign immediately following `-` is confusing", at)
}

func NewMultipleSigns(at span.Span) *Warning {
	return newWarn(WarnMultipleSigns, "multiple consecutive signs are confusing", at)
}

func NewConfusingFunctionParentheses(at span.Span) *Warning {
	return newWarn(WarnConfusingFunctionParens, "space before function-call parentheses is confusing", at)
}

func NewConfusingSeparator(at span.Span) *Warning {
	return newWarn(WarnConfusingSeparator, "confusing separator", at)
}

func joinComma(xs []string) string {
	out := ""
	for i, x := range xs {
		if i > 0 {
			out += ", "
		}
		out += x
	}
	return out
}
