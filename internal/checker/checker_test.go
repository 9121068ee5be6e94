package checker_test

import (
	"testing"

	"github.com/funvibe/cods/internal/checker"
	"github.com/funvibe/cods/internal/errors"
	"github.com/funvibe/cods/internal/grouper"
	"github.com/funvibe/cods/internal/lexer"
)

func check(t *testing.T, src string) ([]*errors.Error, []*errors.Warning) {
	t.Helper()
	toks, lexErr, _ := lexer.Lex(src)
	if lexErr != nil {
		t.Fatalf("Lex(%q) failed: %s", src, lexErr)
	}
	items, groupErr, _ := grouper.GroupTokens(toks)
	if groupErr != nil {
		t.Fatalf("Group(%q) failed: %s", src, groupErr)
	}
	_, errs, warns := checker.Check(items)
	return errs, warns
}

func hasKind(errs []*errors.Error, k errors.Kind) bool {
	for _, e := range errs {
		if e.Kind == k {
			return true
		}
	}
	return false
}

func TestCheckValDecl(t *testing.T) {
	errs, _ := check(t, "val x = 2\nx")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestCheckImmutableAssignFails(t *testing.T) {
	// Reassigning a `val` is an ImmutableAssign error.
	errs, _ := check(t, "val x = 2\nx = 4")
	if !hasKind(errs, errors.ImmutableAssign) {
		t.Fatalf("expected ImmutableAssign, got %v", errs)
	}
}

func TestCheckVarReassignOk(t *testing.T) {
	errs, _ := check(t, "var x = 2\nx = 4")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors reassigning a var: %v", errs)
	}
}

func TestCheckRedefinedFun(t *testing.T) {
	// A function redeclared in the same block.
	errs, _ := check(t, "fun a(i: int) { }\nfun a() { }")
	if !hasKind(errs, errors.RedefinedFun) {
		t.Fatalf("expected RedefinedFun, got %v", errs)
	}
}

func TestCheckForwardAndMutualRecursion(t *testing.T) {
	errs, _ := check(t, "fun isEven(n: int) -> bool { if n == 0 { true } else { isOdd(n - 1) } }\nfun isOdd(n: int) -> bool { if n == 0 { false } else { isEven(n - 1) } }")
	if len(errs) != 0 {
		t.Fatalf("mutual recursion should check cleanly, got %v", errs)
	}
}

func TestCheckCapturingFromDynamicScope(t *testing.T) {
	// Reading a local of an *enclosing function* from a nested function
	// body is rejected, since that local's frame is not guaranteed live
	// relative to the nested function's own frame.
	errs, _ := check(t, "fun outer() { val a = 3\nfun inner() -> int { a } }")
	if !hasKind(errs, errors.CapturingFromDynamicScope) {
		t.Fatalf("expected CapturingFromDynamicScope, got %v", errs)
	}
}

func TestCheckGlobalMutationFromNestedFunctionIsLegal(t *testing.T) {
	// Globals live in the outermost frame regardless of how many function
	// barriers separate a reference from them, so this is NOT a capture
	// even though it crosses a function boundary.
	errs, _ := check(t, "var x = 1\nfun f() { x = 2 }")
	if len(errs) != 0 {
		t.Fatalf("mutating a global from a top-level function should not error, got %v", errs)
	}
}

func TestCheckUndefinedVar(t *testing.T) {
	errs, _ := check(t, "y = 1")
	if !hasKind(errs, errors.UndefinedVar) {
		t.Fatalf("expected UndefinedVar, got %v", errs)
	}
}

func TestCheckRedefinedVarInSameBlock(t *testing.T) {
	errs, _ := check(t, "val x = 1\nval x = 2")
	if !hasKind(errs, errors.RedefinedVar) {
		t.Fatalf("expected RedefinedVar, got %v", errs)
	}
}

func TestCheckTypeMismatchOnDecl(t *testing.T) {
	errs, _ := check(t, "val x: int = \"hi\"")
	if !hasKind(errs, errors.TypeMismatch) {
		t.Fatalf("expected TypeMismatch, got %v", errs)
	}
}

func TestCheckReturnTypeMismatch(t *testing.T) {
	errs, _ := check(t, "fun f() -> int { return true }")
	if !hasKind(errs, errors.TypeMismatch) {
		t.Fatalf("expected TypeMismatch returning bool from an int function, got %v", errs)
	}
}

func TestCheckBodyResultTypeMismatch(t *testing.T) {
	// A body that falls off its end must produce the declared return type.
	errs, _ := check(t, "fun f() -> int { true }")
	if !hasKind(errs, errors.TypeMismatch) {
		t.Fatalf("expected TypeMismatch for a bool-valued int function body, got %v", errs)
	}
}

func TestCheckIntBodyWidensIntoFloatReturn(t *testing.T) {
	errs, _ := check(t, "fun f() -> float { 2 }")
	if len(errs) != 0 {
		t.Fatalf("an int body should widen into a float return, got %v", errs)
	}
}

func TestCheckNonBoolConditionRejected(t *testing.T) {
	errs, _ := check(t, "if 1 { 2 }")
	if !hasKind(errs, errors.ExpectedBool) {
		t.Fatalf("expected ExpectedBool for a non-bool if condition, got %v", errs)
	}

	errs2, _ := check(t, "while 1 { 2 }")
	if !hasKind(errs2, errors.ExpectedBool) {
		t.Fatalf("expected ExpectedBool for a non-bool while condition, got %v", errs2)
	}
}

func TestCheckFunCallArity(t *testing.T) {
	errs, _ := check(t, "fun f(a: int, b: int) { }\nf(1)")
	if !hasKind(errs, errors.MissingFunctionArguments) {
		t.Fatalf("expected MissingFunctionArguments, got %v", errs)
	}

	errs2, _ := check(t, "fun f(a: int) { }\nf(1, 2)")
	if !hasKind(errs2, errors.UnexpectedFunctionArguments) {
		t.Fatalf("expected UnexpectedFunctionArguments, got %v", errs2)
	}
}

func TestCheckEqualityRequiresComparableTypes(t *testing.T) {
	errs, _ := check(t, `1 == "one"`)
	if !hasKind(errs, errors.TypeMismatch) {
		t.Fatalf("expected TypeMismatch comparing int to str, got %v", errs)
	}

	errs2, _ := check(t, "1 == 1.0")
	if len(errs2) != 0 {
		t.Fatalf("numeric cross-type equality should check cleanly, got %v", errs2)
	}
}

func TestCheckShadowingInNestedBlockIsFine(t *testing.T) {
	errs, _ := check(t, "val x = 1\n{ val x = 2\nx }")
	if len(errs) != 0 {
		t.Fatalf("shadowing in a nested block should not error, got %v", errs)
	}
}
