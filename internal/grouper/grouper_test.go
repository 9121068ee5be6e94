package grouper_test

import (
	"testing"

	"github.com/funvibe/cods/internal/grouper"
	"github.com/funvibe/cods/internal/lexer"
)

func group(t *testing.T, src string) ([]grouper.Item, *grouper.Group) {
	t.Helper()
	toks, lexErr, _ := lexer.Lex(src)
	if lexErr != nil {
		t.Fatalf("Lex(%q) failed: %s", src, lexErr)
	}
	items, groupErr, _ := grouper.GroupTokens(toks)
	if groupErr != nil {
		t.Fatalf("Group(%q) failed: %s", src, groupErr)
	}
	var g *grouper.Group
	for _, it := range items {
		if it.Group != nil {
			g = it.Group
			break
		}
	}
	return items, g
}

func TestGroupNestsBrackets(t *testing.T) {
	_, g := group(t, "f(1, (2 + 3))")
	if g == nil {
		t.Fatalf("expected a top-level group for the call parentheses")
	}
	if g.Shape != grouper.Round {
		t.Fatalf("outer group shape = %v, want Round", g.Shape)
	}
	args := g.Arguments()
	if len(args) != 2 {
		t.Fatalf("Arguments() = %d segments, want 2", len(args))
	}
}

func TestGroupStatementsSplitsOnNewlineAndSemi(t *testing.T) {
	toks, err, _ := lexer.Lex("{ a\nb; c }")
	if err != nil {
		t.Fatalf("unexpected lex error: %s", err)
	}
	items, groupErr, _ := grouper.GroupTokens(toks)
	if groupErr != nil {
		t.Fatalf("unexpected group error: %s", groupErr)
	}
	var curly *grouper.Group
	for _, it := range items {
		if it.Group != nil && it.Group.Shape == grouper.Curly {
			curly = it.Group
		}
	}
	if curly == nil {
		t.Fatalf("expected a curly group")
	}
	segs := curly.Statements()
	if len(segs) != 3 {
		t.Fatalf("Statements() = %d segments, want 3 (a / b / c)", len(segs))
	}
}

func TestStatementsNewlineAroundOperatorContinues(t *testing.T) {
	toks, _, _ := lexer.Lex("1 +\n2\n3\n+ 4")
	items, err, _ := grouper.GroupTokens(toks)
	if err != nil {
		t.Fatalf("unexpected group error: %s", err)
	}
	segs := grouper.StatementsOf(items)
	// "1 +\n2" and "3\n+ 4" each join into one statement.
	if len(segs) != 2 {
		t.Fatalf("StatementsOf = %d segments, want 2", len(segs))
	}
	if len(segs[0]) != 3 || len(segs[1]) != 3 {
		t.Fatalf("each joined statement should hold 3 items, got %d and %d", len(segs[0]), len(segs[1]))
	}
}

func TestGroupMissingClosingParenthesisIsFatal(t *testing.T) {
	toks, _, _ := lexer.Lex("(1 + 2")
	_, err, _ := grouper.GroupTokens(toks)
	if err == nil {
		t.Fatalf("expected MissingClosingParenthesis for an unbalanced open paren")
	}
}

func TestGroupUnexpectedCloseIsFatal(t *testing.T) {
	toks, _, _ := lexer.Lex("1 + 2)")
	_, err, _ := grouper.GroupTokens(toks)
	if err == nil {
		t.Fatalf("expected UnexpectedParenthesis for a stray close paren")
	}
}

func TestGroupMismatchedShapeWarnsButCloses(t *testing.T) {
	toks, _, _ := lexer.Lex("(1 + 2]")
	items, err, warns := grouper.GroupTokens(toks)
	if err != nil {
		t.Fatalf("a mismatched-shape close should still close the group, got fatal error: %s", err)
	}
	if len(warns) == 0 {
		t.Fatalf("expected a MismatchedParentheses warning")
	}
	if len(items) != 1 || items[0].Group == nil {
		t.Fatalf("expected the group to have closed despite the shape mismatch")
	}
}
