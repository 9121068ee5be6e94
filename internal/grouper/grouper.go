// Package grouper turns a flat token stream into a tree of Items: every
// bracketed region becomes a nested Group, and each Group's children are
// pre-split into statement segments (at `;`/newline) and, inside a
// function-call's parentheses, argument segments (at `,`).
package grouper

import (
	"github.com/funvibe/cods/internal/errors"
	"github.com/funvibe/cods/internal/span"
	"github.com/funvibe/cods/internal/token"
)

// Shape identifies which bracket kind formed a Group.
type Shape int

const (
	Round Shape = iota
	Square
	Curly
)

// Item is either a single Token leaf or a nested Group.
type Item struct {
	Tok   token.Token // valid when Group == nil
	Group *Group
}

// Group is a bracketed region: all Items between a matching open/close
// pair, with no further splitting at this stage beyond statement/arg
// segmentation (see Statements and Arguments).
type Group struct {
	Shape    Shape
	Open     span.Span
	Close    span.Span
	Children []Item
}

// Span returns the full span of the group including its delimiters.
func (g *Group) Span() span.Span { return g.Open.To(g.Close) }

// Statements splits Children into segments at `;` and newline tokens,
// dropping the separators themselves and empty segments. A newline
// immediately after a binary operator, or immediately before one (or
// before an `else`), continues the current statement instead of ending
// it.
func (g *Group) Statements() [][]Item {
	return splitStatements(g.Children)
}

// Arguments splits Children into segments at `,`, dropping the commas
// themselves and empty segments. Newlines inside an argument list are
// insignificant and are filtered out, so a call may span several lines.
func (g *Group) Arguments() [][]Item {
	segs := split(g.Children, func(t token.Token) bool {
		return t.Type == token.COMMA
	})
	out := segs[:0]
	for _, seg := range segs {
		kept := seg[:0]
		for _, it := range seg {
			if it.Group == nil && it.Tok.Type == token.NEWLINE {
				continue
			}
			kept = append(kept, it)
		}
		if len(kept) > 0 {
			out = append(out, kept)
		}
	}
	return out
}

// StatementsOf splits a flat top-level item list the same way
// (*Group).Statements splits a group's children. The checker uses this to
// segment the program's outermost item list, which is never itself
// wrapped in a Group.
func StatementsOf(items []Item) [][]Item {
	return splitStatements(items)
}

func splitStatements(items []Item) [][]Item {
	var segs [][]Item
	var cur []Item
	flush := func() {
		if len(cur) > 0 {
			segs = append(segs, cur)
			cur = nil
		}
	}
	for i, it := range items {
		if it.Group == nil && it.Tok.Type == token.SEMI {
			flush()
			continue
		}
		if it.Group == nil && it.Tok.Type == token.NEWLINE {
			if continuesBefore(cur) || continuesAfter(items[i+1:]) {
				continue
			}
			flush()
			continue
		}
		cur = append(cur, it)
	}
	flush()
	return segs
}

// continuesBefore reports whether the statement accumulated so far ends
// in a binary operator, meaning a newline here is a line break inside an
// expression rather than a statement terminator.
func continuesBefore(cur []Item) bool {
	if len(cur) == 0 {
		return false
	}
	last := cur[len(cur)-1]
	return last.Group == nil && token.IsBinaryOp(last.Tok.Type)
}

// continuesAfter reports whether the next non-newline item starts with a
// binary operator or an `else`, so the newline joins two halves of one
// statement.
func continuesAfter(rest []Item) bool {
	for _, it := range rest {
		if it.Group == nil && it.Tok.Type == token.NEWLINE {
			continue
		}
		return it.Group == nil && (token.IsBinaryOp(it.Tok.Type) || it.Tok.Type == token.ELSE)
	}
	return false
}

func split(items []Item, isSep func(token.Token) bool) [][]Item {
	var segs [][]Item
	var cur []Item
	for _, it := range items {
		if it.Group == nil && isSep(it.Tok) {
			if len(cur) > 0 {
				segs = append(segs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, it)
	}
	if len(cur) > 0 {
		segs = append(segs, cur)
	}
	return segs
}

type frame struct {
	shape    Shape
	open     span.Span
	children []Item
}

// GroupTokens takes a full token stream (as produced by lexer.Lex, EOF included)
// and builds its Item tree. Unbalanced-at-EOF is fatal; an unmatched close
// bracket is fatal; a mismatched bracket shape closes the group anyway and
// records a recoverable warning (attached to the outer item list via the
// returned warnings slice).
func GroupTokens(toks []token.Token) ([]Item, *errors.Error, []*errors.Warning) {
	var stack []frame
	var warnings []*errors.Warning
	top := frame{}

	openKind := func(t token.Type) (Shape, bool) {
		switch t {
		case token.LPAREN:
			return Round, true
		case token.LBRACKET:
			return Square, true
		case token.LBRACE:
			return Curly, true
		}
		return 0, false
	}
	closeKind := func(t token.Type) (Shape, bool) {
		switch t {
		case token.RPAREN:
			return Round, true
		case token.RBRACKET:
			return Square, true
		case token.RBRACE:
			return Curly, true
		}
		return 0, false
	}

	for _, t := range toks {
		if t.Type == token.EOF {
			break
		}
		if shape, ok := openKind(t.Type); ok {
			stack = append(stack, top)
			top = frame{shape: shape, open: t.Span}
			continue
		}
		if shape, ok := closeKind(t.Type); ok {
			if len(stack) == 0 {
				return nil, errors.NewUnexpectedParenthesis(t.Span), warnings
			}
			if shape != top.shape {
				warnings = append(warnings, errors.NewMismatchedParentheses(top.open, t.Span))
			}
			g := &Group{Shape: top.shape, Open: top.open, Close: t.Span, Children: top.children}
			top = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			top.children = append(top.children, Item{Group: g})
			continue
		}
		top.children = append(top.children, Item{Tok: t})
	}

	if len(stack) > 0 {
		return nil, errors.NewMissingClosingParenthesis(top.open), warnings
	}
	return top.children, nil, warnings
}
