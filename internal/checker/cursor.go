package checker

import (
	"github.com/funvibe/cods/internal/grouper"
	"github.com/funvibe/cods/internal/span"
	"github.com/funvibe/cods/internal/token"
)

// cursor walks a flat []grouper.Item (one statement's worth of tokens and
// nested groups) left to right. It underlies both the statement dispatcher
// and the Pratt expression parser.
type cursor struct {
	items []grouper.Item
	pos   int
}

func newCursor(items []grouper.Item) *cursor { return &cursor{items: items} }

func (c *cursor) atEnd() bool { return c.pos >= len(c.items) }

// peek returns the current item without consuming it.
func (c *cursor) peek() (grouper.Item, bool) {
	if c.atEnd() {
		return grouper.Item{}, false
	}
	return c.items[c.pos], true
}

// peekN looks ahead n items (0 == peek).
func (c *cursor) peekN(n int) (grouper.Item, bool) {
	i := c.pos + n
	if i < 0 || i >= len(c.items) {
		return grouper.Item{}, false
	}
	return c.items[i], true
}

func (c *cursor) advance() (grouper.Item, bool) {
	it, ok := c.peek()
	if ok {
		c.pos++
	}
	return it, ok
}

// peekTok reports the token type of the current item, if it is a leaf
// token (not a nested group).
func (c *cursor) peekTok() (token.Token, bool) {
	it, ok := c.peek()
	if !ok || it.Group != nil {
		return token.Token{}, false
	}
	return it.Tok, true
}

func (c *cursor) peekIs(t token.Type) bool {
	tok, ok := c.peekTok()
	return ok && tok.Type == t
}

// matchTok consumes the current item if it is a leaf token of type t.
func (c *cursor) matchTok(t token.Type) (token.Token, bool) {
	tok, ok := c.peekTok()
	if !ok || tok.Type != t {
		return token.Token{}, false
	}
	c.advance()
	return tok, true
}

// lastSpan returns the span of the last consumed item, or the zero-value
// span (zero-width, at offset 0) if nothing has been consumed.
func (c *cursor) lastSpan() span.Span {
	if c.pos == 0 {
		return span.Span{}
	}
	return itemSpan(c.items[c.pos-1])
}

// endSpan returns a zero-width span just past the last item, used when
// reporting "missing X" at end of input.
func (c *cursor) endSpan() span.Span {
	if len(c.items) == 0 {
		return span.Span{}
	}
	return span.Pos(itemSpan(c.items[len(c.items)-1]).End)
}

func itemSpan(it grouper.Item) span.Span {
	if it.Group != nil {
		return it.Group.Span()
	}
	return it.Tok.Span
}
