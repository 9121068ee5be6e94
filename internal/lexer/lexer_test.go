package lexer_test

import (
	"testing"

	"github.com/funvibe/cods/internal/lexer"
	"github.com/funvibe/cods/internal/token"
)

func kindsOf(t *testing.T, src string) []token.Type {
	t.Helper()
	toks, err, _ := lexer.Lex(src)
	if err != nil {
		t.Fatalf("Lex(%q) failed: %s", src, err)
	}
	kinds := make([]token.Type, 0, len(toks))
	for _, tok := range toks {
		kinds = append(kinds, tok.Type)
	}
	return kinds
}

func TestLexSimpleArithmetic(t *testing.T) {
	got := kindsOf(t, "1 + 2 * 3")
	want := []token.Type{token.INT, token.PLUS, token.INT, token.ASTERISK, token.INT, token.EOF}
	assertKinds(t, got, want)
}

func TestLexTwoCharOperators(t *testing.T) {
	got := kindsOf(t, "a == b != c <= d >= e += 1")
	want := []token.Type{
		token.IDENT, token.EQ, token.IDENT, token.NOT_EQ, token.IDENT,
		token.LTE, token.IDENT, token.GTE, token.IDENT, token.PLUS_ASSIGN, token.INT, token.EOF,
	}
	assertKinds(t, got, want)
}

func TestLexUnicodeOperatorSynonyms(t *testing.T) {
	// −, ×, ÷ are synonyms for -, *, /.
	got := kindsOf(t, "6 − 2 × 3 ÷ 1")
	want := []token.Type{
		token.INT, token.MINUS, token.INT, token.ASTERISK, token.INT, token.SLASH, token.INT, token.EOF,
	}
	assertKinds(t, got, want)
}

func TestLexKeywordsAndIdentifiers(t *testing.T) {
	got := kindsOf(t, "val x = 1\nvar y = 2\nif x { y } else { x }")
	want := []token.Type{
		token.VAL, token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.VAR, token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.IF, token.IDENT, token.LBRACE, token.IDENT, token.RBRACE,
		token.ELSE, token.LBRACE, token.IDENT, token.RBRACE, token.EOF,
	}
	assertKinds(t, got, want)
}

func TestLexFloatVsIntLiterals(t *testing.T) {
	toks, err, _ := lexer.Lex("3 3.5")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if toks[0].Type != token.INT || toks[0].Literal.(int64) != 3 {
		t.Fatalf("first literal should be Int(3), got %+v", toks[0])
	}
	if toks[1].Type != token.FLOAT || toks[1].Literal.(float64) != 3.5 {
		t.Fatalf("second literal should be Float(3.5), got %+v", toks[1])
	}
}

func TestLexStringEscapes(t *testing.T) {
	toks, err, warns := lexer.Lex(`"a\nb"`)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(warns) != 0 {
		t.Fatalf("valid escape should not warn, got %v", warns)
	}
	if toks[0].Type != token.STRING || toks[0].Literal.(string) != "a\nb" {
		t.Fatalf("string literal = %+v, want \"a\\nb\"", toks[0])
	}
}

func TestLexUnterminatedStringFails(t *testing.T) {
	_, err, _ := lexer.Lex(`"unterminated`)
	if err == nil {
		t.Fatalf("expected MissingClosingQuote error for unterminated string")
	}
}

func TestLexInvalidEscapeRecovers(t *testing.T) {
	toks, err, warns := lexer.Lex(`"a\qb"`)
	if err != nil {
		t.Fatalf("invalid escape should be recoverable, got fatal error: %s", err)
	}
	if len(warns) == 0 {
		t.Fatalf("expected a recorded warning for the invalid escape")
	}
	if toks[0].Type != token.STRING {
		t.Fatalf("lexing should still produce a string token after recovering")
	}
}

func TestLexUnterminatedBlockComment(t *testing.T) {
	_, err, _ := lexer.Lex("/* never closed")
	if err == nil {
		t.Fatalf("expected an error for an unterminated block comment")
	}
}

func TestLexLineCommentSkipped(t *testing.T) {
	got := kindsOf(t, "1 // trailing comment\n2")
	want := []token.Type{token.INT, token.NEWLINE, token.INT, token.EOF}
	assertKinds(t, got, want)
}

func TestLexInvalidChar(t *testing.T) {
	_, err, _ := lexer.Lex("1 @ 2")
	if err == nil {
		t.Fatalf("expected InvalidChar error for '@'")
	}
}

func TestLexNonASCIIIdentCharRejected(t *testing.T) {
	// Identifier characters are [0-9A-Za-z_] only; anything else fails at
	// the exact byte.
	_, err, _ := lexer.Lex("vär")
	if err == nil {
		t.Fatalf("expected InvalidChar error for a non-ASCII identifier character")
	}
}

func TestLexRangeOperators(t *testing.T) {
	got := kindsOf(t, "1..4 1..=4")
	want := []token.Type{
		token.INT, token.DOT_DOT, token.INT,
		token.INT, token.DOT_DOT_EQ, token.INT, token.EOF,
	}
	assertKinds(t, got, want)
}

func TestLexIsAndAsKeywords(t *testing.T) {
	got := kindsOf(t, "x is int\ny as float")
	want := []token.Type{
		token.IDENT, token.QUESTION_IS, token.IDENT, token.NEWLINE,
		token.IDENT, token.AS, token.IDENT, token.EOF,
	}
	assertKinds(t, got, want)
}

func assertKinds(t *testing.T, got, want []token.Type) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d\ngot:  %v\nwant: %v", len(got), len(want), got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("token[%d] = %v, want %v\ngot:  %v\nwant: %v", i, got[i], want[i], got, want)
		}
	}
}
