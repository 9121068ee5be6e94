// Package lexer turns cods source text into a flat stream of positioned
// tokens. A single cursor (position/readPosition/ch) walks the input;
// two-char operators are recognized with one rune of lookahead, and
// every token carries a byte span.Span.
package lexer

import (
	"strconv"
	"unicode/utf8"

	"github.com/funvibe/cods/internal/errors"
	"github.com/funvibe/cods/internal/span"
	"github.com/funvibe/cods/internal/token"
)

// Lexer is a single-cursor scanner over UTF-8 source text.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           rune
	width        int

	warnings []*errors.Warning
}

// New creates a Lexer positioned at the start of input.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// Warnings returns recoverable diagnostics accumulated while lexing
// (invalid escape sequences).
func (l *Lexer) Warnings() []*errors.Warning { return l.warnings }

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.width = 0
		l.position = l.readPosition
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.width = w
	l.position = l.readPosition
	l.readPosition += w
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// Lex tokenizes the entire input, returning all tokens through EOF. Fatal
// lex errors abort immediately; recoverable ones (invalid escapes) are
// appended to Warnings and lexing continues.
func Lex(input string) ([]token.Token, *errors.Error, []*errors.Warning) {
	l := New(input)
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return toks, err, l.warnings
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks, nil, l.warnings
}

func (l *Lexer) simple(t token.Type) token.Token {
	start := l.position
	lexeme := string(l.ch)
	l.readChar()
	return token.Token{Type: t, Lexeme: lexeme, Literal: lexeme, Span: span.Of(start, start+len(lexeme))}
}

func (l *Lexer) two(t token.Type, lexeme string) token.Token {
	start := l.position
	l.readChar() // consume first (we're on it already, consumes second loop below)
	l.readChar()
	return token.Token{Type: t, Lexeme: lexeme, Literal: lexeme, Span: span.Of(start, start+len(lexeme))}
}

// NextToken scans and returns the next token.
func (l *Lexer) NextToken() (token.Token, *errors.Error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return token.Token{}, err
	}

	start := l.position

	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, Span: span.Pos(start)}, nil
	case '\n':
		tok := l.simple(token.NEWLINE)
		tok.Lexeme = "\\n"
		return tok, nil
	case '+':
		if l.peekChar() == '=' {
			return l.two(token.PLUS_ASSIGN, "+="), nil
		}
		return l.simple(token.PLUS), nil
	case '-', '−':
		if l.peekChar() == '>' {
			return l.two(token.ARROW, "->"), nil
		}
		if l.peekChar() == '=' {
			return l.two(token.MINUS_ASSIGN, "-="), nil
		}
		tok := l.simple(token.MINUS)
		tok.Lexeme, tok.Literal = "-", "-"
		return tok, nil
	case '*', '×':
		if l.peekChar() == '=' {
			return l.two(token.ASTERISK_ASSIGN, "*="), nil
		}
		tok := l.simple(token.ASTERISK)
		tok.Lexeme, tok.Literal = "*", "*"
		return tok, nil
	case '/', '÷':
		if l.peekChar() == '=' {
			return l.two(token.SLASH_ASSIGN, "/="), nil
		}
		tok := l.simple(token.SLASH)
		tok.Lexeme, tok.Literal = "/", "/"
		return tok, nil
	case '%':
		return l.simple(token.PERCENT), nil
	case '!':
		if l.peekChar() == '=' {
			return l.two(token.NOT_EQ, "!="), nil
		}
		return l.simple(token.BANG), nil
	case '=':
		if l.peekChar() == '=' {
			return l.two(token.EQ, "=="), nil
		}
		return l.simple(token.ASSIGN), nil
	case '<':
		if l.peekChar() == '=' {
			return l.two(token.LTE, "<="), nil
		}
		if l.peekChar() == '<' {
			return l.two(token.LSHIFT, "<<"), nil
		}
		return l.simple(token.LT), nil
	case '>':
		if l.peekChar() == '=' {
			return l.two(token.GTE, ">="), nil
		}
		if l.peekChar() == '>' {
			return l.two(token.RSHIFT, ">>"), nil
		}
		return l.simple(token.GT), nil
	case '&':
		if l.peekChar() == '&' {
			return l.two(token.AND, "&&"), nil
		}
		return l.simple(token.AMPERSAND), nil
	case '|':
		if l.peekChar() == '|' {
			return l.two(token.OR, "||"), nil
		}
		return l.simple(token.PIPE), nil
	case '^':
		return l.simple(token.CARET), nil
	case '.':
		if l.peekChar() == '.' {
			// lookahead past the second dot for an `=`
			save := *l
			l.readChar() // consume first dot, now on second
			if l.peekChar() == '=' {
				l.readChar() // consume second dot, now on '='
				l.readChar() // consume '='
				return token.Token{Type: token.DOT_DOT_EQ, Lexeme: "..=", Literal: "..=", Span: span.Of(start, l.position)}, nil
			}
			*l = save
			return l.two(token.DOT_DOT, ".."), nil
		}
		return l.simple(token.DOT), nil
	case '(':
		return l.simple(token.LPAREN), nil
	case ')':
		return l.simple(token.RPAREN), nil
	case '{':
		return l.simple(token.LBRACE), nil
	case '}':
		return l.simple(token.RBRACE), nil
	case '[':
		return l.simple(token.LBRACKET), nil
	case ']':
		return l.simple(token.RBRACKET), nil
	case ',':
		return l.simple(token.COMMA), nil
	case ';':
		return l.simple(token.SEMI), nil
	case ':':
		return l.simple(token.COLON), nil
	case '"':
		return l.readString()
	case '\'':
		return l.readCharLiteral()
	default:
		if isLetter(l.ch) {
			return l.readIdentifier(), nil
		}
		if isDigit(l.ch) {
			return l.readNumber()
		}
		ch := l.ch
		l.readChar()
		return token.Token{Type: token.ILLEGAL, Span: span.Of(start, l.position)}, errors.NewInvalidChar(ch, span.Of(start, l.position))
	}
}

func (l *Lexer) skipWhitespaceAndComments() *errors.Error {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
			l.readChar()
		}
		if l.ch == '/' && l.peekChar() == '/' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		if l.ch == '/' && l.peekChar() == '*' {
			start := l.position
			l.readChar()
			l.readChar()
			closed := false
			for l.ch != 0 {
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					closed = true
					break
				}
				l.readChar()
			}
			if !closed {
				return errors.NewUnterminatedBlockComment(span.Of(start, start+2))
			}
			continue
		}
		break
	}
	return nil
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch rune) bool { return '0' <= ch && ch <= '9' }

func (l *Lexer) readIdentifier() token.Token {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	lexeme := l.input[start:l.position]
	sp := span.Of(start, l.position)
	t := token.LookupIdent(lexeme)
	switch t {
	case token.TRUE:
		return token.Token{Type: token.TRUE, Lexeme: lexeme, Literal: true, Span: sp}
	case token.FALSE:
		return token.Token{Type: token.FALSE, Lexeme: lexeme, Literal: false, Span: sp}
	default:
		return token.Token{Type: t, Lexeme: lexeme, Literal: lexeme, Span: sp}
	}
}

func (l *Lexer) readNumber() (token.Token, *errors.Error) {
	start := l.position
	isFloat := false
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	lexeme := l.input[start:l.position]
	sp := span.Of(start, l.position)
	if isFloat {
		f, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			return token.Token{}, errors.NewInvalidNumberFormat(lexeme, sp)
		}
		return token.Token{Type: token.FLOAT, Lexeme: lexeme, Literal: f, Span: sp}, nil
	}
	i, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return token.Token{}, errors.NewInvalidNumberFormat(lexeme, sp)
	}
	return token.Token{Type: token.INT, Lexeme: lexeme, Literal: i, Span: sp}, nil
}

func (l *Lexer) readString() (token.Token, *errors.Error) {
	start := l.position
	l.readChar() // consume opening quote
	var sb []rune
	for {
		if l.ch == 0 {
			return token.Token{}, errors.NewMissingClosingQuote(span.Of(start, start+1))
		}
		if l.ch == '"' {
			l.readChar()
			break
		}
		if l.ch == '\\' {
			escStart := l.position
			l.readChar()
			if l.ch == '\n' {
				// line continuation: consume the newline and any following
				// ASCII whitespace
				l.readChar()
				for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
					l.readChar()
				}
				continue
			}
			switch l.ch {
			case 'n':
				sb = append(sb, '\n')
			case 'r':
				sb = append(sb, '\r')
			case 't':
				sb = append(sb, '\t')
			case '\\':
				sb = append(sb, '\\')
			case '"':
				sb = append(sb, '"')
			case '0':
				sb = append(sb, 0)
			default:
				l.warnings = append(l.warnings, errors.NewInvalidEscape(string(l.ch), span.Of(escStart, l.position+l.width)))
				sb = append(sb, '\\', l.ch)
			}
			l.readChar()
			continue
		}
		sb = append(sb, l.ch)
		l.readChar()
	}
	content := string(sb)
	return token.Token{Type: token.STRING, Lexeme: content, Literal: content, Span: span.Of(start, l.position)}, nil
}

func (l *Lexer) readCharLiteral() (token.Token, *errors.Error) {
	start := l.position
	l.readChar() // consume opening '
	var ch rune
	if l.ch == '\\' {
		l.readChar()
		switch l.ch {
		case 'n':
			ch = '\n'
		case 'r':
			ch = '\r'
		case 't':
			ch = '\t'
		case '\\':
			ch = '\\'
		case '\'':
			ch = '\''
		case '0':
			ch = 0
		default:
			ch = l.ch
		}
		l.readChar()
	} else {
		ch = l.ch
		l.readChar()
	}
	if l.ch != '\'' {
		return token.Token{}, errors.NewMissingClosingQuote(span.Of(start, start+1))
	}
	l.readChar()
	return token.Token{Type: token.CHAR, Lexeme: string(ch), Literal: ch, Span: span.Of(start, l.position)}, nil
}
