// Package lexer implements the tokenizer for the engine's SQL dialect.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/harrison/sqlengine/token"
)

// Lexer scans SQL source text into a stream of tokens. It is stateless
// between calls except for its scan position, and never touches the
// catalog: it has no notion of whether a table or column exists.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           rune
}

// New creates a Lexer positioned at the start of input.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// NextToken returns the next token in the input.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	pos := l.position
	var tok token.Token

	switch l.ch {
	case 0:
		tok = token.Token{Type: token.EOF, Literal: "", Pos: pos}
	case '=':
		tok = token.Token{Type: token.EQ, Literal: "=", Pos: pos}
		l.readChar()
	case '<':
		tok = token.Token{Type: token.LT, Literal: "<", Pos: pos}
		l.readChar()
	case '>':
		tok = token.Token{Type: token.GT, Literal: ">", Pos: pos}
		l.readChar()
	case ',':
		tok = token.Token{Type: token.COMMA, Literal: ",", Pos: pos}
		l.readChar()
	case '(':
		tok = token.Token{Type: token.LPAREN, Literal: "(", Pos: pos}
		l.readChar()
	case ')':
		tok = token.Token{Type: token.RPAREN, Literal: ")", Pos: pos}
		l.readChar()
	case ';':
		tok = token.Token{Type: token.SEMI, Literal: ";", Pos: pos}
		l.readChar()
	case '*':
		tok = token.Token{Type: token.STAR, Literal: "*", Pos: pos}
		l.readChar()
	case '\'':
		lit, ok := l.readString()
		if !ok {
			tok = token.Token{Type: token.ILLEGAL, Literal: lit, Pos: pos}
		} else {
			tok = token.Token{Type: token.STRING_LIT, Literal: lit, Pos: pos}
		}
	default:
		switch {
		case l.ch == '-' || unicode.IsDigit(l.ch):
			lit, isFloat := l.readNumber()
			if isFloat {
				tok = token.Token{Type: token.FLOAT_LIT, Literal: lit, Pos: pos}
			} else {
				tok = token.Token{Type: token.INT_LIT, Literal: lit, Pos: pos}
			}
		case isIdentStart(l.ch):
			lit := l.readIdentifier()
			upper := strings.ToUpper(lit)
			tok = token.Token{Type: token.LookupKeyword(upper), Literal: lit, Pos: pos}
		default:
			tok = token.Token{Type: token.ILLEGAL, Literal: string(l.ch), Pos: pos}
			l.readChar()
		}
	}

	return tok
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isIdentPart(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber reads -?\d+(\.\d+)? and reports whether a fractional part was
// present, matching §4.1's literal grammar exactly (no exponents).
func (l *Lexer) readNumber() (string, bool) {
	start := l.position
	if l.ch == '-' {
		l.readChar()
	}
	for unicode.IsDigit(l.ch) {
		l.readChar()
	}
	isFloat := false
	if l.ch == '.' && unicode.IsDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for unicode.IsDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.position], isFloat
}

// readString reads a single-quoted string literal. There are no escape
// sequences: a literal apostrophe cannot appear in the value, matching
// §4.1. Returns ok=false if the input ends before the closing quote.
func (l *Lexer) readString() (string, bool) {
	l.readChar() // consume opening '
	start := l.position
	for l.ch != '\'' {
		if l.ch == 0 {
			return l.input[start:l.position], false
		}
		l.readChar()
	}
	lit := l.input[start:l.position]
	l.readChar() // consume closing '
	return lit, true
}
