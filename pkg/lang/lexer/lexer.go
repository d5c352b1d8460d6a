// File: lexer.go
// Title: Robo Lexical Analyzer (Tokenizer)
// Description: Converts Robo source text into a token sequence in a single
//              forward scan. Stops at the first offending character and
//              reports it as a located diagnostic; there is no
//              resynchronization.
// Author: Mike Stoffels
// Version: v0.1.0
// Created: 2025-02-03
// Modified: 2025-02-10
//
// Change History:
// - 2025-02-03 v0.1.0: Initial lexer implementation
// - 2025-02-10 v0.1.0: Numbers and identifiers may end the input

package lexer

import (
	"strconv"
	"unicode/utf8"

	"github.com/msto63/robolang/pkg/lang/diag"
	"github.com/msto63/robolang/pkg/lang/token"
)

// Lexer performs lexical analysis of Robo input
type Lexer struct {
	input  string
	pos    int // byte offset of the next unread character
	line   int // 0-based
	column int // 0-based, reset after every line feed
}

// New creates a lexer for the given input
func New(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize is a convenience function that scans the whole input
func Tokenize(input string) ([]token.Token, error) {
	return New(input).Tokenize()
}

// Tokenize scans the remaining input. On failure it returns a nil slice and
// a *diag.Diagnostic.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	tokens := make([]token.Token, 0, len(l.input)/2)

	for l.pos < len(l.input) {
		ch := l.input[l.pos]

		switch {
		case ch == '(':
			tokens = append(tokens, l.single(token.LParen))
		case ch == ')':
			tokens = append(tokens, l.single(token.RParen))
		case ch == '{':
			tokens = append(tokens, l.single(token.LBrace))
		case ch == '}':
			tokens = append(tokens, l.single(token.RBrace))
		case ch == ';':
			tokens = append(tokens, l.single(token.Semicolon))
		case ch == ' ' || ch == '\t' || ch == '\r':
			l.pos++
			l.column++
		case ch == '\n':
			l.pos++
			l.line++
			l.column = 0
		case isDigit(ch):
			tok, err := l.readNumber()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		case isIdentStart(ch):
			tokens = append(tokens, l.readWord())
		default:
			r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
			return nil, diag.New(diag.CodeUnexpectedCharacter, diag.PointRange(l.line, l.column),
				"Unexpected character '%c'", r)
		}
	}

	return tokens, nil
}

// single emits a one-character delimiter token
func (l *Lexer) single(kind token.Kind) token.Token {
	tok := token.Token{
		Kind:   kind,
		Offset: l.pos,
		Length: 1,
		Line:   l.line,
		Column: l.column,
	}
	l.pos++
	l.column++
	return tok
}

// readNumber reads a maximal run of ASCII digits
func (l *Lexer) readNumber() (token.Token, error) {
	start, col := l.pos, l.column
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	digits := l.input[start:l.pos]
	l.column += len(digits)

	tok := token.Token{
		Kind:   token.Number,
		Text:   digits,
		Offset: start,
		Length: len(digits),
		Line:   l.line,
		Column: col,
	}

	value, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return token.Token{}, diag.New(diag.CodeInvalidNumber, tok.Range(),
			"Number literal %s is out of range", digits)
	}
	tok.Value = value
	return tok, nil
}

// readWord reads an identifier or keyword
func (l *Lexer) readWord() token.Token {
	start, col := l.pos, l.column
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.pos++
	}
	word := l.input[start:l.pos]
	l.column += len(word)

	return token.Token{
		Kind:   token.Lookup(word),
		Text:   word,
		Offset: start,
		Length: len(word),
		Line:   l.line,
		Column: col,
	}
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

// IsValidIdentifier checks if s would scan as a single identifier token
func IsValidIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return token.Lookup(s) == token.Identifier
}
