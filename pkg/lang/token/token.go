// File: token.go
// Title: Robo Token Definitions
// Description: Token kinds, the token value type and the keyword table shared
//              by the lexer and the parser. The parser depends on this shape
//              only, never on the lexer itself.
// Author: Mike Stoffels
// Version: v0.1.0
// Created: 2025-02-03
// Modified: 2025-02-03
//
// Change History:
// - 2025-02-03 v0.1.0: Initial token definitions

package token

import (
	"fmt"

	"github.com/msto63/robolang/pkg/lang/diag"
)

// Kind represents the type of a lexical token
type Kind int

const (
	// Keywords
	Function Kind = iota
	While
	Repeat
	If
	Else

	// Identifiers and literals
	Identifier // move, turnLeft, is_blocked
	Number     // 3, 42

	// Delimiters
	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
	Semicolon // ;
)

// String returns the kind name used in diagnostics
func (k Kind) String() string {
	switch k {
	case Function:
		return "function"
	case While:
		return "while"
	case Repeat:
		return "repeat"
	case If:
		return "if"
	case Else:
		return "else"
	case Identifier:
		return "identifier"
	case Number:
		return "number"
	case LParen:
		return "("
	case RParen:
		return ")"
	case LBrace:
		return "{"
	case RBrace:
		return "}"
	case Semicolon:
		return ";"
	default:
		return "unknown"
	}
}

// IsKeyword reports whether the kind is one of the reserved words
func (k Kind) IsKeyword() bool {
	return k >= Function && k <= Else
}

// Token is a lexical token with its source span
type Token struct {
	Kind   Kind
	Text   string // identifier text or number digits; empty for delimiters
	Value  uint64 // parsed value, Number only
	Offset int    // byte offset in the source
	Length int    // span width in characters
	Line   int    // 0-based
	Column int    // 0-based
}

// String returns a short representation of the token
func (t Token) String() string {
	switch t.Kind {
	case Identifier, Number:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Text)
	default:
		return t.Kind.String()
	}
}

// End returns the byte offset just past the token
func (t Token) End() int {
	return t.Offset + t.Length
}

// Range returns the diagnostic range covered by the token. Tokens never
// span a line break, so the end column is Column+Length.
func (t Token) Range() diag.Range {
	return diag.SpanRange(t.Line, t.Column, t.Length)
}

// Span returns the range from the start of first to the end of last
func Span(first, last Token) diag.Range {
	return diag.Range{
		Start: first.Range().Start,
		End:   last.Range().End,
	}
}

var keywords = map[string]Kind{
	"function": Function,
	"while":    While,
	"repeat":   Repeat,
	"if":       If,
	"else":     Else,
}

// Lookup returns the keyword kind for word, or Identifier
func Lookup(word string) Kind {
	if kind, ok := keywords[word]; ok {
		return kind
	}
	return Identifier
}

// Keywords returns the reserved words in declaration order
func Keywords() []string {
	return []string{"function", "while", "repeat", "if", "else"}
}
