// File: diag.go
// Title: Diagnostic and Position Model
// Description: Shared value types used by the lexer and the parser to report
//              a single located failure: position, range, severity, code and
//              message. Ranges are half-open and use 0-based line/character.
// Author: Mike Stoffels
// Version: v0.1.0
// Created: 2025-02-03
// Modified: 2025-02-03
//
// Change History:
// - 2025-02-03 v0.1.0: Initial diagnostic model

package diag

import (
	"errors"
	"fmt"
)

// Position is a 0-based line/character location in a document
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open [Start, End) span of a document
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether p lies inside the range
func (r Range) Contains(p Position) bool {
	if p.Line < r.Start.Line || p.Line > r.End.Line {
		return false
	}
	if p.Line == r.Start.Line && p.Character < r.Start.Character {
		return false
	}
	if p.Line == r.End.Line && p.Character >= r.End.Character {
		return false
	}
	return true
}

// String renders the range 1-based, the way editors and compilers print it
func (r Range) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", r.Start.Line+1, r.Start.Character+1, r.End.Line+1, r.End.Character+1)
}

// Severity mirrors the LSP DiagnosticSeverity values
type Severity int

const (
	SeverityError       Severity = 1
	SeverityWarning     Severity = 2
	SeverityInformation Severity = 3
	SeverityHint        Severity = 4
)

// String returns the lowercase severity name
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "information"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// Code classifies a diagnostic
type Code string

const (
	// Lexical
	CodeUnexpectedCharacter  Code = "UnexpectedCharacter"
	CodeUnexpectedEndOfInput Code = "UnexpectedEndOfInput"
	CodeInvalidNumber        Code = "InvalidNumber"

	// Syntactic
	CodeExpectedToken        Code = "ExpectedToken"
	CodeExpectedClosingBrace Code = "ExpectedClosingBrace"
)

// String returns the code name
func (c Code) String() string {
	return string(c)
}

// IsLexical reports whether the code is produced by the tokenizer
func (c Code) IsLexical() bool {
	switch c {
	case CodeUnexpectedCharacter, CodeInvalidNumber:
		return true
	default:
		return false
	}
}

// Diagnostic is the single located failure of a validation pass.
// It implements error so that the lexer and parser can return it through the
// usual (value, error) pair.
type Diagnostic struct {
	Code     Code     `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Range    Range    `json:"range"`

	// Expected names the token the parser was looking for (ExpectedToken and
	// UnexpectedEndOfInput raised by the parser); empty otherwise.
	Expected string `json:"expected,omitempty"`
}

// New creates an error-severity diagnostic
func New(code Code, r Range, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityError,
		Range:    r,
	}
}

// Expecting returns a copy of d naming the expected token
func (d *Diagnostic) Expecting(expected string) *Diagnostic {
	c := *d
	c.Expected = expected
	return &c
}

// Error implements the error interface
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s (%s)", d.Range, d.Message, d.Code)
}

// As extracts a diagnostic from err. The second result is false when err is
// nil or carries no diagnostic.
func As(err error) (*Diagnostic, bool) {
	var d *Diagnostic
	if errors.As(err, &d) && d != nil {
		return d, true
	}
	return nil, false
}

// PointRange returns the range of a single character at line/col
func PointRange(line, col int) Range {
	return Range{
		Start: Position{Line: line, Character: col},
		End:   Position{Line: line, Character: col + 1},
	}
}

// SpanRange returns the range of width characters starting at line/col
func SpanRange(line, col, width int) Range {
	if width < 1 {
		width = 1
	}
	return Range{
		Start: Position{Line: line, Character: col},
		End:   Position{Line: line, Character: col + width},
	}
}

// Cover returns the smallest range containing both a and b
func Cover(a, b Range) Range {
	r := a
	if before(b.Start, r.Start) {
		r.Start = b.Start
	}
	if before(r.End, b.End) {
		r.End = b.End
	}
	return r
}

func before(a, b Position) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Character < b.Character)
}
