// ============================================================================
// robolang - Robot Control Language Tools
// ============================================================================
//
// Package:     lsp
// Description: Open document state and position conversion
// Author:      Mike Stoffels
// Created:     2025-02-18
// License:     MIT
// ============================================================================

package lsp

import (
	"strings"
	"unicode/utf8"

	"github.com/msto63/robolang/pkg/lang/diag"
)

// Document is the editor's copy of one open file. Diagnostics use byte
// columns; LSP positions count UTF-16 code units, so every position crossing
// the protocol boundary is converted against the current text.
type Document struct {
	URI     string
	Version int
	Text    string
}

// Apply applies content changes in order
func (d *Document) Apply(changes []TextDocumentContentChangeEvent) {
	for _, c := range changes {
		if c.Range == nil {
			d.Text = c.Text
			continue
		}
		start := d.offsetAt(c.Range.Start)
		end := d.offsetAt(c.Range.End)
		if end < start {
			start, end = end, start
		}
		d.Text = d.Text[:start] + c.Text + d.Text[end:]
	}
}

// line returns line n without its terminating line feed
func (d *Document) line(n int) (string, int, bool) {
	offset := 0
	for i := 0; i < n; i++ {
		nl := strings.IndexByte(d.Text[offset:], '\n')
		if nl < 0 {
			return "", len(d.Text), false
		}
		offset += nl + 1
	}
	rest := d.Text[offset:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return rest, offset, true
}

// offsetAt converts an LSP position to a byte offset, clamped to the text
func (d *Document) offsetAt(p Position) int {
	text, start, ok := d.line(p.Line)
	if !ok {
		return len(d.Text)
	}
	return start + byteColumn(text, p.Character)
}

// ToDiag converts an LSP position to a byte-column position
func (d *Document) ToDiag(p Position) diag.Position {
	text, _, ok := d.line(p.Line)
	if !ok {
		return diag.Position{Line: p.Line, Character: 0}
	}
	return diag.Position{Line: p.Line, Character: byteColumn(text, p.Character)}
}

// ToLSP converts a byte-column position to an LSP position. A column inside
// a multi-byte character moves to the end of that character.
func (d *Document) ToLSP(p diag.Position) Position {
	text, _, ok := d.line(p.Line)
	if !ok {
		return Position{Line: p.Line, Character: p.Character}
	}
	col := p.Character
	if col > len(text) {
		// past the end of the line: keep the overhang in code units
		return Position{Line: p.Line, Character: utf16Len(text) + col - len(text)}
	}
	for col < len(text) && !utf8.RuneStart(text[col]) {
		col++
	}
	return Position{Line: p.Line, Character: utf16Len(text[:col])}
}

// RangeToLSP converts a diagnostic range
func (d *Document) RangeToLSP(r diag.Range) Range {
	return Range{Start: d.ToLSP(r.Start), End: d.ToLSP(r.End)}
}

// byteColumn returns the byte offset of UTF-16 column units within line
func byteColumn(line string, units int) int {
	n := 0
	for i, r := range line {
		if n >= units {
			return i
		}
		n += utf16RuneLen(r)
	}
	return len(line)
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16RuneLen(r)
	}
	return n
}

// utf16RuneLen mirrors unicode/utf16.RuneLen (Go 1.23+) for older toolchains
func utf16RuneLen(r rune) int {
	switch {
	case 0 <= r && r < 0xd800, 0xe000 <= r && r < 0x10000:
		return 1
	case 0x10000 <= r && r <= utf8.MaxRune:
		return 2
	default:
		return -1
	}
}
