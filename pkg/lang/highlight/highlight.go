// File: highlight.go
// Title: Robo Syntax Highlighting
// Description: A chroma lexer for Robo source and helpers that render
//              source text and diagnostic snippets for terminals.
// Author: Mike Stoffels
// Version: v0.1.0
// Created: 2025-02-13
// Modified: 2025-02-13
//
// Change History:
// - 2025-02-13 v0.1.0: Initial chroma lexer and snippet rendering

package highlight

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/msto63/robolang/pkg/lang/diag"
)

// Lexer is the chroma lexer for Robo, registered under the names "robo"
// and "robolang".
var Lexer = lexers.Register(chroma.MustNewLexer(
	&chroma.Config{
		Name:      "Robo",
		Aliases:   []string{"robo", "robolang"},
		Filenames: []string{"*.robo"},
		MimeTypes: []string{"text/x-robo"},
	},
	rules,
))

func rules() chroma.Rules {
	return chroma.Rules{
		"root": {
			{Pattern: `\s+`, Type: chroma.TextWhitespace},
			{Pattern: `(function)(\s+)([A-Za-z_]\w*)`, Type: chroma.ByGroups(chroma.KeywordDeclaration, chroma.TextWhitespace, chroma.NameFunction)},
			{Pattern: `(function)\b`, Type: chroma.KeywordDeclaration},
			{Pattern: `(if|else|while|repeat)\b`, Type: chroma.Keyword},
			{Pattern: `[A-Za-z_]\w*(?=\s*\()`, Type: chroma.NameFunction},
			{Pattern: `[A-Za-z_]\w*`, Type: chroma.Name},
			{Pattern: `[0-9]+`, Type: chroma.LiteralNumberInteger},
			{Pattern: `[(){};]`, Type: chroma.Punctuation},
			{Pattern: `.`, Type: chroma.Error},
		},
	}
}

// Options selects the chroma formatter and style
type Options struct {
	// Formatter is a chroma formatter name such as "terminal256",
	// "terminal16m" or "noop"
	Formatter string
	// Style is a chroma style name such as "monokai"
	Style string
}

// DefaultOptions renders with 256 colors in the monokai style
func DefaultOptions() Options {
	return Options{Formatter: "terminal256", Style: "monokai"}
}

// Render writes source to w with syntax colors
func Render(w io.Writer, source string, opts Options) error {
	iterator, err := Lexer.Tokenise(nil, source)
	if err != nil {
		return fmt.Errorf("tokenise: %w", err)
	}
	return formatters.Get(opts.Formatter).Format(w, styles.Get(opts.Style), iterator)
}

// RenderString is Render into a string. Rendering errors fall back to the
// plain source.
func RenderString(source string, opts Options) string {
	var b strings.Builder
	if err := Render(&b, source, opts); err != nil {
		return source
	}
	return b.String()
}

// Snippet renders the lines around r with a gutter of 1-based line numbers
// and a caret line under the range. context is the number of lines shown
// before and after the range. When color is set, source lines are syntax
// highlighted.
func Snippet(source string, r diag.Range, context int, color bool, opts Options) string {
	lines := strings.Split(source, "\n")
	if len(lines) == 0 {
		return ""
	}

	first := clamp(r.Start.Line-context, 0, len(lines)-1)
	last := clamp(r.Start.Line+context, 0, len(lines)-1)
	width := len(fmt.Sprint(last + 1))

	var b strings.Builder
	for i := first; i <= last; i++ {
		line := strings.TrimRight(lines[i], "\r")
		text := line
		if color {
			text = strings.TrimRight(RenderString(line, opts), "\n")
		}
		fmt.Fprintf(&b, "%*d | %s\n", width, i+1, text)

		if i == r.Start.Line {
			start := clamp(r.Start.Character, 0, len(line))
			end := len(line)
			if r.End.Line == r.Start.Line {
				end = clamp(r.End.Character, start, len(line))
			}
			carets := end - start
			if carets < 1 {
				carets = 1
			}
			fmt.Fprintf(&b, "%*s | %s%s\n", width, "", caretIndent(line[:start]), strings.Repeat("^", carets))
		}
	}
	return b.String()
}

// caretIndent keeps tabs so the caret lines up with the source line
func caretIndent(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			b.WriteRune('\t')
		} else {
			b.WriteRune(' ')
		}
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
