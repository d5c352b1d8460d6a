package highlight

import (
	"strings"
	"testing"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/msto63/robolang/pkg/lang/diag"
)

func TestLexerRegistered(t *testing.T) {
	for _, name := range []string{"robo", "robolang"} {
		if lexers.Get(name) == nil {
			t.Errorf("Expected lexer registered as %q", name)
		}
	}
	if lexers.Match("path/to/maze.robo") == nil {
		t.Error("Expected lexer to match *.robo files")
	}
}

func TestLexerTokenTypes(t *testing.T) {
	iterator, err := Lexer.Tokenise(nil, "function main(){ if(isBlocked()){ repeat(3){ move(); } } x }")
	if err != nil {
		t.Fatalf("Tokenise failed: %v", err)
	}

	types := map[string]chroma.TokenType{}
	for _, tok := range iterator.Tokens() {
		if strings.TrimSpace(tok.Value) == "" {
			continue
		}
		types[tok.Value] = tok.Type
	}

	expected := map[string]chroma.TokenType{
		"function":  chroma.KeywordDeclaration,
		"main":      chroma.NameFunction,
		"if":        chroma.Keyword,
		"repeat":    chroma.Keyword,
		"isBlocked": chroma.NameFunction,
		"move":      chroma.NameFunction,
		"3":         chroma.LiteralNumberInteger,
		"x":         chroma.Name,
		";":         chroma.Punctuation,
	}
	for value, want := range expected {
		if got := types[value]; got != want {
			t.Errorf("Token %q: expected %s, got %s", value, want, got)
		}
	}
}

func TestRenderNoop(t *testing.T) {
	src := "function main(){move();}\n"
	got := RenderString(src, Options{Formatter: "noop", Style: "monokai"})
	if got != src {
		t.Errorf("Expected noop formatter to reproduce the source, got %q", got)
	}
}

func TestSnippet(t *testing.T) {
	src := "function main() {\n  move();\n  turnLeft()\n}"
	r := diag.SpanRange(3, 0, 1)

	got := Snippet(src, r, 1, false, DefaultOptions())
	expected := "3 |   turnLeft()\n" +
		"4 | }\n" +
		"  | ^\n"
	if got != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, got)
	}
}

func TestSnippetCaretWidth(t *testing.T) {
	src := "function main(){\n\trepeat(x){}\n}"
	r := diag.SpanRange(1, 8, 1)

	got := Snippet(src, r, 0, false, DefaultOptions())
	expected := "2 | \trepeat(x){}\n" +
		"  | \t       ^\n"
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestSnippetOutOfRange(t *testing.T) {
	got := Snippet("move", diag.SpanRange(5, 10, 2), 0, false, DefaultOptions())
	if !strings.HasPrefix(got, "1 | move\n") {
		t.Errorf("Expected clamped snippet, got %q", got)
	}
}
