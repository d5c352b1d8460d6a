package diag

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestRangeContains(t *testing.T) {
	r := Range{Start: Position{Line: 1, Character: 4}, End: Position{Line: 2, Character: 2}}

	tests := []struct {
		pos      Position
		expected bool
	}{
		{Position{1, 3}, false},
		{Position{1, 4}, true},
		{Position{1, 80}, true},
		{Position{2, 0}, true},
		{Position{2, 1}, true},
		{Position{2, 2}, false},
		{Position{0, 5}, false},
		{Position{3, 0}, false},
	}

	for _, tt := range tests {
		if got := r.Contains(tt.pos); got != tt.expected {
			t.Errorf("Contains(%v): expected %v, got %v", tt.pos, tt.expected, got)
		}
	}
}

func TestRangeHelpers(t *testing.T) {
	if got := PointRange(2, 5); got.End.Character != 6 || got.End.Line != 2 {
		t.Errorf("PointRange: unexpected %v", got)
	}
	if got := SpanRange(0, 3, 4); got.End.Character != 7 {
		t.Errorf("SpanRange: expected end 7, got %v", got)
	}
	if got := SpanRange(0, 3, 0); got != PointRange(0, 3) {
		t.Errorf("SpanRange: zero width should widen to one character, got %v", got)
	}

	a := SpanRange(1, 2, 3)
	b := SpanRange(0, 8, 1)
	c := Cover(a, b)
	if c.Start != (Position{0, 8}) || c.End != (Position{1, 5}) {
		t.Errorf("Cover: unexpected %v", c)
	}
	if Cover(b, a) != c {
		t.Errorf("Cover should be symmetric")
	}
}

func TestRangeString(t *testing.T) {
	if got := SpanRange(0, 13, 1).String(); got != "1:14-1:15" {
		t.Errorf("Expected 1:14-1:15, got %s", got)
	}
}

func TestDiagnosticError(t *testing.T) {
	d := New(CodeExpectedToken, SpanRange(0, 22, 1), "Expected %s", ";")

	if d.Severity != SeverityError {
		t.Errorf("Expected error severity, got %s", d.Severity)
	}
	if d.Error() != "1:23-1:24: Expected ; (ExpectedToken)" {
		t.Errorf("Unexpected Error() %q", d.Error())
	}

	e := d.Expecting(";")
	if d.Expected != "" {
		t.Error("Expecting must not modify the receiver")
	}
	if e.Expected != ";" {
		t.Errorf("Expected %q, got %q", ";", e.Expected)
	}
}

func TestAs(t *testing.T) {
	d := New(CodeUnexpectedCharacter, PointRange(0, 0), "Unexpected character '%c'", '@')

	tests := []struct {
		name string
		err  error
		ok   bool
	}{
		{"direct", d, true},
		{"wrapped", fmt.Errorf("validate: %w", d), true},
		{"plain error", errors.New("x"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		got, ok := As(tt.err)
		if ok != tt.ok {
			t.Errorf("%s: expected ok=%v, got %v", tt.name, tt.ok, ok)
		}
		if ok && got != d {
			t.Errorf("%s: expected the original diagnostic", tt.name)
		}
	}
}

func TestDiagnosticJSON(t *testing.T) {
	d := New(CodeExpectedClosingBrace, SpanRange(3, 1, 1), "Expected }").Expecting("}")

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	expected := `{"code":"ExpectedClosingBrace","message":"Expected }","severity":1,` +
		`"range":{"start":{"line":3,"character":1},"end":{"line":3,"character":2}},"expected":"}"}`
	if string(data) != expected {
		t.Errorf("Expected %s, got %s", expected, data)
	}
}

func TestCodeIsLexical(t *testing.T) {
	lexical := map[Code]bool{
		CodeUnexpectedCharacter:  true,
		CodeInvalidNumber:        true,
		CodeUnexpectedEndOfInput: false,
		CodeExpectedToken:        false,
		CodeExpectedClosingBrace: false,
	}
	for code, want := range lexical {
		if code.IsLexical() != want {
			t.Errorf("%s.IsLexical(): expected %v", code, want)
		}
	}
}
