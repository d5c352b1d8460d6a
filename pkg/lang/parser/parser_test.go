// File: parser_test.go
// Title: Robo Parser Unit Tests
// Description: Accepted programs, every failure path of the grammar and a
//              no-panic sweep over truncated and arbitrary token streams.
// Author: Mike Stoffels
// Version: v0.1.0
// Created: 2025-02-04
// Modified: 2025-02-11
//
// Change History:
// - 2025-02-04 v0.1.0: Initial parser test suite
// - 2025-02-11 v0.1.0: Bounds and strict top-level tests

package parser

import (
	"strings"
	"testing"

	"github.com/msto63/robolang/pkg/lang/ast"
	"github.com/msto63/robolang/pkg/lang/diag"
	"github.com/msto63/robolang/pkg/lang/lexer"
	"github.com/msto63/robolang/pkg/lang/token"
)

func parseSource(t *testing.T, src string, opts Options) (*ast.SourceFile, error) {
	t.Helper()
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize(%q) failed: %v", src, err)
	}
	return ParseWithOptions(tokens, opts)
}

func onlyStatement(t *testing.T, file *ast.SourceFile) ast.Statement {
	t.Helper()
	if len(file.Functions) != 1 {
		t.Fatalf("Expected 1 function, got %d", len(file.Functions))
	}
	stmts := file.Functions[0].Body.Statements
	if len(stmts) != 1 {
		t.Fatalf("Expected 1 statement, got %d", len(stmts))
	}
	return stmts[0]
}

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, file *ast.SourceFile)
	}{
		{
			name:  "Single call",
			input: "function main(){move();}",
			check: func(t *testing.T, file *ast.SourceFile) {
				if file.Functions[0].Name != "main" {
					t.Errorf("Expected function main, got %s", file.Functions[0].Name)
				}
				call, ok := onlyStatement(t, file).(*ast.CallStatement)
				if !ok {
					t.Fatalf("Expected CallStatement, got %T", onlyStatement(t, file))
				}
				if call.Function != "move" {
					t.Errorf("Expected call to move, got %s", call.Function)
				}
				if call.NameRange != diag.SpanRange(0, 16, 4) {
					t.Errorf("Expected name range 1:17-1:21, got %v", call.NameRange)
				}
			},
		},
		{
			name:  "If with else",
			input: "function main(){if(isBlocked()){turnLeft();}else{move();}}",
			check: func(t *testing.T, file *ast.SourceFile) {
				stmt, ok := onlyStatement(t, file).(*ast.IfStatement)
				if !ok {
					t.Fatalf("Expected IfStatement, got %T", onlyStatement(t, file))
				}
				if stmt.Condition != "isBlocked" {
					t.Errorf("Expected condition isBlocked, got %s", stmt.Condition)
				}
				if len(stmt.Body.Statements) != 1 {
					t.Errorf("Expected 1 statement in body, got %d", len(stmt.Body.Statements))
				}
				if stmt.Else == nil {
					t.Fatal("Expected else branch")
				}
				if len(stmt.Else.Statements) != 1 {
					t.Fatalf("Expected 1 statement in else, got %d", len(stmt.Else.Statements))
				}
				if call, ok := stmt.Else.Statements[0].(*ast.CallStatement); !ok || call.Function != "move" {
					t.Errorf("Expected else to call move, got %v", stmt.Else.Statements[0])
				}
			},
		},
		{
			name:  "If without else",
			input: "function main(){if(isBlocked()){turnLeft();}move();}",
			check: func(t *testing.T, file *ast.SourceFile) {
				stmts := file.Functions[0].Body.Statements
				if len(stmts) != 2 {
					t.Fatalf("Expected 2 statements, got %d", len(stmts))
				}
				stmt := stmts[0].(*ast.IfStatement)
				if stmt.Else != nil {
					t.Errorf("Expected no else branch, got %v", stmt.Else)
				}
			},
		},
		{
			name:  "Repeat",
			input: "function main(){repeat(3){move();}}",
			check: func(t *testing.T, file *ast.SourceFile) {
				stmt, ok := onlyStatement(t, file).(*ast.RepeatStatement)
				if !ok {
					t.Fatalf("Expected RepeatStatement, got %T", onlyStatement(t, file))
				}
				if stmt.Count != 3 {
					t.Errorf("Expected count 3, got %d", stmt.Count)
				}
				if len(stmt.Body.Statements) != 1 {
					t.Errorf("Expected 1 statement in body, got %d", len(stmt.Body.Statements))
				}
			},
		},
		{
			name:  "While",
			input: "function main(){while(frontIsClear()){move();}}",
			check: func(t *testing.T, file *ast.SourceFile) {
				stmt, ok := onlyStatement(t, file).(*ast.WhileStatement)
				if !ok {
					t.Fatalf("Expected WhileStatement, got %T", onlyStatement(t, file))
				}
				if stmt.Condition != "frontIsClear" {
					t.Errorf("Expected condition frontIsClear, got %s", stmt.Condition)
				}
			},
		},
		{
			name:  "Nested block and loops",
			input: "function main(){{move();}while(free()){repeat(2){step();}}}",
			check: func(t *testing.T, file *ast.SourceFile) {
				stmts := file.Functions[0].Body.Statements
				if len(stmts) != 2 {
					t.Fatalf("Expected 2 statements, got %d", len(stmts))
				}
				if _, ok := stmts[0].(*ast.BlockStatement); !ok {
					t.Errorf("Expected BlockStatement, got %T", stmts[0])
				}
				loop := stmts[1].(*ast.WhileStatement)
				inner, ok := loop.Body.Statements[0].(*ast.RepeatStatement)
				if !ok || inner.Count != 2 {
					t.Errorf("Expected repeat(2) inside while, got %v", loop.Body.Statements[0])
				}
			},
		},
		{
			name:  "Statements after else",
			input: "function main(){if(a()){x();}else{y();}z();}",
			check: func(t *testing.T, file *ast.SourceFile) {
				stmts := file.Functions[0].Body.Statements
				if len(stmts) != 2 {
					t.Fatalf("Expected 2 statements, got %d", len(stmts))
				}
				if call, ok := stmts[1].(*ast.CallStatement); !ok || call.Function != "z" {
					t.Errorf("Expected trailing call to z, got %v", stmts[1])
				}
			},
		},
		{
			name:  "Empty bodies",
			input: "function a(){}\nfunction b(){}",
			check: func(t *testing.T, file *ast.SourceFile) {
				if len(file.Functions) != 2 {
					t.Fatalf("Expected 2 functions, got %d", len(file.Functions))
				}
				if file.Function("b") == nil {
					t.Error("Expected to find function b")
				}
			},
		},
		{
			name:  "Empty input",
			input: "",
			check: func(t *testing.T, file *ast.SourceFile) {
				if len(file.Functions) != 0 {
					t.Errorf("Expected no functions, got %d", len(file.Functions))
				}
			},
		},
		{
			name:  "Stray top-level tokens are skipped",
			input: "move(); } 3 function main(){} ;",
			check: func(t *testing.T, file *ast.SourceFile) {
				if len(file.Functions) != 1 {
					t.Errorf("Expected 1 function, got %d", len(file.Functions))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := parseSource(t, tt.input, Options{})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			tt.check(t, file)
		})
	}
}

func TestParser_FunctionCount(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 25; i++ {
		b.WriteString("function f")
		b.WriteString(strings.Repeat("x", i))
		b.WriteString("() {\n  if (c()) { a(); } else { repeat (2) { b(); } }\n}\n")
	}

	file, err := parseSource(t, b.String(), Options{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(file.Functions) != 25 {
		t.Errorf("Expected 25 functions, got %d", len(file.Functions))
	}
}

func TestParser_Spans(t *testing.T) {
	src := "function a(){move();} function b(){if(c()){}else{}}"
	tokens, _ := lexer.Tokenize(src)
	file, err := Parse(tokens)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	a, b := file.Functions[0], file.Functions[1]
	if a.Pos != (ast.Span{Start: 0, End: 10}) {
		t.Errorf("Expected span [0,10) for a, got %v", a.Pos)
	}
	if b.Pos.Start != a.Pos.End || b.Pos.End != len(tokens) {
		t.Errorf("Expected span [10,%d) for b, got %v", len(tokens), b.Pos)
	}
	ifStmt := b.Body.Statements[0].(*ast.IfStatement)
	if ifStmt.Pos.End != ifStmt.Else.Pos.End {
		t.Errorf("Expected if span to end with else block, got %v", ifStmt.Pos)
	}
	if file.Span() != (ast.Span{Start: 0, End: len(tokens)}) {
		t.Errorf("Expected file span over all tokens, got %v", file.Span())
	}
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		code     diag.Code
		message  string
		expected diag.Range
	}{
		{
			name:     "Truncated header",
			input:    "function main(",
			code:     diag.CodeUnexpectedEndOfInput,
			message:  "Unexpected end of input, expected )",
			expected: diag.SpanRange(0, 13, 1),
		},
		{
			name:     "Missing closing brace",
			input:    "function main(){move();",
			code:     diag.CodeExpectedClosingBrace,
			message:  "Expected }",
			expected: diag.SpanRange(0, 22, 1),
		},
		{
			name:     "Missing closing brace after nested block",
			input:    "function main(){while(a()){move();}",
			code:     diag.CodeExpectedClosingBrace,
			message:  "Expected }",
			expected: diag.SpanRange(0, 34, 1),
		},
		{
			name:     "Open body at end of input",
			input:    "function main(){",
			code:     diag.CodeExpectedClosingBrace,
			message:  "Expected }",
			expected: diag.SpanRange(0, 15, 1),
		},
		{
			name:     "Keyword only",
			input:    "function",
			code:     diag.CodeUnexpectedEndOfInput,
			message:  "Unexpected end of input, expected identifier",
			expected: diag.SpanRange(0, 0, 8),
		},
		{
			name:     "Missing body",
			input:    "function main()",
			code:     diag.CodeUnexpectedEndOfInput,
			message:  "Unexpected end of input, expected {",
			expected: diag.SpanRange(0, 14, 1),
		},
		{
			name:     "Missing function name",
			input:    "function (){}",
			code:     diag.CodeExpectedToken,
			message:  "Expected identifier",
			expected: diag.SpanRange(0, 9, 1),
		},
		{
			name:     "Missing parameter list",
			input:    "function main{}",
			code:     diag.CodeExpectedToken,
			message:  "Expected (",
			expected: diag.SpanRange(0, 13, 1),
		},
		{
			name:     "Call without semicolon",
			input:    "function main(){move()}",
			code:     diag.CodeExpectedToken,
			message:  "Expected ;",
			expected: diag.SpanRange(0, 22, 1),
		},
		{
			name:     "Truncated call",
			input:    "function main(){move(",
			code:     diag.CodeUnexpectedEndOfInput,
			message:  "Unexpected end of input, expected )",
			expected: diag.SpanRange(0, 20, 1),
		},
		{
			name:     "Repeat without number",
			input:    "function main(){repeat(x){}}",
			code:     diag.CodeExpectedToken,
			message:  "Expected number",
			expected: diag.SpanRange(0, 23, 1),
		},
		{
			name:     "Repeat without body",
			input:    "function main(){repeat(3)",
			code:     diag.CodeUnexpectedEndOfInput,
			message:  "Unexpected end of input, expected {",
			expected: diag.SpanRange(0, 24, 1),
		},
		{
			name:     "Condition without call parens",
			input:    "function main(){if(isBlocked){}}",
			code:     diag.CodeExpectedToken,
			message:  "Expected (",
			expected: diag.SpanRange(0, 28, 1),
		},
		{
			name:     "Statement starting with delimiter",
			input:    "function main(){;}",
			code:     diag.CodeExpectedToken,
			message:  "Expected statement, found ;",
			expected: diag.SpanRange(0, 16, 1),
		},
		{
			name:     "Dangling else",
			input:    "function main(){else{}}",
			code:     diag.CodeExpectedToken,
			message:  "Expected statement, found else",
			expected: diag.SpanRange(0, 16, 4),
		},
		{
			name:     "Else without block",
			input:    "function main(){if(a()){}else}",
			code:     diag.CodeExpectedToken,
			message:  "Expected {",
			expected: diag.SpanRange(0, 29, 1),
		},
		{
			name:     "Else if is not part of the grammar",
			input:    "function main(){if(a()){}else if(b()){}}",
			code:     diag.CodeExpectedToken,
			message:  "Expected {",
			expected: diag.SpanRange(0, 30, 2),
		},
		{
			name:     "Error on a later line",
			input:    "function main() {\n  move();\n  turnLeft()\n}",
			code:     diag.CodeExpectedToken,
			message:  "Expected ;",
			expected: diag.SpanRange(3, 0, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := parseSource(t, tt.input, Options{})
			if file != nil {
				t.Errorf("Expected no tree on failure, got %v", file)
			}
			d, ok := diag.As(err)
			if !ok {
				t.Fatalf("Expected a diagnostic, got %v", err)
			}
			if d.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, d.Code)
			}
			if d.Message != tt.message {
				t.Errorf("Expected message %q, got %q", tt.message, d.Message)
			}
			if d.Range != tt.expected {
				t.Errorf("Expected range %v, got %v", tt.expected, d.Range)
			}
			if d.Code.IsLexical() {
				t.Errorf("Parser produced lexical code %s", d.Code)
			}
		})
	}
}

func TestParser_StrictTopLevel(t *testing.T) {
	src := "move(); function main(){}"

	file, err := parseSource(t, src, Options{})
	if err != nil || len(file.Functions) != 1 {
		t.Fatalf("Expected lenient parse to succeed with 1 function, got %v, %v", file, err)
	}

	_, err = parseSource(t, src, Options{StrictTopLevel: true})
	d, ok := diag.As(err)
	if !ok {
		t.Fatalf("Expected a diagnostic in strict mode, got %v", err)
	}
	if d.Code != diag.CodeExpectedToken || d.Expected != "function" {
		t.Errorf("Expected ExpectedToken(function), got %s(%s)", d.Code, d.Expected)
	}
	if d.Message != "Expected function, found identifier(move)" {
		t.Errorf("Unexpected message %q", d.Message)
	}
	if d.Range != diag.SpanRange(0, 0, 4) {
		t.Errorf("Expected range on move, got %v", d.Range)
	}
}

func TestParser_EmptyStreamEndOfInput(t *testing.T) {
	p := New(nil, Options{})
	_, err := p.parseBlockStatement(0)
	d, ok := diag.As(err)
	if !ok || d.Code != diag.CodeUnexpectedEndOfInput {
		t.Fatalf("Expected UnexpectedEndOfInput, got %v", err)
	}
	if d.Range != diag.PointRange(0, 0) {
		t.Errorf("Expected range at origin, got %v", d.Range)
	}
}

func TestParser_InternalErrorPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Expected panic for cursor outside the stream")
		}
		msg, ok := r.(string)
		if !ok || !strings.HasPrefix(msg, "parser: internal error") {
			t.Errorf("Unexpected panic value %v", r)
		}
	}()

	tokens, _ := lexer.Tokenize("function main(){}")
	New(tokens, Options{}).parseStatement(len(tokens) + 1)
}

func TestParser_TruncatedProgramsNeverPanic(t *testing.T) {
	programs := []string{
		"function main(){if(isBlocked()){turnLeft();}else{move();}}",
		"function main(){repeat(3){while(free()){move();}}}",
		"function a(){{{b();}}} function c(){if(d()){}}",
	}

	for _, src := range programs {
		tokens, err := lexer.Tokenize(src)
		if err != nil {
			t.Fatalf("Tokenize(%q) failed: %v", src, err)
		}
		for n := 0; n <= len(tokens); n++ {
			prefix := tokens[:n]
			for _, strict := range []bool{false, true} {
				func() {
					defer func() {
						if r := recover(); r != nil {
							t.Errorf("Parse panicked on %d-token prefix of %q: %v", n, src, r)
						}
					}()
					file, err := ParseWithOptions(prefix, Options{StrictTopLevel: strict})
					if (file == nil) == (err == nil) {
						t.Errorf("Expected exactly one of tree or diagnostic for prefix %d of %q", n, src)
					}
					if err != nil {
						if _, ok := diag.As(err); !ok {
							t.Errorf("Expected diagnostic, got %T", err)
						}
					}
				}()
			}
		}
	}
}

// TestParser_ArbitraryStreamsNeverPanic feeds every token sequence of up to
// four kinds, each prefixed with `function f()`, into the parser.
func TestParser_ArbitraryStreamsNeverPanic(t *testing.T) {
	all := []token.Kind{
		token.Function, token.While, token.Repeat, token.If, token.Else, token.Identifier,
		token.Number, token.LParen, token.RParen, token.LBrace, token.RBrace, token.Semicolon,
	}
	header := []token.Kind{token.Function, token.Identifier, token.LParen, token.RParen, token.LBrace}

	build := func(kinds []token.Kind) []token.Token {
		tokens := make([]token.Token, len(kinds))
		for i, k := range kinds {
			tokens[i] = token.Token{Kind: k, Text: k.String(), Offset: i * 2, Length: 1, Column: i * 2}
		}
		return tokens
	}

	var sweep func(prefix []token.Kind, depth int)
	sweep = func(prefix []token.Kind, depth int) {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Parse panicked on %v: %v", prefix, r)
				}
			}()
			Parse(build(prefix))
		}()
		if depth == 0 {
			return
		}
		for _, k := range all {
			next := append(append([]token.Kind{}, prefix...), k)
			sweep(next, depth-1)
		}
	}

	sweep(header, 4)
}
