package ast_test

import (
	"testing"

	"github.com/msto63/robolang/pkg/lang/ast"
	"github.com/msto63/robolang/pkg/lang/diag"
	"github.com/msto63/robolang/pkg/lang/lexer"
	"github.com/msto63/robolang/pkg/lang/parser"
)

const sample = `function main() {
  if (isBlocked()) {
    turnLeft();
  } else {
    repeat (3) { move(); }
  }
  while (frontIsClear()) { move(); }
}
function turnRight() { turnLeft(); turnLeft(); turnLeft(); }
`

func mustParse(t *testing.T, src string) *ast.SourceFile {
	t.Helper()
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	file, err := parser.Parse(tokens)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return file
}

func TestDump(t *testing.T) {
	file := mustParse(t, sample)

	expected := `SourceFile (2 functions)
  FunctionDeclaration main
    BlockStatement
      IfStatement isBlocked (else)
        BlockStatement
          CallStatement turnLeft
        BlockStatement
          RepeatStatement 3
            BlockStatement
              CallStatement move
      WhileStatement frontIsClear
        BlockStatement
          CallStatement move
  FunctionDeclaration turnRight
    BlockStatement
      CallStatement turnLeft
      CallStatement turnLeft
      CallStatement turnLeft
`
	if got := ast.Dump(file); got != expected {
		t.Errorf("Dump mismatch.\nExpected:\n%s\nGot:\n%s", expected, got)
	}
}

func TestString(t *testing.T) {
	file := mustParse(t, "function main(){if(a()){b();}else{}repeat(2){c();}}")

	expected := "function main() { if (a()) { b(); } else {} repeat (2) { c(); } }"
	if got := file.String(); got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}

	// The printed form parses back to the same tree.
	again := mustParse(t, file.String())
	if ast.Dump(again) != ast.Dump(file) {
		t.Errorf("Round trip changed the tree:\n%s\nvs\n%s", ast.Dump(again), ast.Dump(file))
	}
}

func TestCollectReferences(t *testing.T) {
	file := mustParse(t, sample)

	refs := ast.CollectReferences(file)
	expected := []struct {
		name string
		cond bool
	}{
		{"isBlocked", true},
		{"turnLeft", false},
		{"move", false},
		{"frontIsClear", true},
		{"move", false},
		{"turnLeft", false},
		{"turnLeft", false},
		{"turnLeft", false},
	}

	if len(refs) != len(expected) {
		t.Fatalf("Expected %d references, got %d: %v", len(expected), len(refs), refs)
	}
	for i, exp := range expected {
		if refs[i].Name != exp.name || refs[i].IsCondition != exp.cond {
			t.Errorf("Reference %d: expected %s (condition=%v), got %s (condition=%v)",
				i, exp.name, exp.cond, refs[i].Name, refs[i].IsCondition)
		}
	}
	if refs[0].Range != diag.SpanRange(1, 6, 9) {
		t.Errorf("Expected isBlocked at 2:7, got %v", refs[0].Range)
	}
}

func TestReferenceAt(t *testing.T) {
	file := mustParse(t, sample)

	tests := []struct {
		name  string
		pos   diag.Position
		found bool
		want  string
	}{
		{"declaration name", diag.Position{Line: 0, Character: 10}, true, "main"},
		{"condition start", diag.Position{Line: 1, Character: 6}, true, "isBlocked"},
		{"condition last char", diag.Position{Line: 1, Character: 14}, true, "isBlocked"},
		{"just past condition", diag.Position{Line: 1, Character: 15}, false, ""},
		{"call", diag.Position{Line: 2, Character: 5}, true, "turnLeft"},
		{"whitespace", diag.Position{Line: 2, Character: 0}, false, ""},
		{"second function call", diag.Position{Line: 8, Character: 36}, true, "turnLeft"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, ok := ast.ReferenceAt(file, tt.pos)
			if ok != tt.found {
				t.Fatalf("Expected found=%v, got %v (%v)", tt.found, ok, ref)
			}
			if ok && ref.Name != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, ref.Name)
			}
		})
	}
}

func TestCount(t *testing.T) {
	file := mustParse(t, sample)
	stats := ast.Count(file)

	if stats.Functions != 2 {
		t.Errorf("Expected 2 functions, got %d", stats.Functions)
	}
	// main: body, if, if-body, turnLeft, else, repeat, repeat-body, move,
	// while, while-body, move = 11; turnRight: body + 3 calls = 4
	if stats.Statements != 15 {
		t.Errorf("Expected 15 statements, got %d", stats.Statements)
	}
	// SourceFile > Function > Block > If > Block(else) > Repeat > Block > Call
	if stats.MaxDepth != 8 {
		t.Errorf("Expected max depth 8, got %d", stats.MaxDepth)
	}
}

func TestInspectPrune(t *testing.T) {
	file := mustParse(t, sample)

	calls := 0
	ast.Inspect(file, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.IfStatement:
			return false
		case *ast.CallStatement:
			calls++
		}
		return true
	})

	// Everything below the if statement is skipped.
	if calls != 4 {
		t.Errorf("Expected 4 calls outside the if statement, got %d", calls)
	}
}

func TestStatementIsSealed(t *testing.T) {
	var stmts []ast.Statement = []ast.Statement{
		&ast.BlockStatement{},
		&ast.CallStatement{},
		&ast.IfStatement{Body: &ast.BlockStatement{}},
		&ast.WhileStatement{Body: &ast.BlockStatement{}},
		&ast.RepeatStatement{Body: &ast.BlockStatement{}},
	}
	for _, s := range stmts {
		switch s.(type) {
		case *ast.BlockStatement, *ast.CallStatement, *ast.IfStatement, *ast.WhileStatement, *ast.RepeatStatement:
		default:
			t.Errorf("Unexpected statement type %T", s)
		}
	}
}
