// File: nodes.go
// Title: Robo AST Node Definitions
// Description: Defines the program tree produced by the parser: source file,
//              function declarations, blocks and the sealed statement sum
//              type. Nodes are built fully formed by the parser and are not
//              mutated afterwards.
// Author: Mike Stoffels
// Version: v0.1.0
// Created: 2025-02-04
// Modified: 2025-02-04
//
// Change History:
// - 2025-02-04 v0.1.0: Initial AST node definitions

package ast

import (
	"fmt"
	"strings"

	"github.com/msto63/robolang/pkg/lang/diag"
)

// Node represents the base interface for all AST nodes
type Node interface {
	// Span returns the token index range [Start, End) covered by the node
	Span() Span

	// String returns a compact source-like representation
	String() string
}

// Statement is the sealed sum type of everything a block may contain
type Statement interface {
	Node
	stmtNode() // marker method
}

// Span is a half-open range of token indices. It lets a parent production
// resume exactly where a child stopped.
type Span struct {
	Start int
	End   int
}

// Len returns the number of tokens covered
func (s Span) Len() int {
	return s.End - s.Start
}

// SourceFile is the root of a parsed document
type SourceFile struct {
	Functions []*FunctionDeclaration
}

// FunctionDeclaration represents `function name() { ... }`
type FunctionDeclaration struct {
	Name      string
	NameRange diag.Range
	Body      *BlockStatement
	Pos       Span
}

// BlockStatement represents `{ statements }`
type BlockStatement struct {
	Statements []Statement
	Pos        Span
}

// CallStatement represents `name();`
type CallStatement struct {
	Function  string
	NameRange diag.Range
	Pos       Span
}

// IfStatement represents `if (cond()) { ... } else { ... }`
type IfStatement struct {
	Condition      string
	ConditionRange diag.Range
	Body           *BlockStatement
	Else           *BlockStatement // nil when there is no else branch
	Pos            Span
}

// WhileStatement represents `while (cond()) { ... }`
type WhileStatement struct {
	Condition      string
	ConditionRange diag.Range
	Body           *BlockStatement
	Pos            Span
}

// RepeatStatement represents `repeat (n) { ... }`
type RepeatStatement struct {
	Count uint64
	Body  *BlockStatement
	Pos   Span
}

func (*BlockStatement) stmtNode()  {}
func (*CallStatement) stmtNode()   {}
func (*IfStatement) stmtNode()     {}
func (*WhileStatement) stmtNode()  {}
func (*RepeatStatement) stmtNode() {}

// Span implementations

func (f *SourceFile) Span() Span {
	if len(f.Functions) == 0 {
		return Span{}
	}
	return Span{Start: f.Functions[0].Pos.Start, End: f.Functions[len(f.Functions)-1].Pos.End}
}

func (d *FunctionDeclaration) Span() Span { return d.Pos }
func (b *BlockStatement) Span() Span      { return b.Pos }
func (c *CallStatement) Span() Span       { return c.Pos }
func (s *IfStatement) Span() Span         { return s.Pos }
func (s *WhileStatement) Span() Span      { return s.Pos }
func (s *RepeatStatement) Span() Span     { return s.Pos }

// String implementations

func (f *SourceFile) String() string {
	parts := make([]string, len(f.Functions))
	for i, fn := range f.Functions {
		parts[i] = fn.String()
	}
	return strings.Join(parts, "\n")
}

func (d *FunctionDeclaration) String() string {
	return fmt.Sprintf("function %s() %s", d.Name, d.Body.String())
}

func (b *BlockStatement) String() string {
	if len(b.Statements) == 0 {
		return "{}"
	}
	parts := make([]string, len(b.Statements))
	for i, stmt := range b.Statements {
		parts[i] = stmt.String()
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

func (c *CallStatement) String() string {
	return c.Function + "();"
}

func (s *IfStatement) String() string {
	out := fmt.Sprintf("if (%s()) %s", s.Condition, s.Body.String())
	if s.Else != nil {
		out += " else " + s.Else.String()
	}
	return out
}

func (s *WhileStatement) String() string {
	return fmt.Sprintf("while (%s()) %s", s.Condition, s.Body.String())
}

func (s *RepeatStatement) String() string {
	return fmt.Sprintf("repeat (%d) %s", s.Count, s.Body.String())
}

// Function returns the declaration with the given name, or nil
func (f *SourceFile) Function(name string) *FunctionDeclaration {
	for _, fn := range f.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}
