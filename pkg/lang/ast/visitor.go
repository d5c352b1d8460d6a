// File: visitor.go
// Title: Robo AST Traversal
// Description: Depth-first traversal of the program tree plus the visitors
//              the hosting layer needs: an indented tree dump, a collector
//              for called functions and condition predicates, and a
//              lookup of the innermost named reference at a position.
// Author: Mike Stoffels
// Version: v0.1.0
// Created: 2025-02-04
// Modified: 2025-02-12
//
// Change History:
// - 2025-02-04 v0.1.0: Initial traversal and dump
// - 2025-02-12 v0.1.0: Reference lookup for hover support

package ast

import (
	"fmt"
	"strings"

	"github.com/msto63/robolang/pkg/lang/diag"
)

// Visitor is called for every node reached by Walk. If Visit returns nil the
// children of node are skipped; otherwise Walk continues with the returned
// visitor. After the children, Visit(nil) is called.
type Visitor interface {
	Visit(node Node) Visitor
}

// Walk traverses the tree rooted at node in depth-first order
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *SourceFile:
		for _, fn := range n.Functions {
			Walk(v, fn)
		}
	case *FunctionDeclaration:
		Walk(v, n.Body)
	case *BlockStatement:
		for _, stmt := range n.Statements {
			Walk(v, stmt)
		}
	case *IfStatement:
		Walk(v, n.Body)
		if n.Else != nil {
			Walk(v, n.Else)
		}
	case *WhileStatement:
		Walk(v, n.Body)
	case *RepeatStatement:
		Walk(v, n.Body)
	case *CallStatement:
		// leaf
	default:
		panic(fmt.Sprintf("ast.Walk: unexpected node type %T", n))
	}

	v.Visit(nil)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses the tree calling f for each node; f returning false
// prunes the subtree. f(nil) marks the end of a node's children.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

// dumper writes an indented outline of the tree
type dumper struct {
	buffer strings.Builder
	indent int
}

func (d *dumper) writeIndent() {
	for i := 0; i < d.indent; i++ {
		d.buffer.WriteString("  ")
	}
}

func (d *dumper) Visit(node Node) Visitor {
	if node == nil {
		d.indent--
		return nil
	}

	d.writeIndent()
	switch n := node.(type) {
	case *SourceFile:
		d.buffer.WriteString(fmt.Sprintf("SourceFile (%d functions)\n", len(n.Functions)))
	case *FunctionDeclaration:
		d.buffer.WriteString(fmt.Sprintf("FunctionDeclaration %s\n", n.Name))
	case *BlockStatement:
		d.buffer.WriteString("BlockStatement\n")
	case *CallStatement:
		d.buffer.WriteString(fmt.Sprintf("CallStatement %s\n", n.Function))
	case *IfStatement:
		if n.Else != nil {
			d.buffer.WriteString(fmt.Sprintf("IfStatement %s (else)\n", n.Condition))
		} else {
			d.buffer.WriteString(fmt.Sprintf("IfStatement %s\n", n.Condition))
		}
	case *WhileStatement:
		d.buffer.WriteString(fmt.Sprintf("WhileStatement %s\n", n.Condition))
	case *RepeatStatement:
		d.buffer.WriteString(fmt.Sprintf("RepeatStatement %d\n", n.Count))
	}
	d.indent++
	return d
}

// Dump converts a tree to an indented, line-per-node outline
func Dump(node Node) string {
	d := &dumper{}
	Walk(d, node)
	return d.buffer.String()
}

// Reference is a named use of a function inside a body: a call or the
// condition predicate of an if/while header.
type Reference struct {
	Name        string
	Range       diag.Range
	IsCondition bool
}

// CollectReferences returns every call and condition reference in source order
func CollectReferences(node Node) []Reference {
	var refs []Reference
	Inspect(node, func(n Node) bool {
		switch s := n.(type) {
		case *CallStatement:
			refs = append(refs, Reference{Name: s.Function, Range: s.NameRange})
		case *IfStatement:
			refs = append(refs, Reference{Name: s.Condition, Range: s.ConditionRange, IsCondition: true})
		case *WhileStatement:
			refs = append(refs, Reference{Name: s.Condition, Range: s.ConditionRange, IsCondition: true})
		}
		return true
	})
	return refs
}

// ReferenceAt returns the reference whose name covers pos. Function
// declaration names count as references too.
func ReferenceAt(file *SourceFile, pos diag.Position) (Reference, bool) {
	for _, fn := range file.Functions {
		if fn.NameRange.Contains(pos) {
			return Reference{Name: fn.Name, Range: fn.NameRange}, true
		}
	}
	for _, ref := range CollectReferences(file) {
		if ref.Range.Contains(pos) {
			return ref, true
		}
	}
	return Reference{}, false
}

// Stats summarizes a tree. Statements counts every Statement node, including
// the body blocks of functions and compound statements.
type Stats struct {
	Functions  int
	Statements int
	MaxDepth   int
}

// Count walks the tree and returns its statistics
func Count(file *SourceFile) Stats {
	var stats Stats
	depth := 0
	Inspect(file, func(n Node) bool {
		if n == nil {
			depth--
			return false
		}
		switch n.(type) {
		case *FunctionDeclaration:
			stats.Functions++
		case Statement:
			stats.Statements++
		}
		depth++
		if depth > stats.MaxDepth {
			stats.MaxDepth = depth
		}
		return true
	})
	return stats
}
