// File: doc.go
// Title: Robo AST Package Documentation
// Description: Package documentation for the Robo program tree.
// Author: Mike Stoffels
// Version: v0.1.0
// Created: 2025-02-04
// Modified: 2025-02-04

/*
Package ast defines the Robo program tree.

A SourceFile holds function declarations; each declaration owns a block of
statements. Statement is a sealed interface implemented by CallStatement,
IfStatement, WhileStatement, RepeatStatement and BlockStatement, so a type
switch over a Statement is exhaustive. Every node records the token index
span it was parsed from.
*/
package ast
