// File: doc.go
// Title: Robo Parser Package Documentation
// Description: Package documentation for the Robo recursive descent parser.
// Author: Mike Stoffels
// Version: v0.1.0
// Created: 2025-02-04
// Modified: 2025-02-04
//
// Change History:
// - 2025-02-04 v0.1.0: Initial package documentation

/*
Package parser converts a Robo token sequence into a program tree.

The grammar is small and fixed:

	file      = { function | any-other-token } .
	function  = "function" identifier "(" ")" block .
	block     = "{" { statement } "}" .
	statement = call | if | while | repeat | block .
	call      = identifier "(" ")" ";" .
	if        = "if" condition block [ "else" block ] .
	while     = "while" condition block .
	repeat    = "repeat" "(" number ")" block .
	condition = "(" identifier "(" ")" ")" .

Parsing is fail-fast: the first mismatch produces a *diag.Diagnostic that is
returned unchanged to the caller, and no partial tree is ever exposed.
Tokens outside a function declaration are skipped unless
Options.StrictTopLevel is set.
*/
package parser
