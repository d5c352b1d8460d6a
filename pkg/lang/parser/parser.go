// File: parser.go
// Title: Robo Recursive Descent Parser
// Description: Converts a token sequence into the Robo program tree using
//              single-pass, one-token-lookahead recursive descent. Every
//              production returns a fully built node or the first
//              diagnostic, which is passed up unchanged; there is no error
//              recovery and no partial tree.
// Author: Mike Stoffels
// Version: v0.1.0
// Created: 2025-02-04
// Modified: 2025-02-11
//
// Change History:
// - 2025-02-04 v0.1.0: Initial parser implementation
// - 2025-02-11 v0.1.0: Bounds-checked lookahead, strict top-level option

package parser

import (
	"fmt"

	"github.com/msto63/robolang/pkg/lang/ast"
	"github.com/msto63/robolang/pkg/lang/diag"
	"github.com/msto63/robolang/pkg/lang/token"
)

// Options configures parser behavior
type Options struct {
	// StrictTopLevel reports any top-level token other than `function`
	// instead of skipping it.
	StrictTopLevel bool
}

// Parser implements recursive descent parsing for Robo. Productions take the
// index of their first token and report where they stopped through the
// returned node's span.
type Parser struct {
	tokens  []token.Token
	options Options
}

// New creates a parser over tokens
func New(tokens []token.Token, opts Options) *Parser {
	return &Parser{tokens: tokens, options: opts}
}

// Parse parses tokens with default options
func Parse(tokens []token.Token) (*ast.SourceFile, error) {
	return New(tokens, Options{}).Parse()
}

// ParseWithOptions parses tokens with the given options
func ParseWithOptions(tokens []token.Token, opts Options) (*ast.SourceFile, error) {
	return New(tokens, opts).Parse()
}

// Parse parses the whole token sequence. On failure the error is a
// *diag.Diagnostic and the file is nil.
func (p *Parser) Parse() (*ast.SourceFile, error) {
	functions := make([]*ast.FunctionDeclaration, 0)

	current := 0
	for current < len(p.tokens) {
		tok := p.tokens[current]

		if tok.Kind != token.Function {
			if p.options.StrictTopLevel {
				return nil, p.unexpected(tok, token.Function.String())
			}
			current++
			continue
		}

		fn, err := p.parseFunctionDeclaration(current)
		if err != nil {
			return nil, err
		}
		functions = append(functions, fn)
		current = fn.Pos.End
	}

	return &ast.SourceFile{Functions: functions}, nil
}

// parseFunctionDeclaration parses `function name() { ... }`
func (p *Parser) parseFunctionDeclaration(start int) (*ast.FunctionDeclaration, error) {
	p.checkCursor(start)

	name, err := p.expect(start+1, token.Identifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(start+2, token.LParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(start+3, token.RParen); err != nil {
		return nil, err
	}

	body, err := p.parseBlockStatement(start + 4)
	if err != nil {
		return nil, err
	}

	return &ast.FunctionDeclaration{
		Name:      name.Text,
		NameRange: name.Range(),
		Body:      body,
		Pos:       ast.Span{Start: start, End: body.Pos.End},
	}, nil
}

// parseBlockStatement parses `{ statement* }`
func (p *Parser) parseBlockStatement(start int) (*ast.BlockStatement, error) {
	p.checkCursor(start)

	if _, err := p.expect(start, token.LBrace); err != nil {
		return nil, err
	}

	statements := make([]ast.Statement, 0)
	current := start + 1
	for current < len(p.tokens) {
		if p.tokens[current].Kind == token.RBrace {
			return &ast.BlockStatement{
				Statements: statements,
				Pos:        ast.Span{Start: start, End: current + 1},
			}, nil
		}

		stmt, err := p.parseStatement(current)
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
		current = stmt.Span().End
	}

	// Ran out of tokens: point at the last token actually consumed.
	last := p.tokens[current-1]
	return nil, diag.New(diag.CodeExpectedClosingBrace, last.Range(), "Expected }").
		Expecting(token.RBrace.String())
}

// parseStatement dispatches on the current token
func (p *Parser) parseStatement(start int) (ast.Statement, error) {
	p.checkCursor(start)
	if start == len(p.tokens) {
		return nil, p.endOfInput("statement")
	}

	tok := p.tokens[start]
	switch tok.Kind {
	case token.Identifier:
		return p.parseCallStatement(start)
	case token.If:
		return p.parseIfStatement(start)
	case token.While:
		return p.parseWhileStatement(start)
	case token.Repeat:
		return p.parseRepeatStatement(start)
	case token.LBrace:
		return p.parseBlockStatement(start)
	default:
		return nil, p.unexpected(tok, "statement")
	}
}

// parseCallStatement parses `name();`
func (p *Parser) parseCallStatement(start int) (*ast.CallStatement, error) {
	p.checkCursor(start)

	name, err := p.expect(start, token.Identifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(start+1, token.LParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(start+2, token.RParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(start+3, token.Semicolon); err != nil {
		return nil, err
	}

	return &ast.CallStatement{
		Function:  name.Text,
		NameRange: name.Range(),
		Pos:       ast.Span{Start: start, End: start + 4},
	}, nil
}

// parseCondition parses the `(name())` header shared by if and while and
// returns the predicate token and the index after the closing paren.
func (p *Parser) parseCondition(start int) (token.Token, int, error) {
	if _, err := p.expect(start, token.LParen); err != nil {
		return token.Token{}, 0, err
	}
	name, err := p.expect(start+1, token.Identifier)
	if err != nil {
		return token.Token{}, 0, err
	}
	if _, err := p.expect(start+2, token.LParen); err != nil {
		return token.Token{}, 0, err
	}
	if _, err := p.expect(start+3, token.RParen); err != nil {
		return token.Token{}, 0, err
	}
	if _, err := p.expect(start+4, token.RParen); err != nil {
		return token.Token{}, 0, err
	}
	return name, start + 5, nil
}

// parseIfStatement parses `if (cond()) { ... } [else { ... }]`
func (p *Parser) parseIfStatement(start int) (*ast.IfStatement, error) {
	p.checkCursor(start)

	cond, next, err := p.parseCondition(start + 1)
	if err != nil {
		return nil, err
	}

	body, err := p.parseBlockStatement(next)
	if err != nil {
		return nil, err
	}

	stmt := &ast.IfStatement{
		Condition:      cond.Text,
		ConditionRange: cond.Range(),
		Body:           body,
		Pos:            ast.Span{Start: start, End: body.Pos.End},
	}

	if tok, ok := p.at(body.Pos.End); ok && tok.Kind == token.Else {
		elseBody, err := p.parseBlockStatement(body.Pos.End + 1)
		if err != nil {
			return nil, err
		}
		stmt.Else = elseBody
		stmt.Pos.End = elseBody.Pos.End
	}

	return stmt, nil
}

// parseWhileStatement parses `while (cond()) { ... }`
func (p *Parser) parseWhileStatement(start int) (*ast.WhileStatement, error) {
	p.checkCursor(start)

	cond, next, err := p.parseCondition(start + 1)
	if err != nil {
		return nil, err
	}

	body, err := p.parseBlockStatement(next)
	if err != nil {
		return nil, err
	}

	return &ast.WhileStatement{
		Condition:      cond.Text,
		ConditionRange: cond.Range(),
		Body:           body,
		Pos:            ast.Span{Start: start, End: body.Pos.End},
	}, nil
}

// parseRepeatStatement parses `repeat (n) { ... }`
func (p *Parser) parseRepeatStatement(start int) (*ast.RepeatStatement, error) {
	p.checkCursor(start)

	if _, err := p.expect(start+1, token.LParen); err != nil {
		return nil, err
	}
	count, err := p.expect(start+2, token.Number)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(start+3, token.RParen); err != nil {
		return nil, err
	}

	body, err := p.parseBlockStatement(start + 4)
	if err != nil {
		return nil, err
	}

	return &ast.RepeatStatement{
		Count: count.Value,
		Body:  body,
		Pos:   ast.Span{Start: start, End: body.Pos.End},
	}, nil
}

// Utility methods

// at returns the token at index i, if any
func (p *Parser) at(i int) (token.Token, bool) {
	if i < 0 || i >= len(p.tokens) {
		return token.Token{}, false
	}
	return p.tokens[i], true
}

// expect returns the token at index i when it has the wanted kind
func (p *Parser) expect(i int, kind token.Kind) (token.Token, error) {
	tok, ok := p.at(i)
	if !ok {
		return token.Token{}, p.endOfInput(kind.String())
	}
	if tok.Kind != kind {
		return token.Token{}, diag.New(diag.CodeExpectedToken, tok.Range(), "Expected %s", kind).
			Expecting(kind.String())
	}
	return tok, nil
}

// unexpected reports tok where something else was required
func (p *Parser) unexpected(tok token.Token, expected string) error {
	return diag.New(diag.CodeExpectedToken, tok.Range(), "Expected %s, found %s", expected, tok).
		Expecting(expected)
}

// endOfInput reports a missing token at the end of the stream. The range is
// the last real token, never a synthesized position.
func (p *Parser) endOfInput(expected string) error {
	r := diag.PointRange(0, 0)
	if n := len(p.tokens); n > 0 {
		r = p.tokens[n-1].Range()
	}
	return diag.New(diag.CodeUnexpectedEndOfInput, r, "Unexpected end of input, expected %s", expected).
		Expecting(expected)
}

// checkCursor guards the production entry invariant. Productions are only
// invoked with a cursor inside the stream or exactly at its end.
func (p *Parser) checkCursor(i int) {
	if i < 0 || i > len(p.tokens) {
		panic(fmt.Sprintf("parser: internal error: cursor %d outside token stream of length %d", i, len(p.tokens)))
	}
}
