// File: lang.go
// Title: Robo Validation Pipeline
// Description: Runs the lexer and the parser over a document and reports
//              either the program tree or the single diagnostic. Engine
//              wraps the pipeline with a logger and parser options for the
//              hosting tools.
// Author: Mike Stoffels
// Version: v0.1.0
// Created: 2025-02-05
// Modified: 2025-02-12
//
// Change History:
// - 2025-02-05 v0.1.0: Validate pipeline
// - 2025-02-12 v0.1.0: Engine with logger and parser options

package lang

import (
	"fmt"
	"time"

	corelog "github.com/msto63/robolang/pkg/core/log"
	"github.com/msto63/robolang/pkg/lang/ast"
	"github.com/msto63/robolang/pkg/lang/diag"
	"github.com/msto63/robolang/pkg/lang/lexer"
	"github.com/msto63/robolang/pkg/lang/parser"
	"github.com/msto63/robolang/pkg/lang/token"
)

// FileExtension is the extension of Robo source files
const FileExtension = ".robo"

// LanguageID is the identifier editors use for Robo documents
const LanguageID = "robo"

// Result is the outcome of one validation pass. Exactly one of File and
// Diagnostic is set. Tokens holds the token stream when lexing succeeded.
type Result struct {
	File       *ast.SourceFile
	Tokens     []token.Token
	Diagnostic *diag.Diagnostic
	Elapsed    time.Duration
}

// OK reports whether the document was accepted
func (r Result) OK() bool {
	return r.Diagnostic == nil
}

// Diagnostics returns the diagnostic as a list of zero or one entries
func (r Result) Diagnostics() []diag.Diagnostic {
	if r.Diagnostic == nil {
		return []diag.Diagnostic{}
	}
	return []diag.Diagnostic{*r.Diagnostic}
}

// Validate tokenizes and parses text with default options
func Validate(text string) Result {
	return validate(text, parser.Options{})
}

func validate(text string, opts parser.Options) Result {
	start := time.Now()

	tokens, err := lexer.Tokenize(text)
	if err != nil {
		return Result{Diagnostic: mustDiagnostic(err), Elapsed: time.Since(start)}
	}

	file, err := parser.ParseWithOptions(tokens, opts)
	if err != nil {
		return Result{Tokens: tokens, Diagnostic: mustDiagnostic(err), Elapsed: time.Since(start)}
	}

	return Result{File: file, Tokens: tokens, Elapsed: time.Since(start)}
}

func mustDiagnostic(err error) *diag.Diagnostic {
	d, ok := diag.As(err)
	if !ok {
		panic(fmt.Sprintf("lang: internal error: front end returned %T: %v", err, err))
	}
	return d
}

// Options configures an Engine
type Options struct {
	Logger *corelog.Logger
	Parser parser.Options
}

// Engine validates documents and logs each pass
type Engine struct {
	logger  *corelog.Logger
	options Options
}

// NewEngine creates an engine. A nil logger selects the default logger.
func NewEngine(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = corelog.GetDefault()
	}

	return &Engine{
		logger:  opts.Logger.WithField("component", "robo-engine"),
		options: opts,
	}
}

// Options returns the engine configuration
func (e *Engine) Options() Options {
	return e.options
}

// Validate validates one document. name identifies it in log entries.
func (e *Engine) Validate(name, text string) Result {
	result := validate(text, e.options.Parser)

	if result.OK() {
		stats := ast.Count(result.File)
		e.logger.Debug("Document accepted", corelog.Fields{
			"document":   name,
			"tokens":     len(result.Tokens),
			"functions":  stats.Functions,
			"statements": stats.Statements,
			"elapsed":    result.Elapsed.String(),
		})
		if e.logger.IsLevelEnabled(corelog.LevelTrace) {
			e.logger.Trace("Program tree", corelog.Fields{"document": name, "tree": ast.Dump(result.File)})
		}
		return result
	}

	e.logger.Debug("Document rejected", corelog.Fields{
		"document": name,
		"code":     result.Diagnostic.Code.String(),
		"range":    result.Diagnostic.Range.String(),
		"message":  result.Diagnostic.Message,
		"elapsed":  result.Elapsed.String(),
	})
	return result
}
