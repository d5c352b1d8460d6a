// ============================================================================
// robolang - Robot Control Language Tools
// ============================================================================
//
// Package:     validator
// Description: Cached validation service shared by the LSP, gRPC and CLI
// Author:      Mike Stoffels
// Created:     2025-02-17
// License:     MIT
// ============================================================================

package validator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
	"github.com/msto63/robolang/internal/store"
	corelog "github.com/msto63/robolang/pkg/core/log"
	"github.com/msto63/robolang/pkg/lang"
	"github.com/msto63/robolang/pkg/lang/ast"
	"github.com/msto63/robolang/pkg/lang/parser"
)

// DefaultCacheSize is used when Options.CacheSize is zero
const DefaultCacheSize = 256

// Options configures a Validator
type Options struct {
	Parser    parser.Options
	CacheSize int                // negative disables the cache
	History   store.HistoryStore // optional
	Logger    *corelog.Logger
}

// Stats reports cache effectiveness
type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Entries int    `json:"entries"`
}

// Validator validates documents, caching results by content
type Validator struct {
	mu      sync.RWMutex
	engine  *lang.Engine
	cache   *lru.Cache
	history store.HistoryStore
	logger  *corelog.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates a validator
func New(opts Options) (*Validator, error) {
	if opts.Logger == nil {
		opts.Logger = corelog.GetDefault()
	}

	v := &Validator{
		history: opts.History,
		logger:  opts.Logger.WithField("component", "validator"),
	}
	v.engine = lang.NewEngine(lang.Options{Logger: opts.Logger, Parser: opts.Parser})

	size := opts.CacheSize
	if size == 0 {
		size = DefaultCacheSize
	}
	if size > 0 {
		cache, err := lru.New(size)
		if err != nil {
			return nil, err
		}
		v.cache = cache
	}

	return v, nil
}

// Validate checks one document and records the run when a history store is
// configured. Recording failures are logged, never returned.
func (v *Validator) Validate(ctx context.Context, origin store.Origin, name, text string) lang.Result {
	result := v.Analyze(name, text)

	if v.history != nil {
		run := newRun(origin, name, result)
		if err := v.history.Record(ctx, run); err != nil {
			v.logger.WarnWithErr("Failed to record validation run", err, corelog.Field("document", name))
		}
	}

	return result
}

// Analyze checks one document without recording it. Editor queries such as
// hover use it to reach the tree of the current text.
func (v *Validator) Analyze(name, text string) lang.Result {
	v.mu.RLock()
	engine := v.engine
	v.mu.RUnlock()

	result, cached := v.lookup(engine, text)
	if !cached {
		result = engine.Validate(name, text)
		v.remember(engine, text, result)
	}
	return result
}

// ParserOptions returns the parser options in effect
func (v *Validator) ParserOptions() parser.Options {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.engine.Options().Parser
}

// SetParserOptions replaces the parser options. Cached results computed
// under other options are not reused.
func (v *Validator) SetParserOptions(opts parser.Options) {
	v.mu.Lock()
	defer v.mu.Unlock()

	current := v.engine.Options()
	if current.Parser == opts {
		return
	}
	current.Parser = opts
	v.engine = lang.NewEngine(current)
	v.logger.Info("Parser options changed", corelog.Field("strict_top_level", opts.StrictTopLevel))
}

// Stats returns cache counters
func (v *Validator) Stats() Stats {
	s := Stats{Hits: v.hits.Load(), Misses: v.misses.Load()}
	if v.cache != nil {
		s.Entries = v.cache.Len()
	}
	return s
}

func (v *Validator) lookup(engine *lang.Engine, text string) (lang.Result, bool) {
	if v.cache == nil {
		return lang.Result{}, false
	}
	if value, ok := v.cache.Get(cacheKey(engine, text)); ok {
		v.hits.Add(1)
		return value.(lang.Result), true
	}
	v.misses.Add(1)
	return lang.Result{}, false
}

func (v *Validator) remember(engine *lang.Engine, text string, result lang.Result) {
	if v.cache != nil {
		v.cache.Add(cacheKey(engine, text), result)
	}
}

// cacheKey hashes the text together with the parser options
func cacheKey(engine *lang.Engine, text string) string {
	h := sha256.New()
	if engine.Options().Parser.StrictTopLevel {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

func newRun(origin store.Origin, name string, result lang.Result) *store.Run {
	run := &store.Run{
		Origin:   origin,
		Source:   name,
		OK:       result.OK(),
		Tokens:   len(result.Tokens),
		Duration: result.Elapsed,
	}
	if result.OK() {
		run.Functions = len(result.File.Functions)
		return run
	}

	d := result.Diagnostic
	run.Code = d.Code.String()
	run.Message = d.Message
	run.Line = d.Range.Start.Line
	run.Character = d.Range.Start.Character
	return run
}

// Summary describes an accepted document for logs and RPC responses
type Summary struct {
	Functions  []string
	Statements int
	References []ast.Reference
}

// Summarize collects function names and references of an accepted document
func Summarize(file *ast.SourceFile) Summary {
	s := Summary{Functions: make([]string, 0, len(file.Functions))}
	for _, fn := range file.Functions {
		s.Functions = append(s.Functions, fn.Name)
	}
	s.Statements = ast.Count(file).Statements
	s.References = ast.CollectReferences(file)
	return s
}
