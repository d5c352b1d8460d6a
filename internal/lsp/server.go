// ============================================================================
// robolang - Robot Control Language Tools
// ============================================================================
//
// Package:     lsp
// Description: Language server: document sync, diagnostics and editor queries
// Author:      Mike Stoffels
// Created:     2025-02-18
// License:     MIT
// ============================================================================

package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/msto63/robolang/internal/catalog"
	"github.com/msto63/robolang/internal/store"
	"github.com/msto63/robolang/internal/validator"
	"github.com/msto63/robolang/pkg/core/logging"
	"github.com/msto63/robolang/pkg/core/version"
	"github.com/msto63/robolang/pkg/lang/ast"
	"github.com/msto63/robolang/pkg/lang/diag"
	"github.com/msto63/robolang/pkg/lang/parser"
	"github.com/msto63/robolang/pkg/lang/token"
	"github.com/sourcegraph/jsonrpc2"
)

// DiagnosticSource is reported as the source of every published diagnostic
const DiagnosticSource = "robo"

// Options configures the language server
type Options struct {
	Validator *validator.Validator
	Catalog   *catalog.Catalog // nil selects the built-in catalog

	// Debounce delays validation after a change. Zero or less validates
	// inside the change notification.
	Debounce time.Duration

	// TraceMessages logs every JSON-RPC message at trace level
	TraceMessages bool
}

// Server hosts one session per connected client. Sessions share the
// validator and the catalog.
type Server struct {
	validator *validator.Validator
	debounce  time.Duration
	trace     bool
	logger    *logging.Logger

	mu       sync.RWMutex
	catalog  *catalog.Catalog
	sessions map[*session]struct{}
}

// NewServer creates a language server
func NewServer(opts Options) (*Server, error) {
	if opts.Validator == nil {
		return nil, fmt.Errorf("lsp: validator is required")
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}

	return &Server{
		validator: opts.Validator,
		debounce:  opts.Debounce,
		trace:     opts.TraceMessages,
		logger:    logging.New("lsp"),
		catalog:   opts.Catalog,
		sessions:  make(map[*session]struct{}),
	}, nil
}

// SetCatalog replaces the completion catalog for all sessions
func (s *Server) SetCatalog(c *catalog.Catalog) {
	s.mu.Lock()
	s.catalog = c
	s.mu.Unlock()
	s.logger.Info("Catalog replaced", "entries", len(c.Entries()))
}

// Catalog returns the current completion catalog
func (s *Server) Catalog() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// Sessions returns the number of connected clients
func (s *Server) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ServeConn serves one client speaking Content-Length framed JSON-RPC
func (s *Server) ServeConn(ctx context.Context, rwc io.ReadWriteCloser) error {
	return s.ServeStream(ctx, jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{}))
}

// ServeStream serves one client until it disconnects or ctx is done
func (s *Server) ServeStream(ctx context.Context, stream jsonrpc2.ObjectStream) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess := newSession(ctx, s)
	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()
	s.logger.Debug("Client connected")

	var opts []jsonrpc2.ConnOpt
	if s.trace {
		opts = append(opts, jsonrpc2.LogMessages(logging.New("lsp.trace")))
	}
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(sess.handle), opts...)

	select {
	case <-conn.DisconnectNotify():
	case <-ctx.Done():
		conn.Close()
	}

	sess.close()
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
	s.logger.Debug("Client disconnected")
	return nil
}

// session is the state of one client connection
type session struct {
	server *Server
	ctx    context.Context
	logger *logging.Logger

	mu          sync.Mutex
	documents   map[string]*Document
	timers      map[string]*time.Timer
	initialized bool
	shutdown    bool

	hasConfigurationCapability   bool
	hasWorkspaceFolderCapability bool
}

func newSession(ctx context.Context, s *Server) *session {
	return &session{
		server:    s,
		ctx:       ctx,
		logger:    s.logger,
		documents: make(map[string]*Document),
		timers:    make(map[string]*time.Timer),
	}
}

func (ss *session) close() {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	for uri, t := range ss.timers {
		t.Stop()
		delete(ss.timers, uri)
	}
}

// handle dispatches one request or notification
func (ss *session) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	switch req.Method {
	case "initialize":
		return ss.initialize(req)
	case "exit":
		conn.Close()
		return nil, nil
	}

	ss.mu.Lock()
	initialized, shutdown := ss.initialized, ss.shutdown
	ss.mu.Unlock()

	if !initialized {
		if req.Notif {
			return nil, nil
		}
		return nil, &jsonrpc2.Error{Code: CodeServerNotInitialized, Message: "server not initialized"}
	}
	if shutdown && !req.Notif {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidRequest, Message: "server is shutting down"}
	}

	switch req.Method {
	case "initialized":
		ss.onInitialized(conn)
		return nil, nil

	case "shutdown":
		ss.mu.Lock()
		ss.shutdown = true
		ss.mu.Unlock()
		ss.close()
		return nil, nil

	case "textDocument/didOpen":
		var params DidOpenTextDocumentParams
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		ss.didOpen(conn, params)
		return nil, nil

	case "textDocument/didChange":
		var params DidChangeTextDocumentParams
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		ss.didChange(conn, params)
		return nil, nil

	case "textDocument/didSave":
		var params DidSaveTextDocumentParams
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		ss.validateAndPublish(conn, params.TextDocument.URI)
		return nil, nil

	case "textDocument/didClose":
		var params DidCloseTextDocumentParams
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		ss.didClose(conn, params)
		return nil, nil

	case "textDocument/completion":
		return ss.completion(), nil

	case "completionItem/resolve":
		var item CompletionItem
		if err := decodeParams(req, &item); err != nil {
			return nil, err
		}
		return ss.resolve(item), nil

	case "textDocument/hover":
		var params HoverParams
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		return ss.hover(params), nil

	case "textDocument/documentSymbol":
		var params DocumentSymbolParams
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		return ss.documentSymbols(params), nil

	case "workspace/didChangeConfiguration":
		var params DidChangeConfigurationParams
		if err := decodeParams(req, &params); err != nil {
			return nil, err
		}
		if params.Settings.Robolang != nil {
			ss.applySettings(*params.Settings.Robolang)
			ss.revalidateAll(conn)
		}
		return nil, nil

	case "workspace/didChangeWorkspaceFolders":
		ss.logMessage(conn, MessageLog, "Workspace folder change event received.")
		return nil, nil

	case "$/cancelRequest", "$/setTrace", "workspace/didChangeWatchedFiles":
		return nil, nil
	}

	if req.Notif {
		ss.logger.Debug("Ignoring notification", "method", req.Method)
		return nil, nil
	}
	return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not supported: " + req.Method}
}

func decodeParams(req *jsonrpc2.Request, v interface{}) error {
	if req.Params == nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(*req.Params, v); err != nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	return nil
}

// Lifecycle

func (ss *session) initialize(req *jsonrpc2.Request) (interface{}, error) {
	var params InitializeParams
	if err := decodeParams(req, &params); err != nil {
		return nil, err
	}

	ss.mu.Lock()
	if ss.initialized {
		ss.mu.Unlock()
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidRequest, Message: "server already initialized"}
	}
	if ws := params.Capabilities.Workspace; ws != nil {
		ss.hasConfigurationCapability = ws.Configuration
		ss.hasWorkspaceFolderCapability = ws.WorkspaceFolders
	}
	ss.initialized = true
	hasFolders := ss.hasWorkspaceFolderCapability
	ss.mu.Unlock()

	if params.InitializationOptions != nil {
		ss.applySettings(*params.InitializationOptions)
	}

	client := "unknown"
	if params.ClientInfo != nil {
		client = params.ClientInfo.Name
	}
	ss.logger.Info("Client initialized", "client", client, "root", params.RootURI)

	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: TextDocumentSyncOptions{
				OpenClose: true,
				Change:    SyncIncremental,
				Save:      &SaveOptions{IncludeText: false},
			},
			CompletionProvider:     &CompletionOptions{ResolveProvider: true},
			HoverProvider:          true,
			DocumentSymbolProvider: true,
		},
		ServerInfo: &ServerInfo{Name: "robolang", Version: version.LanguageServer},
	}
	if hasFolders {
		result.Capabilities.Workspace = &WorkspaceServerCapabilities{
			WorkspaceFolders: &WorkspaceFoldersServerCapabilities{Supported: true},
		}
	}
	return result, nil
}

func (ss *session) onInitialized(conn *jsonrpc2.Conn) {
	ss.mu.Lock()
	hasConfig, hasFolders := ss.hasConfigurationCapability, ss.hasWorkspaceFolderCapability
	ss.mu.Unlock()

	if hasConfig {
		params := RegistrationParams{Registrations: []Registration{{
			ID:     uuid.New().String(),
			Method: "workspace/didChangeConfiguration",
		}}}
		// The handler runs on the read loop; a call from here would wait
		// for a reply that loop must read.
		go func() {
			var reply interface{}
			if err := conn.Call(ss.ctx, "client/registerCapability", params, &reply); err != nil {
				ss.logger.Warn("Failed to register for configuration changes", "error", err)
			}
		}()
	}
	if hasFolders {
		ss.logger.Debug("Client supports workspace folders")
	}
}

func (ss *session) applySettings(settings Settings) {
	if settings.StrictTopLevel == nil {
		return
	}
	ss.server.validator.SetParserOptions(parser.Options{StrictTopLevel: *settings.StrictTopLevel})
}

func (ss *session) logMessage(conn *jsonrpc2.Conn, kind int, message string) {
	if err := conn.Notify(ss.ctx, "window/logMessage", LogMessageParams{Type: kind, Message: message}); err != nil {
		ss.logger.Debug("Failed to send log message", "error", err)
	}
}

// Document synchronization

func (ss *session) didOpen(conn *jsonrpc2.Conn, params DidOpenTextDocumentParams) {
	item := params.TextDocument
	ss.mu.Lock()
	ss.documents[item.URI] = &Document{URI: item.URI, Version: item.Version, Text: item.Text}
	ss.mu.Unlock()

	ss.validateAndPublish(conn, item.URI)
}

func (ss *session) didChange(conn *jsonrpc2.Conn, params DidChangeTextDocumentParams) {
	uri := params.TextDocument.URI

	ss.mu.Lock()
	doc, ok := ss.documents[uri]
	if ok {
		doc.Apply(params.ContentChanges)
		doc.Version = params.TextDocument.Version
	}
	ss.mu.Unlock()

	if !ok {
		ss.logger.Warn("Change for unknown document", "uri", uri)
		return
	}
	ss.schedule(conn, uri)
}

func (ss *session) didClose(conn *jsonrpc2.Conn, params DidCloseTextDocumentParams) {
	uri := params.TextDocument.URI

	ss.mu.Lock()
	doc, ok := ss.documents[uri]
	delete(ss.documents, uri)
	if t, exists := ss.timers[uri]; exists {
		t.Stop()
		delete(ss.timers, uri)
	}
	ss.mu.Unlock()

	if ok {
		ss.publish(conn, doc, nil, false)
	}
}

// schedule validates uri after the debounce delay, restarting the delay on
// every change
func (ss *session) schedule(conn *jsonrpc2.Conn, uri string) {
	delay := ss.server.debounce
	if delay <= 0 {
		ss.validateAndPublish(conn, uri)
		return
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()
	if t, ok := ss.timers[uri]; ok {
		t.Stop()
	}
	ss.timers[uri] = time.AfterFunc(delay, func() {
		if ss.ctx.Err() != nil {
			return
		}
		ss.validateAndPublish(conn, uri)
	})
}

func (ss *session) revalidateAll(conn *jsonrpc2.Conn) {
	ss.mu.Lock()
	uris := make([]string, 0, len(ss.documents))
	for uri := range ss.documents {
		uris = append(uris, uri)
	}
	ss.mu.Unlock()

	for _, uri := range uris {
		ss.schedule(conn, uri)
	}
}

// snapshot copies the current state of an open document
func (ss *session) snapshot(uri string) (Document, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	doc, ok := ss.documents[uri]
	if !ok {
		return Document{}, false
	}
	return *doc, true
}

// validateAndPublish validates the current text of uri. Results for a
// version that changed meanwhile are dropped; the newer version has its
// own validation pending.
func (ss *session) validateAndPublish(conn *jsonrpc2.Conn, uri string) {
	doc, ok := ss.snapshot(uri)
	if !ok {
		return
	}

	result := ss.server.validator.Validate(ss.ctx, store.OriginLSP, uri, doc.Text)

	current, ok := ss.snapshot(uri)
	if !ok || current.Version != doc.Version || current.Text != doc.Text {
		return
	}
	ss.publish(conn, &doc, result.Diagnostics(), true)
}

func (ss *session) publish(conn *jsonrpc2.Conn, doc *Document, diags []diag.Diagnostic, withVersion bool) {
	out := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, Diagnostic{
			Range:    doc.RangeToLSP(d.Range),
			Severity: int(d.Severity),
			Code:     d.Code.String(),
			Source:   DiagnosticSource,
			Message:  d.Message,
		})
	}

	params := PublishDiagnosticsParams{URI: doc.URI, Diagnostics: out}
	if withVersion {
		v := doc.Version
		params.Version = &v
	}
	if err := conn.Notify(ss.ctx, "textDocument/publishDiagnostics", params); err != nil {
		ss.logger.Warn("Failed to publish diagnostics", "uri", doc.URI, "error", err)
	}
}

// Language features

func (ss *session) completion() []CompletionItem {
	entries := ss.server.Catalog().Entries()
	items := make([]CompletionItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, CompletionItem{
			Label: e.Label,
			Kind:  completionKind(e.Kind),
			Data:  e.Data,
		})
	}
	return items
}

func (ss *session) resolve(item CompletionItem) CompletionItem {
	var data int
	switch v := item.Data.(type) {
	case float64:
		data = int(v)
	case int:
		data = v
	default:
		return item
	}

	e, ok := ss.server.Catalog().ByData(data)
	if !ok {
		return item
	}
	item.Kind = completionKind(e.Kind)
	item.Detail = e.Detail
	if e.Documentation != "" {
		item.Documentation = &MarkupContent{Kind: "markdown", Value: e.Documentation}
	}
	if e.Snippet != "" {
		item.InsertText = e.Snippet
		item.InsertTextFormat = InsertTextSnippet
	}
	return item
}

func completionKind(k catalog.Kind) int {
	if k == catalog.KindKeyword {
		return CompletionKindKeyword
	}
	return CompletionKindFunction
}

func (ss *session) hover(params HoverParams) *Hover {
	doc, ok := ss.snapshot(params.TextDocument.URI)
	if !ok {
		return nil
	}
	result := ss.server.validator.Analyze(doc.URI, doc.Text)
	if !result.OK() {
		return nil
	}

	ref, ok := ast.ReferenceAt(result.File, doc.ToDiag(params.Position))
	if !ok {
		return nil
	}

	r := doc.RangeToLSP(ref.Range)
	return &Hover{
		Contents: MarkupContent{Kind: "markdown", Value: ss.describe(result.File, ref)},
		Range:    &r,
	}
}

// describe renders hover text: document functions first, then the catalog
func (ss *session) describe(file *ast.SourceFile, ref ast.Reference) string {
	var b strings.Builder

	if fn := file.Function(ref.Name); fn != nil {
		fmt.Fprintf(&b, "```robo\nfunction %s()\n```\n\nDeclared on line %d.", fn.Name, fn.NameRange.Start.Line+1)
		return b.String()
	}

	if e, ok := ss.server.Catalog().Lookup(ref.Name); ok {
		fmt.Fprintf(&b, "```robo\n%s\n```", e.Detail)
		if e.Documentation != "" {
			b.WriteString("\n\n")
			b.WriteString(e.Documentation)
		}
		return b.String()
	}

	what := "Function"
	if ref.IsCondition {
		what = "Condition"
	}
	fmt.Fprintf(&b, "%s `%s` is not declared in this document.", what, ref.Name)
	return b.String()
}

func (ss *session) documentSymbols(params DocumentSymbolParams) []DocumentSymbol {
	symbols := make([]DocumentSymbol, 0)

	doc, ok := ss.snapshot(params.TextDocument.URI)
	if !ok {
		return symbols
	}
	result := ss.server.validator.Analyze(doc.URI, doc.Text)
	if !result.OK() {
		return symbols
	}

	for _, fn := range result.File.Functions {
		first := result.Tokens[fn.Pos.Start]
		last := result.Tokens[fn.Pos.End-1]
		symbols = append(symbols, DocumentSymbol{
			Name:           fn.Name,
			Detail:         "function",
			Kind:           SymbolKindFunction,
			Range:          doc.RangeToLSP(token.Span(first, last)),
			SelectionRange: doc.RangeToLSP(fn.NameRange),
		})
	}
	return symbols
}
