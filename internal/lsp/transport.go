// ============================================================================
// robolang - Robot Control Language Tools
// ============================================================================
//
// Package:     lsp
// Description: stdio, TCP and WebSocket transports for the language server
// Author:      Mike Stoffels
// Created:     2025-02-19
// License:     MIT
// ============================================================================

package lsp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	wsstream "github.com/sourcegraph/jsonrpc2/websocket"
)

// Transport names accepted by Serve
const (
	TransportStdio     = "stdio"
	TransportTCP       = "tcp"
	TransportWebSocket = "websocket"
)

// Serve runs the server on the named transport until ctx is done
func (s *Server) Serve(ctx context.Context, transport, addr, wsPath string) error {
	switch transport {
	case TransportStdio, "":
		return s.ServeStdio(ctx)
	case TransportTCP:
		return s.ServeTCP(ctx, addr)
	case TransportWebSocket:
		return s.ServeWebSocket(ctx, addr, wsPath)
	default:
		return fmt.Errorf("lsp: unknown transport %q", transport)
	}
}

// stdio joins stdin and stdout into one stream
type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

func (stdio) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}

// ServeStdio serves a single client over stdin and stdout
func (s *Server) ServeStdio(ctx context.Context) error {
	s.logger.Info("Language server listening on stdio")
	return s.ServeConn(ctx, stdio{})
}

// ServeTCP accepts clients on addr
func (s *Server) ServeTCP(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.logger.Info("Language server listening", "transport", TransportTCP, "address", lis.Addr().String())
	return s.ServeListener(ctx, lis)
}

// ServeListener accepts clients from lis until ctx is done, then waits for
// open sessions to end
func (s *Server) ServeListener(ctx context.Context, lis net.Listener) error {
	go func() {
		<-ctx.Done()
		lis.Close()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := lis.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.ServeConn(ctx, conn)
		}()
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // editors connect from local web views
	},
}

// WebSocketHandler upgrades requests to WebSocket sessions. Sessions end
// when ctx is done.
func (s *Server) WebSocketHandler(ctx context.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.logger.Warn("WebSocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}
		s.ServeStream(ctx, wsstream.NewObjectStream(c))
	})
}

// ServeWebSocket serves clients on ws://addr/path
func (s *Server) ServeWebSocket(ctx context.Context, addr, path string) error {
	if path == "" {
		path = "/lsp"
	}

	mux := http.NewServeMux()
	mux.Handle(path, s.WebSocketHandler(ctx))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Language server listening", "transport", TransportWebSocket, "address", addr, "path", path)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
