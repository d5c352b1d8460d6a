package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msto63/robolang/internal/catalog"
	"github.com/msto63/robolang/internal/lsp"
	"github.com/msto63/robolang/internal/rpc"
	"github.com/msto63/robolang/internal/store"
	"github.com/msto63/robolang/internal/watch"
	coregrpc "github.com/msto63/robolang/pkg/core/grpc"
	"github.com/msto63/robolang/pkg/core/logging"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	serveTransport string
	serveAddress   string
	serveGRPC      bool
	serveStdio     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the language server and the validator service",
	Long: `Starts the Robo language server. Editors usually launch it with
--stdio; tcp and websocket transports accept several clients.

With grpc.enabled in the configuration (or --grpc) the validation service
runs alongside on grpc.host:grpc.port.

Examples:
  robolang serve --stdio
  robolang serve --transport websocket --address 127.0.0.1:9741
  robolang serve --transport tcp --grpc`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveTransport, "transport", "", "LSP transport: stdio, tcp or websocket")
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "listen address for tcp and websocket")
	serveCmd.Flags().BoolVar(&serveGRPC, "grpc", false, "also start the gRPC validator service")
	serveCmd.Flags().BoolVar(&serveStdio, "stdio", false, "shorthand for --transport stdio")
}

var serveLogger = logging.New("serve")

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transport := appConfig.LSP.Transport
	if serveTransport != "" {
		transport = serveTransport
	}
	if serveStdio {
		transport = lsp.TransportStdio
	}
	address := appConfig.LSP.Address
	if serveAddress != "" {
		address = serveAddress
	}

	history, err := openHistory()
	if err != nil {
		serveLogger.Warn("History disabled", "error", err)
		history = nil
	}
	if history != nil {
		defer history.Close()
		pruneHistory(ctx, history)
	}

	v, err := newValidator(history, false)
	if err != nil {
		return err
	}

	cat, err := catalog.Load(appConfig.Catalog.Path)
	if err != nil {
		return err
	}

	server, err := lsp.NewServer(lsp.Options{
		Validator:     v,
		Catalog:       cat,
		Debounce:      appConfig.LSP.Debounce.Duration,
		TraceMessages: appConfig.LSP.TraceMessages,
	})
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := server.Serve(ctx, transport, address, appConfig.LSP.WSPath)
		if transport == lsp.TransportStdio {
			// the client closing stdio ends the process
			stop()
		}
		return err
	})

	if serveGRPC || appConfig.GRPC.Enabled {
		cfg := coregrpc.DefaultServerConfig()
		cfg.Host = appConfig.GRPC.Host
		cfg.Port = appConfig.GRPC.Port
		cfg.EnableReflection = appConfig.GRPC.EnableReflection

		grpcServer := coregrpc.NewServer(cfg)
		rpc.Register(grpcServer, rpc.NewService(v))
		grpcServer.SetServing("", true)

		g.Go(func() error {
			return grpcServer.Run(ctx, appConfig.GRPC.ShutdownTimeout.Duration)
		})
	}

	if appConfig.Catalog.Path != "" {
		w, err := watchCatalog(server, appConfig.Catalog.Path)
		if err != nil {
			serveLogger.Warn("Catalog hot reload disabled", "error", err)
		} else {
			g.Go(func() error { return w.Run(ctx) })
		}
	}

	return g.Wait()
}

// watchCatalog reloads the completion catalog when its file changes
func watchCatalog(server *lsp.Server, path string) (*watch.Watcher, error) {
	w, err := watch.New(watch.Options{Debounce: appConfig.Watch.Debounce.Duration}, func(e watch.Event) {
		if e.Op == watch.Removed {
			serveLogger.Warn("Catalog file removed, keeping the loaded catalog", "path", e.Path)
			return
		}
		cat, err := catalog.Load(e.Path)
		if err != nil {
			serveLogger.Error("Failed to reload catalog", "path", e.Path, "error", err)
			return
		}
		server.SetCatalog(cat)
	})
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		return nil, err
	}
	return w, nil
}

func pruneHistory(ctx context.Context, history *store.SQLiteStore) {
	days := appConfig.History.RetentionDays
	if days <= 0 {
		return
	}
	n, err := history.Prune(ctx, time.Duration(days)*24*time.Hour)
	if err != nil {
		serveLogger.Warn("Failed to prune history", "error", err)
		return
	}
	if n > 0 {
		serveLogger.Info("Pruned validation history", "runs", n, "retention_days", days)
	}
}
