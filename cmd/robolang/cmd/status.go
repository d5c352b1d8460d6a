package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/msto63/robolang/internal/catalog"
	"github.com/msto63/robolang/internal/lsp"
	"github.com/msto63/robolang/internal/rpc"
	"github.com/msto63/robolang/pkg/core/health"
	"github.com/msto63/robolang/pkg/core/version"
	"github.com/spf13/cobra"
)

var (
	statusTimeout time.Duration
	statusNoColor bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the configured services and resources",
	Long: `Checks everything a running "robolang serve" depends on: the gRPC
validator, the language server listener (tcp and websocket transports),
the history database and the completion catalog.

The command fails when any check is unhealthy.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().DurationVar(&statusTimeout, "timeout", 5*time.Second, "timeout for all checks")
	statusCmd.Flags().BoolVar(&statusNoColor, "no-color", false, "disable colored output")
}

func runStatus(cmd *cobra.Command, args []string) error {
	registry, cleanup := buildHealthRegistry()
	defer cleanup()

	ctx, cancel := context.WithTimeout(cmd.Context(), statusTimeout)
	defer cancel()
	report := registry.Check(ctx)

	p := newPrinter(os.Stdout, statusNoColor)
	fmt.Fprintln(p.out, p.paint(titleStyle, fmt.Sprintf("robolang %s", report.Version)))
	for _, result := range report.Checks {
		icon := p.paint(okStyle, "[+]")
		if result.Status != health.StatusHealthy {
			icon = p.paint(errStyle, "[-]")
		}
		fmt.Fprintf(p.out, "  %s %-10s %s %s\n", icon, result.Name, result.Message,
			p.paint(dimStyle, result.Duration.Round(time.Millisecond).String()))
	}

	if report.Status == health.StatusUnhealthy {
		return fmt.Errorf("status %s", report.Status)
	}
	return nil
}

// buildHealthRegistry registers one check per configured component
func buildHealthRegistry() (*health.Registry, func()) {
	registry := health.NewRegistry("robolang", version.Platform)
	cleanup := func() {}

	if appConfig.GRPC.Enabled {
		registry.Register(health.GRPCCheck("grpc", appConfig.GRPCAddress(), rpc.ServiceName, statusTimeout))
	}

	switch appConfig.LSP.Transport {
	case lsp.TransportTCP, lsp.TransportWebSocket:
		registry.Register(health.TCPCheck("lsp", appConfig.LSP.Address, statusTimeout))
	}

	if appConfig.History.Enabled {
		history, err := openHistory()
		if err != nil {
			registry.RegisterFunc("history", func(ctx context.Context) health.CheckResult {
				return health.CheckResult{Status: health.StatusUnhealthy, Message: err.Error()}
			})
		} else {
			registry.Register(health.PingCheck("history", history))
			cleanup = func() { history.Close() }
		}
	}

	registry.RegisterFunc("catalog", func(ctx context.Context) health.CheckResult {
		cat, err := catalog.Load(appConfig.Catalog.Path)
		if err != nil {
			return health.CheckResult{Status: health.StatusUnhealthy, Message: err.Error()}
		}
		return health.CheckResult{
			Status:  health.StatusHealthy,
			Message: fmt.Sprintf("%d entries", len(cat.Entries())),
		}
	})

	return registry, cleanup
}
