package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/msto63/robolang/internal/store"
	"github.com/msto63/robolang/internal/validator"
	"github.com/msto63/robolang/pkg/core/config"
	corelog "github.com/msto63/robolang/pkg/core/log"
	"github.com/msto63/robolang/pkg/core/logging"
	"github.com/msto63/robolang/pkg/lang/parser"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool

	appConfig *config.Config
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "robolang",
	Short: "Robo - tools for the robot control language",
	Long: `robolang validates programs written in Robo, the small language used
to steer a grid robot with functions, loops and conditions.

Commands:
  serve    - language server (stdio, TCP or WebSocket) and gRPC validator
  check    - validate files locally or against a running validator
  watch    - re-validate files whenever they change
  history  - show recorded validation runs`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./configs/robolang.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// setup loads the configuration and installs the default logger
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}
	appConfig = cfg

	level := cfg.General.LogLevel
	if verbose {
		level = "debug"
	}

	logger, closer, err := logging.NewLogger(logging.LoggerConfig{
		ServiceName: "robolang",
		Level:       level,
		Format:      cfg.General.LogFormat,
		File:        cfg.General.LogFile,
	})
	if err != nil {
		return err
	}
	corelog.SetDefault(logger)
	logCloser = closer
	return nil
}

// openHistory opens the history store when it is enabled. The returned
// store may be nil.
func openHistory() (*store.SQLiteStore, error) {
	if !appConfig.History.Enabled {
		return nil, nil
	}
	return store.NewSQLiteStore(store.Config{Path: appConfig.History.Path})
}

// newValidator builds the validator from configuration
func newValidator(history *store.SQLiteStore, strict bool) (*validator.Validator, error) {
	opts := validator.Options{
		Parser:    parser.Options{StrictTopLevel: appConfig.Parser.StrictTopLevel || strict},
		CacheSize: appConfig.Cache.Size,
	}
	if history != nil {
		opts.History = history
	}
	return validator.New(opts)
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
}
