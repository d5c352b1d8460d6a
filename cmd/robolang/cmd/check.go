package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/msto63/robolang/internal/rpc"
	"github.com/msto63/robolang/internal/store"
	coreerr "github.com/msto63/robolang/pkg/core/error"
	"github.com/msto63/robolang/pkg/lang/diag"
	"github.com/spf13/cobra"
)

var (
	checkRemote  string
	checkStrict  bool
	checkNoColor bool
	checkTimeout time.Duration
)

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Validate Robo files",
	Long: `Validates Robo source files and prints the first diagnostic of each
rejected file with a source excerpt. Use "-" to read from stdin.

With --remote the files are sent to a running validator service instead of
being checked in-process.

Examples:
  robolang check examples/*.robo
  robolang check --remote 127.0.0.1:9740 main.robo
  cat main.robo | robolang check -`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkRemote, "remote", "", "validator service address (host:port)")
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "reject tokens outside function declarations")
	checkCmd.Flags().BoolVar(&checkNoColor, "no-color", false, "disable colored output")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 10*time.Second, "timeout per remote request")
}

// outcome is the result of checking one file
type outcome struct {
	functions  int
	diagnostic *diag.Diagnostic
}

type checkFunc func(ctx context.Context, name, text string) (outcome, error)

func runCheck(cmd *cobra.Command, args []string) error {
	check, cleanup, err := newChecker()
	if err != nil {
		return err
	}
	defer cleanup()

	p := newPrinter(os.Stdout, checkNoColor)
	rejected := 0

	for _, name := range args {
		text, err := readSource(name)
		if err != nil {
			printError(name, err)
			rejected++
			continue
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
		res, err := check(ctx, name, text)
		cancel()
		if err != nil {
			return fmt.Errorf("validation of %s failed: %w", name, err)
		}

		if res.diagnostic == nil {
			p.accepted(name, res.functions)
			continue
		}
		rejected++
		p.rejected(name, text, res.diagnostic)
	}

	if rejected > 0 {
		return fmt.Errorf("%d of %d files rejected", rejected, len(args))
	}
	return nil
}

// newChecker returns the local or remote check function
func newChecker() (checkFunc, func(), error) {
	if checkRemote != "" {
		client, err := rpc.Dial(checkRemote)
		if err != nil {
			return nil, nil, err
		}
		check := func(ctx context.Context, name, text string) (outcome, error) {
			resp, err := client.Validate(ctx, name, text)
			if err != nil {
				return outcome{}, err
			}
			return outcome{functions: len(resp.Functions), diagnostic: resp.Diagnostic}, nil
		}
		return check, func() { client.Close() }, nil
	}

	history, err := openHistory()
	if err != nil {
		printError("history disabled", err)
		history = nil
	}
	v, err := newValidator(history, checkStrict)
	if err != nil {
		return nil, nil, err
	}

	check := func(ctx context.Context, name, text string) (outcome, error) {
		r := v.Validate(ctx, store.OriginCLI, name, text)
		if !r.OK() {
			return outcome{diagnostic: r.Diagnostic}, nil
		}
		return outcome{functions: len(r.File.Functions)}, nil
	}
	cleanup := func() {
		if history != nil {
			history.Close()
		}
	}
	return check, cleanup, nil
}

func readSource(name string) (string, error) {
	var data []byte
	var err error
	if name == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", coreerr.Wrap(err, "failed to read source").
			WithCode(coreerr.CodeSourceRead).
			WithOperation("check").
			WithDetail("path", name)
	}
	return string(data), nil
}
