package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/msto63/robolang/internal/store"
	"github.com/msto63/robolang/internal/watch"
	"github.com/spf13/cobra"
)

var watchNoColor bool

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Validate files whenever they change",
	Long: `Watches files and directories (non-recursively) and validates every
matching file on change. Directories are filtered by watch.extensions.

Examples:
  robolang watch .
  robolang watch programs/ extra.robo`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchNoColor, "no-color", false, "disable colored output")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	history, err := openHistory()
	if err != nil {
		printError("history disabled", err)
		history = nil
	}
	if history != nil {
		defer history.Close()
	}

	v, err := newValidator(history, false)
	if err != nil {
		return err
	}

	p := newPrinter(os.Stdout, watchNoColor)
	validate := func(path string) {
		text, err := readSource(path)
		if err != nil {
			printError(path, err)
			return
		}
		r := v.Validate(ctx, store.OriginCLI, path, text)
		if r.OK() {
			p.accepted(path, len(r.File.Functions))
		} else {
			p.rejected(path, text, r.Diagnostic)
		}
	}

	w, err := watch.New(watch.Options{
		Extensions: appConfig.Watch.Extensions,
		Debounce:   appConfig.Watch.Debounce.Duration,
	}, func(e watch.Event) {
		if e.Op == watch.Removed {
			fmt.Fprintf(os.Stdout, "%s %s\n", p.paint(dimStyle, "removed"), e.Path)
			return
		}
		validate(e.Path)
	})
	if err != nil {
		return err
	}

	for _, path := range args {
		if err := w.Add(path); err != nil {
			return err
		}
		for _, file := range initialFiles(path) {
			validate(file)
		}
	}

	fmt.Fprintln(os.Stdout, p.paint(dimStyle, "Watching for changes, press Ctrl+C to stop"))
	return w.Run(ctx)
}

// initialFiles lists the files validated before the first change
func initialFiles(path string) []string {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	if !info.IsDir() {
		return []string{path}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !watch.HasExtension(e.Name(), appConfig.Watch.Extensions) {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	return files
}
