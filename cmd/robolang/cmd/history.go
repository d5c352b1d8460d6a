package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/msto63/robolang/internal/store"
	"github.com/spf13/cobra"
)

var (
	historyLimit    int
	historyFailures bool
	historySource   string
	historyNoColor  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded validation runs",
	Long: `Lists the most recent validation runs recorded by check, watch and the
servers, newest first, followed by a summary per diagnostic code.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
	historyCmd.Flags().BoolVar(&historyFailures, "failures", false, "only show rejected runs")
	historyCmd.Flags().StringVar(&historySource, "source", "", "only show runs of this document")
	historyCmd.Flags().BoolVar(&historyNoColor, "no-color", false, "disable colored output")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if !appConfig.History.Enabled {
		return fmt.Errorf("history is disabled in the configuration")
	}

	history, err := store.NewSQLiteStore(store.Config{Path: appConfig.History.Path})
	if err != nil {
		return err
	}
	defer history.Close()

	ctx := cmd.Context()
	runs, err := history.Query(ctx, store.Filter{
		Source:       historySource,
		FailuresOnly: historyFailures,
		Limit:        historyLimit,
	})
	if err != nil {
		return err
	}

	p := newPrinter(os.Stdout, historyNoColor)
	fmt.Fprintln(p.out, p.paint(titleStyle, "Validation history"))

	if len(runs) == 0 {
		fmt.Fprintln(p.out, p.paint(dimStyle, "  no runs recorded"))
	}
	for _, r := range runs {
		result := p.paint(okStyle, "ok   ")
		detail := fmt.Sprintf("%d functions", r.Functions)
		if !r.OK {
			result = p.paint(errStyle, "error")
			detail = fmt.Sprintf("%d:%d %s %s", r.Line+1, r.Character+1, r.Message, p.paint(codeStyle, "["+r.Code+"]"))
		}
		fmt.Fprintf(p.out, "  %s  %s  %-4s  %s  %s\n",
			p.paint(dimStyle, r.Timestamp.Local().Format("2006-01-02 15:04:05")),
			result,
			r.Origin,
			r.Source,
			detail)
	}

	stats, err := history.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "\n%d runs, %d rejected\n", stats.Total, stats.Failures)

	codes := make([]string, 0, len(stats.ByCode))
	for code := range stats.ByCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Fprintf(p.out, "  %-22s %d\n", code, stats.ByCode[code])
	}
	return nil
}
