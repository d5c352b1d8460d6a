package cmd

import (
	"fmt"
	"runtime"

	"github.com/msto63/robolang/pkg/core/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String())
		fmt.Printf("  Language server: %s\n", version.ComponentVersion("lsp"))
		fmt.Printf("  Validator:       %s\n", version.ComponentVersion("validator"))
		fmt.Printf("  Go Version:      %s\n", runtime.Version())
		fmt.Printf("  OS/Arch:         %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
