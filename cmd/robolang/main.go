package main

import (
	"os"

	"github.com/msto63/robolang/cmd/robolang/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
