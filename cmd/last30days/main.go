// Package main provides the entry point for the last30days CLI.
package main

import (
	"os"

	"github.com/zkaiera/last30days-skill/cmd/last30days/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
