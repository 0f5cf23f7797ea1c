// Package main is the entry point for the storefront CLI.
package main

import (
	"os"

	"storefront/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
