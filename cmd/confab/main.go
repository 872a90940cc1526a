// Package main is the entry point for the confab CLI.
package main

import (
	"os"

	"github.com/confab-io/confab/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
