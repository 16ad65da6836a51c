// Package main is the entry point for the sqlforge CLI.
package main

import (
	"os"

	"github.com/sqlforge/sqlforge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
