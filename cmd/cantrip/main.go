// ABOUTME: Entry point for the cantrip CLI.
// ABOUTME: Delegates to the root command and reports failures in red.

package main

import (
	"os"

	"github.com/fatih/color"
)

// Version information set via ldflags at build time
var version = "dev"

func main() {
	if err := Execute(); err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}
