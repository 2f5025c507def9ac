// Package main is the entry point for the Spyglass message decoder agent.
package main

import (
	"fmt"
	"os"

	"github.com/spyglass-tools/spyglass/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
