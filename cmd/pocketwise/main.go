// Package main is the entry point for the pocketwise CLI.
package main

import (
	"os"

	"pocketwise/cmd/pocketwise/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
