package main

import (
	"os"

	"github.com/divradar/backend/cmd/divradar/commands"
)

// main is the entry point for the divradar CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
