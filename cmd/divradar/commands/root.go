package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
	silent  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "divradar",
	Short: "divradar - dividend screener batch backend",
	Long: `divradar batch backend

Imports market data and computes the derived dividend metrics the
screener serves: growth rates, streaks, payment cadence and recession
performance.

Usage:
  go run ./cmd/divradar [command]

Examples:
  go run ./cmd/divradar api
  go run ./cmd/divradar import snapshot
  go run ./cmd/divradar metrics dividends
  go run ./cmd/divradar scheduler`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&silent, "silent", false, "suppress job log output")
}
