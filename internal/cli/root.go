// Package cli implements the SnapSolve command-line interface using Cobra.
// Each subcommand maps to one progression operation (solve, status, etc.).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "snapsolve",
	Short: "SnapSolve: homework progression engine",
	Long: `SnapSolve tracks the daily solve quota, streaks, points, achievements
and levels for a homework-help app. State lives in $SNAPSOLVE_HOME.

Run 'snapsolve serve' to expose the same operations over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
