// Package main provides the twealth CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "twealth",
		Short: "Financial health scoring for personal finance data",
		Long: `Twealth rolls raw transactions up into monthly aggregates, scores four
financial health pillars, and blends them into a 0-100 Twealth Index.`,
		Version: version,
	}

	rootCmd.AddCommand(
		newScoreCmd(),
		newRecomputeCmd(),
		newMigrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
