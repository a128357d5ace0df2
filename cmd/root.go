// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "github-statcard",
	Short: "Generates an SVG stat card for a GitHub account.",
	Long: `github-statcard fetches public activity metrics for a GitHub account
(repositories, followers, stars, pull requests, an estimated commit count,
issues), condenses them into a letter grade, and renders everything into a
single self-contained SVG card.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}
