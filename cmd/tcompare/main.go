// Package main provides the entry point for the tcompare CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nukestat/tcompare/cmd/tcompare/commands"
	"github.com/nukestat/tcompare/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tcompare",
		Short: "tcompare - two-sample t-test comparison of simulation outputs",
		Long: `tcompare compares two sets of keyed summary statistics (mean, standard
error of the mean, sample size) with an unpaired, equal-variance two-sample
Student's t-test and reports which keys differ significantly.

Commands:
  run       Compare two sample files`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "tcompare %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
