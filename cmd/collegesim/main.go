// Command collegesim runs the campus friendship simulation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "collegesim",
		Short: "Agent-based simulation of friendship formation on a campus",
		Long: `collegesim simulates students meeting, befriending and drifting apart
over a number of school years. Students join groups, make friends with
those who seem similar, grow more alike their friends, and graduate or drop
out. Yearly snapshots are written as CSV and optionally to SQLite.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "YAML parameters file overlaid on the defaults")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: warn, info, debug, trace")

	rootCmd.AddCommand(
		newRunCmd(),
		newParamsCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "collegesim version %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
