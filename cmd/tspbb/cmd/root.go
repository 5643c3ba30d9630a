// Package cmd implements the tspbb command-line interface.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tspbb/bnbtsp/applog"
)

var (
	verbose    bool
	configPath string
	logger     applog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tspbb <inputfile> [ceiling]",
	Short: "Exact branch-and-bound solver for the symmetric traveling salesman problem",
	Long: `tspbb reads a weighted graph from inputfile and searches for the
cheapest tour that visits every city exactly once and returns to city 0.
An optional ceiling caps the search: tours costing more are never
reported. Omit it (or pass "inf") to search unbounded.

By default the search runs over --workers goroutines sharing memory in
this process. Pass --distributed with --peers to instead run this
process as one rank of a ring of independent processes, each given a
disjoint share of the search via work donation over TCP.`,
	Args: cobra.RangeArgs(1, 2),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := applog.LevelInfo
		if verbose {
			level = applog.LevelDebug
		}
		logger = applog.NewStderr(level)
		return nil
	},
	RunE: runSolve,
}

// Execute runs the root command, exiting the process on failure with the
// status exitFor assigns to the returned error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitFor(err))
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a tuning/config override file")
}
