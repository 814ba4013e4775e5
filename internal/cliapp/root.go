// Package cliapp is the cobra-based command surface: init, index, update,
// search, stats, clean. Ported from the teacher's internal/cli package,
// which wires the same commands against viper-bound persistent flags and
// an in-process engine rather than a daemon.
package cliapp

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var verbose bool

// rootCmd is the devagent command tree's entry point.
var rootCmd = &cobra.Command{
	Use:   "devagent",
	Short: "devagent indexes a repository for semantic code search",
	Long: `devagent scans a repository, extracts code components, embeds them,
and stores them in a local vector index for semantic search.`,
}

// Execute runs the command tree and returns the process exit code: 0 on
// success, 1 on any error, matching spec.md §6's exit-code contract.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}
