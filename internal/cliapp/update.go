package cliapp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lytics/dev-agent/internal/indexengine"
)

var updateQuiet bool

var updateCmd = &cobra.Command{
	Use:   "update [path]",
	Short: "Incrementally re-index changed files",
	Long: `Update detects files that were added, changed, or deleted since the
last index or update and re-indexes only that subset, falling back to a
full index when no prior state exists.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().BoolVarP(&updateQuiet, "quiet", "q", false, "disable progress bars")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\ninterrupted, cancelling update...")
		cancel()
	}()

	repoRoot, err := repoRootFromArgs(args)
	if err != nil {
		return err
	}

	a, err := buildApp(repoRoot, updateQuiet)
	if err != nil {
		return err
	}
	defer a.Engine.Close()

	if err := a.Engine.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}

	result, err := a.Engine.Update(ctx, indexengine.UpdateOptions{})
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}

	printResult(result)
	return nil
}
