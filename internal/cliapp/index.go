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

var (
	indexForce bool
	indexQuiet bool
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Run a full index of the repository",
	Long: `Index scans the repository (current directory, or the given path),
extracts code components, embeds them, and stores the result in the
configured vector index, discarding any prior incremental state.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVarP(&indexForce, "force", "f", false, "force a full re-index even if state already exists")
	indexCmd.Flags().BoolVarP(&indexQuiet, "quiet", "q", false, "disable progress bars")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\ninterrupted, cancelling index...")
		cancel()
	}()

	repoRoot, err := repoRootFromArgs(args)
	if err != nil {
		return err
	}

	a, err := buildApp(repoRoot, indexQuiet)
	if err != nil {
		return err
	}
	defer a.Engine.Close()

	if err := a.Engine.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}

	if indexForce {
		if err := a.Engine.Clean(); err != nil {
			return fmt.Errorf("clean prior state: %w", err)
		}
	}

	result, err := a.Engine.Index(ctx, indexengine.IndexOptions{})
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}

	printResult(result)
	return nil
}

func printResult(r *indexengine.Result) {
	fmt.Printf("Indexed %d files, %d documents in %s\n", r.FilesScanned, r.DocumentsIndexed, r.Duration)
	for _, w := range r.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", e)
	}
}
