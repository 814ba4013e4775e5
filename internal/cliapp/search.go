package cliapp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lytics/dev-agent/internal/vectorstore"
)

var (
	searchLimit     int
	searchThreshold float64
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the vector index for relevant code",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum number of results")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "minimum similarity score (0-1)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print results as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := args[0]

	repoRoot, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	a, err := buildApp(repoRoot, true)
	if err != nil {
		return err
	}
	defer a.Engine.Close()

	if err := a.Engine.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}

	results, err := a.Engine.Search(ctx, query, vectorstore.SearchOptions{
		Limit:          searchLimit,
		ScoreThreshold: float32(searchThreshold),
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, r := range results {
		name, _ := r.Metadata["name"].(string)
		file, _ := r.Metadata["file"].(string)
		fmt.Printf("%.3f  %s  %s\n", r.Score, file, name)
	}
	return nil
}
