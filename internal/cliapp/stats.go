package cliapp

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print indexed-repository statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print stats as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

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

	st, warning, err := a.Engine.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	if statsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	fmt.Printf("Files:     %d\n", st.TotalFiles)
	fmt.Printf("Documents: %d\n", st.TotalDocuments)
	fmt.Printf("Vectors:   %d\n", st.TotalVectors)
	fmt.Println("By language:")
	for lang, ls := range st.ByLanguage {
		fmt.Printf("  %-12s files=%d components=%d lines=%d\n", lang, ls.Files, ls.Components, ls.Lines)
	}
	if warning != "" {
		fmt.Printf("warning: %s\n", warning)
	}
	return nil
}
