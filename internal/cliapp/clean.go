package cliapp

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lytics/dev-agent/internal/config"
)

var cleanForce bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove indexed data from the storage directory to force a full re-index",
	Long: `Clean removes .devagent's indexer state, metrics, and vector database
files. The configuration file is preserved. Use this after changing the
embedding model, or to recover from corrupted storage.`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVarP(&cleanForce, "force", "f", false, "skip the confirmation prompt")
}

func runClean(cmd *cobra.Command, args []string) error {
	repoRoot, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	storageDir, action, err := cleanStorage(repoRoot, cleanForce)
	if err != nil {
		return err
	}

	switch action {
	case cleanActionNotFound:
		fmt.Println("no storage found for this repository")
	case cleanActionNeedsConfirm:
		fmt.Printf("This will delete %s. Re-run with --force to confirm.\n", storageDir)
	case cleanActionCleaned:
		fmt.Printf("Cleaned %s\n", storageDir)
	}
	return nil
}

type cleanAction int

const (
	cleanActionNotFound cleanAction = iota
	cleanActionNeedsConfirm
	cleanActionCleaned
)

// cleanStorage removes the indexer state, metrics, and vector database
// files under repoRoot's configured storage directory. force=false only
// reports what would be deleted, leaving the files untouched. Split out
// of runClean so tests can call it directly.
func cleanStorage(repoRoot string, force bool) (storageDir string, action cleanAction, err error) {
	cfg, err := config.NewLoader(repoRoot).Load()
	if err != nil {
		return "", 0, fmt.Errorf("load config: %w", err)
	}
	storageDir = filepath.Join(repoRoot, cfg.Storage.Directory)

	if _, err := os.Stat(storageDir); os.IsNotExist(err) {
		return storageDir, cleanActionNotFound, nil
	}

	if !force {
		return storageDir, cleanActionNeedsConfirm, nil
	}

	for _, name := range []string{stateFileName, metricsDBName, vectorsDBName} {
		if err := os.Remove(filepath.Join(storageDir, name)); err != nil && !os.IsNotExist(err) {
			return storageDir, 0, fmt.Errorf("remove %s: %w", name, err)
		}
	}

	return storageDir, cleanActionCleaned, nil
}
