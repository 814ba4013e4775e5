package cliapp

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lytics/dev-agent/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .devagent/config.yml",
	Long: `Init writes a default configuration file at .devagent/config.yml in
the current directory, if one does not already exist.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	repoRoot, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	configPath, wrote, err := writeDefaultConfig(repoRoot)
	if err != nil {
		return err
	}
	if wrote {
		fmt.Printf("Wrote %s\n", configPath)
	} else {
		fmt.Printf("%s already exists\n", configPath)
	}
	return nil
}

// writeDefaultConfig writes config.Default() to repoRoot/.devagent/config.yml
// unless a config file is already present there. It reports whether it
// wrote a new file. Split out of runInit so tests can call it directly.
func writeDefaultConfig(repoRoot string) (configPath string, wrote bool, err error) {
	configDir := filepath.Join(repoRoot, ".devagent")
	configPath = filepath.Join(configDir, "config.yml")

	if _, statErr := os.Stat(configPath); statErr == nil {
		return configPath, false, nil
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return configPath, false, fmt.Errorf("create %s: %w", configDir, err)
	}

	data, err := yaml.Marshal(config.Default())
	if err != nil {
		return configPath, false, fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return configPath, false, fmt.Errorf("write %s: %w", configPath, err)
	}

	return configPath, true, nil
}
