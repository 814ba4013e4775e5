package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader loads configuration from file and environment variables.
type Loader interface {
	// Load loads configuration with priority defaults < config file <
	// environment variables (env wins).
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader builds a Loader rooted at rootDir, where .devagent/config.yml
// is searched for.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// Load reads configuration with the following priority (highest to
// lowest): DEV_AGENT_* environment variables, .devagent/config.yml, then
// Default().
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".devagent")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("DEV_AGENT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("embedding.model")
	v.BindEnv("embedding.dimensions")
	v.BindEnv("batch.size")
	v.BindEnv("batch.concurrency")
	v.BindEnv("storage.directory")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read %s: %w", configDir, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)

	v.SetDefault("paths.include", d.Paths.Include)
	v.SetDefault("paths.exclude", d.Paths.Exclude)

	v.SetDefault("batch.size", d.Batch.Size)
	v.SetDefault("batch.concurrency", d.Batch.Concurrency)

	v.SetDefault("storage.directory", d.Storage.Directory)
}
