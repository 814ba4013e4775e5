// Package config loads the engine's runtime configuration from
// .devagent/config.yml with DEV_AGENT_* environment overrides, ported
// from the teacher's viper-based config.Loader.
package config

// Config is the complete dev-agent configuration.
type Config struct {
	Embedding EmbeddingConfig `yaml:"embedding" mapstructure:"embedding"`
	Paths     PathsConfig     `yaml:"paths" mapstructure:"paths"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Storage   StorageConfig   `yaml:"storage" mapstructure:"storage"`
}

// EmbeddingConfig fixes the (model, dim) tuple used to produce stored
// vectors.
type EmbeddingConfig struct {
	Model      string `yaml:"model" mapstructure:"model"`
	Dimensions int    `yaml:"dimensions" mapstructure:"dimensions"`
}

// PathsConfig controls what the Scanner includes and excludes.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"`
	Exclude []string `yaml:"exclude" mapstructure:"exclude"`
}

// BatchConfig controls the BatchOrchestrator's batching and
// concurrency. Concurrency <= 0 derives from concurrency.GetOptimalConcurrency.
type BatchConfig struct {
	Size        int `yaml:"size" mapstructure:"size"`
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// StorageConfig locates the engine's on-disk artifacts.
type StorageConfig struct {
	Directory string `yaml:"directory" mapstructure:"directory"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Model:      "mock-sha256",
			Dimensions: 384,
		},
		Paths: PathsConfig{
			Include: []string{
				"**/*.py", "**/*.ts", "**/*.tsx", "**/*.rs", "**/*.rb",
				"**/*.php", "**/*.java", "**/*.c", "**/*.h",
				"**/*.md", "**/*.rst",
			},
			Exclude: []string{
				".git/**", "node_modules/**", "dist/**", "coverage/**",
			},
		},
		Batch: BatchConfig{
			Size:        32,
			Concurrency: 0,
		},
		Storage: StorageConfig{
			Directory: ".devagent",
		},
	}
}
