package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TEST PLAN: Loader
//
// 1. Load with no config file and no env vars returns the defaults.
// 2. A .devagent/config.yml file overrides a default field.
// 3. A DEV_AGENT_* environment variable overrides the config file.

func TestLoader_DefaultsWhenNoFileOrEnv(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Embedding.Model, cfg.Embedding.Model)
	assert.Equal(t, Default().Batch.Size, cfg.Batch.Size)
}

func TestLoader_ConfigFileOverridesDefaults(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".devagent"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".devagent", "config.yml"), []byte("embedding:\n  model: custom-model\n  dimensions: 768\n"), 0o644))

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)
	assert.Equal(t, "custom-model", cfg.Embedding.Model)
	assert.Equal(t, 768, cfg.Embedding.Dimensions)
}

func TestLoader_EnvOverridesConfigFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".devagent"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".devagent", "config.yml"), []byte("embedding:\n  model: from-file\n"), 0o644))

	t.Setenv("DEV_AGENT_EMBEDDING_MODEL", "from-env")

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Embedding.Model)
}
