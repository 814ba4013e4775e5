package cliapp

// TEST PLAN: writeDefaultConfig
//
// 1. Writing into a fresh directory creates .devagent/config.yml with
//    the default settings and reports wrote=true.
// 2. Calling it again on top of an existing file is a no-op and reports
//    wrote=false, leaving the file's contents untouched.

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefaultConfig_CreatesFile(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	path, wrote, err := writeDefaultConfig(root)
	require.NoError(t, err)
	assert.True(t, wrote)
	assert.Equal(t, filepath.Join(root, ".devagent", "config.yml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mock-sha256")
}

func TestWriteDefaultConfig_DoesNotOverwrite(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	_, wrote, err := writeDefaultConfig(root)
	require.NoError(t, err)
	require.True(t, wrote)

	path := filepath.Join(root, ".devagent", "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("embedding:\n  model: custom\n"), 0o644))

	_, wrote, err = writeDefaultConfig(root)
	require.NoError(t, err)
	assert.False(t, wrote)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "custom")
}
