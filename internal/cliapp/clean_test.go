package cliapp

// TEST PLAN: cleanStorage
//
// 1. No storage directory yet: reports cleanActionNotFound, nothing touched.
// 2. Storage exists, force=false: reports cleanActionNeedsConfirm, files survive.
// 3. Storage exists, force=true: files are removed, reports cleanActionCleaned.

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanStorage_NoStorageYet(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	dir, action, err := cleanStorage(root, false)
	require.NoError(t, err)
	assert.Equal(t, cleanActionNotFound, action)
	assert.Equal(t, filepath.Join(root, ".devagent"), dir)
}

func TestCleanStorage_NeedsConfirmation(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	storageDir := filepath.Join(root, ".devagent")
	require.NoError(t, os.MkdirAll(storageDir, 0o755))
	statePath := filepath.Join(storageDir, stateFileName)
	require.NoError(t, os.WriteFile(statePath, []byte("{}"), 0o644))

	dir, action, err := cleanStorage(root, false)
	require.NoError(t, err)
	assert.Equal(t, cleanActionNeedsConfirm, action)
	assert.Equal(t, storageDir, dir)

	_, err = os.Stat(statePath)
	assert.NoError(t, err, "file must survive an unforced clean")
}

func TestCleanStorage_RemovesFilesWhenForced(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	storageDir := filepath.Join(root, ".devagent")
	require.NoError(t, os.MkdirAll(storageDir, 0o755))
	for _, name := range []string{stateFileName, metricsDBName, vectorsDBName} {
		require.NoError(t, os.WriteFile(filepath.Join(storageDir, name), []byte("x"), 0o644))
	}

	dir, action, err := cleanStorage(root, true)
	require.NoError(t, err)
	assert.Equal(t, cleanActionCleaned, action)
	assert.Equal(t, storageDir, dir)

	for _, name := range []string{stateFileName, metricsDBName, vectorsDBName} {
		_, err := os.Stat(filepath.Join(storageDir, name))
		assert.True(t, os.IsNotExist(err))
	}
}
