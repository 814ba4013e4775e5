package state

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate_RejectsMissingRepositoryPath(t *testing.T) {
	t.Parallel()
	s := New("", "m", 1)
	require.ErrorIs(t, Validate(s), ErrMissingRepositoryPath)
}

func TestValidate_RejectsNonPositiveDimension(t *testing.T) {
	t.Parallel()
	s := New("/repo", "m", 0)
	require.ErrorIs(t, Validate(s), ErrInvalidEmbeddingDimension)
}

func TestValidate_RejectsFileMissingHash(t *testing.T) {
	t.Parallel()
	s := New("/repo", "m", 1)
	s.Files["a.go"] = FileMetadata{Path: "a.go"}
	require.ErrorIs(t, Validate(s), ErrFileMetadataMissingHash)
}

func TestValidate_AcceptsWellFormedState(t *testing.T) {
	t.Parallel()
	s := New("/repo", "m", 1)
	s.Files["a.go"] = FileMetadata{Path: "a.go", Hash: "abc"}
	require.NoError(t, Validate(s))
}

func TestEmbeddingCompatible(t *testing.T) {
	t.Parallel()
	s := New("/repo", "mock-sha256", 384)
	require.True(t, EmbeddingCompatible(s, "mock-sha256", 384))
	require.False(t, EmbeddingCompatible(s, "mock-sha256", 768))
	require.False(t, EmbeddingCompatible(s, "other-model", 384))
}
