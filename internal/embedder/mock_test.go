package embedder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// TEST PLAN: MockEmbedder
//
// - Embedding the same text twice produces identical vectors (determinism
//   is required for stable test fixtures and idempotent re-indexing).
// - Embedding under different modes produces different vectors, so query
//   and passage embeddings of the same text are distinguishable.
// - Vector width matches the configured dimensions.
// - SetEmbedError/SetCloseError make the corresponding call fail.
// - Close is observable via IsClosed.

func TestMockEmbedder_Deterministic(t *testing.T) {
	t.Parallel()
	e := NewMockEmbedder(16)

	v1, err := e.Embed(context.Background(), []string{"hello world"}, ModePassage)
	require.NoError(t, err)
	v2, err := e.Embed(context.Background(), []string{"hello world"}, ModePassage)
	require.NoError(t, err)

	require.Equal(t, v1, v2)
	require.Len(t, v1[0], 16)
}

func TestMockEmbedder_ModeChangesVector(t *testing.T) {
	t.Parallel()
	e := NewMockEmbedder(16)

	query, err := e.Embed(context.Background(), []string{"hello"}, ModeQuery)
	require.NoError(t, err)
	passage, err := e.Embed(context.Background(), []string{"hello"}, ModePassage)
	require.NoError(t, err)

	require.NotEqual(t, query, passage)
}

func TestMockEmbedder_EmbedError(t *testing.T) {
	t.Parallel()
	e := NewMockEmbedder(0)
	e.SetEmbedError(errors.New("boom"))

	_, err := e.Embed(context.Background(), []string{"x"}, ModeQuery)
	require.ErrorContains(t, err, "boom")
}

func TestMockEmbedder_CloseTracksState(t *testing.T) {
	t.Parallel()
	e := NewMockEmbedder(0)
	require.False(t, e.IsClosed())

	require.NoError(t, e.Close())
	require.True(t, e.IsClosed())
}

func TestMockEmbedder_DefaultDimensions(t *testing.T) {
	t.Parallel()
	e := NewMockEmbedder(0)
	require.Equal(t, 384, e.Dimensions())
}
