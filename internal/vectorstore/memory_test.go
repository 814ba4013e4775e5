package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lytics/dev-agent/internal/embedder"
)

// TEST PLAN: MemoryStore
//
// - A document added then searched for its own text comes back first
//   (cosine similarity of a vector with itself is 1).
// - DeleteDocuments removes a document from subsequent search results.
// - ScoreThreshold filters out low-similarity results.
// - Filter restricts results to documents with matching metadata.
// - GetStats reports the current document count.
// - Close is observable via IsClosed.

func newTestStore(t *testing.T) (*MemoryStore, *embedder.MockEmbedder) {
	t.Helper()
	emb := embedder.NewMockEmbedder(32)
	return NewMemoryStore(emb), emb
}

func TestMemoryStore_AddAndSearchFindsExactMatch(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Initialize(ctx))
	require.NoError(t, store.AddDocuments(ctx, []Document{
		{ID: "a", Text: "parses json config files"},
		{ID: "b", Text: "renders a web page"},
	}))

	results, err := store.Search(ctx, "parses json config files", SearchOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "a", results[0].ID)
	require.InDelta(t, 1.0, float64(results[0].Score), 0.001)
}

func TestMemoryStore_DeleteRemovesFromSearch(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddDocuments(ctx, []Document{{ID: "a", Text: "hello"}}))
	require.NoError(t, store.DeleteDocuments(ctx, []string{"a"}))

	results, err := store.Search(ctx, "hello", SearchOptions{Limit: 10})
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestMemoryStore_FilterRestrictsResults(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddDocuments(ctx, []Document{
		{ID: "a", Text: "x", Metadata: map[string]any{"language": "python"}},
		{ID: "b", Text: "x", Metadata: map[string]any{"language": "go"}},
	}))

	results, err := store.Search(ctx, "x", SearchOptions{Limit: 10, Filter: map[string]any{"language": "go"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "b", results[0].ID)
}

func TestMemoryStore_ScoreThresholdExcludesDissimilar(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddDocuments(ctx, []Document{{ID: "a", Text: "alpha"}}))

	results, err := store.Search(ctx, "alpha", SearchOptions{Limit: 10, ScoreThreshold: 1.1})
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestMemoryStore_GetStatsAndClose(t *testing.T) {
	t.Parallel()
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddDocuments(ctx, []Document{{ID: "a", Text: "x"}, {ID: "b", Text: "y"}}))

	stats, err := store.GetStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalDocuments)

	require.False(t, store.IsClosed())
	require.NoError(t, store.Close())
	require.True(t, store.IsClosed())
}
