// Package vectorstore defines the persistent vector index collaborator
// and two implementations: a sqlite-vec backed store for production use
// and an in-memory store for tests. Per the vector-store contract, the
// store itself owns invoking the embedder: callers may hand over a
// precomputed Vector, but when one is absent the store embeds Text before
// persisting it.
package vectorstore

import "context"

// Document is one unit stored in the index. Vector is optional; when nil
// the store computes it via its configured Embedder.
type Document struct {
	ID       string
	Text     string
	Metadata map[string]any
	Vector   []float32
}

// SearchResult is one hit from Search, ordered most-similar first.
type SearchResult struct {
	ID       string
	Score    float32 // higher is more similar, in [0,1] for cosine-based stores
	Text     string
	Metadata map[string]any
}

// SearchOptions narrows a Search call.
type SearchOptions struct {
	Limit          int
	ScoreThreshold float32
	// Filter restricts results to documents whose Metadata matches every
	// key/value pair given here (exact equality).
	Filter map[string]any
}

// Stats summarizes the current contents of the store.
type Stats struct {
	TotalDocuments int
}

// VectorStore is the persistent vector index contract (spec.md §6).
type VectorStore interface {
	Initialize(ctx context.Context) error
	AddDocuments(ctx context.Context, docs []Document) error
	DeleteDocuments(ctx context.Context, ids []string) error
	Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error)
	GetStats(ctx context.Context) (Stats, error)
	Close() error
}
