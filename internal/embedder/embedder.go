// Package embedder defines the embedding-model collaborator the vector
// store uses to turn document text into vectors, plus a deterministic
// mock implementation for environments without a real model runtime.
package embedder

import "context"

// Mode selects how a text should be embedded. Search queries and stored
// passages are sometimes embedded with different instructions by a real
// model, so callers carry the distinction through to the embedder.
type Mode string

const (
	ModeQuery   Mode = "query"
	ModePassage Mode = "passage"
)

// Embedder maps text to fixed-width float vectors. Implementations fix
// (ModelID, Dimensions) for their lifetime; IndexerState records both so a
// model change is detected and triggers a full re-index.
type Embedder interface {
	// Embed converts texts into vectors, one per input, in order.
	Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error)

	// Dimensions returns the fixed width of vectors this embedder produces.
	Dimensions() int

	// ModelID identifies the embedding model, persisted in IndexerState
	// so a model swap is detectable across runs.
	ModelID() string

	// Close releases any resources held by the embedder.
	Close() error
}
