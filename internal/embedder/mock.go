package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sync"
)

// MockEmbedder generates deterministic embeddings by hashing input text,
// so the same text always produces the same vector across runs without a
// real model runtime. Ported from the teacher's embed.MockProvider.
type MockEmbedder struct {
	mu          sync.Mutex
	dimensions  int
	closeCalled bool
	closeError  error
	embedError  error
}

// NewMockEmbedder returns a MockEmbedder with the given vector width.
// dimensions <= 0 defaults to 384, matching common sentence-transformer
// output width.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions}
}

// SetEmbedError configures Embed to fail with err on every call until it
// is called again with nil.
func (e *MockEmbedder) SetEmbedError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.embedError = err
}

// SetCloseError configures Close to fail.
func (e *MockEmbedder) SetCloseError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeError = err
}

// IsClosed reports whether Close has been called.
func (e *MockEmbedder) IsClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closeCalled
}

func (e *MockEmbedder) Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.embedError != nil {
		return nil, e.embedError
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		hash := sha256.Sum256([]byte(string(mode) + ":" + text))

		vector := make([]float32, e.dimensions)
		for j := 0; j < e.dimensions; j++ {
			offset := (j * 4) % len(hash)
			val := binary.BigEndian.Uint32(hash[offset : offset+4])
			vector[j] = (float32(val)/float32(1<<32))*2.0 - 1.0
		}
		vectors[i] = vector
	}
	return vectors, nil
}

func (e *MockEmbedder) Dimensions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dimensions
}

func (e *MockEmbedder) ModelID() string {
	return "mock-sha256"
}

func (e *MockEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeCalled = true
	return e.closeError
}
