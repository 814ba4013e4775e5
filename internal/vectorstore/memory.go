package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/lytics/dev-agent/internal/embedder"
)

// MemoryStore is a mutex-protected in-memory VectorStore used by the
// engine's own tests, implementing exact cosine similarity over a plain
// map instead of a sqlite-vec virtual table.
type MemoryStore struct {
	mu       sync.RWMutex
	embedder embedder.Embedder
	docs     map[string]Document
	closed   bool
}

// NewMemoryStore returns a MemoryStore using emb to compute vectors for
// documents that don't already carry one.
func NewMemoryStore(emb embedder.Embedder) *MemoryStore {
	return &MemoryStore{embedder: emb, docs: make(map[string]Document)}
}

func (s *MemoryStore) Initialize(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) AddDocuments(ctx context.Context, docs []Document) error {
	var toEmbed []string
	var toEmbedIdx []int
	for i, d := range docs {
		if d.Vector == nil {
			toEmbed = append(toEmbed, d.Text)
			toEmbedIdx = append(toEmbedIdx, i)
		}
	}
	if len(toEmbed) > 0 {
		vectors, err := s.embedder.Embed(ctx, toEmbed, embedder.ModePassage)
		if err != nil {
			return fmt.Errorf("vectorstore: embed batch: %w", err)
		}
		for i, idx := range toEmbedIdx {
			docs[idx].Vector = vectors[i]
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range docs {
		s.docs[d.ID] = d
	}
	return nil
}

func (s *MemoryStore) DeleteDocuments(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.docs, id)
	}
	return nil
}

func (s *MemoryStore) Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error) {
	vectors, err := s.embedder.Embed(ctx, []string{query}, embedder.ModeQuery)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: embed query: %w", err)
	}
	queryVec := vectors[0]

	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		result SearchResult
	}
	var candidates []scored
	for _, d := range s.docs {
		if !matchesFilter(d.Metadata, opts.Filter) {
			continue
		}
		score := cosineSimilarity(queryVec, d.Vector)
		if score < opts.ScoreThreshold {
			continue
		}
		candidates = append(candidates, scored{SearchResult{ID: d.ID, Score: score, Text: d.Text, Metadata: d.Metadata}})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].result.Score > candidates[j].result.Score })

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	results := make([]SearchResult, len(candidates))
	for i, c := range candidates {
		results[i] = c.result
	}
	return results, nil
}

func (s *MemoryStore) GetStats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{TotalDocuments: len(s.docs)}, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// IsClosed reports whether Close has been called; used by engine tests to
// assert lifecycle ownership.
func (s *MemoryStore) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
