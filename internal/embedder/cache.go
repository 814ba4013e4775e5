package embedder

import (
	"context"
	"fmt"

	"github.com/maypok86/otter"
)

// DefaultCacheCapacity bounds the number of distinct (mode, text) pairs
// CachingEmbedder keeps in memory.
const DefaultCacheCapacity = 4096

type cacheKey struct {
	mode Mode
	text string
}

// CachingEmbedder decorates an Embedder with an in-memory cache keyed by
// (mode, text), ported from the teacher's graph searcher file cache
// (internal/graph/searcher.go's otter.Cache[string, []string]). Repeated
// searches and re-indexes of unchanged documents often re-embed the same
// text; this avoids paying the embedding cost twice.
type CachingEmbedder struct {
	inner Embedder
	cache otter.Cache[cacheKey, []float32]
}

// NewCachingEmbedder wraps inner with an LRU cache holding up to
// capacity entries.
func NewCachingEmbedder(inner Embedder, capacity int) (*CachingEmbedder, error) {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	cache, err := otter.MustBuilder[cacheKey, []float32](capacity).CollectStats().Build()
	if err != nil {
		return nil, fmt.Errorf("embedder: build cache: %w", err)
	}
	return &CachingEmbedder{inner: inner, cache: cache}, nil
}

// Embed returns cached vectors for texts already seen under mode, and
// delegates only the misses to the wrapped Embedder.
func (c *CachingEmbedder) Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error) {
	results := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		if v, ok := c.cache.Get(cacheKey{mode: mode, text: text}); ok {
			results[i] = v
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return results, nil
	}

	embedded, err := c.inner.Embed(ctx, missTexts, mode)
	if err != nil {
		return nil, err
	}
	for j, idx := range missIdx {
		results[idx] = embedded[j]
		c.cache.Set(cacheKey{mode: mode, text: missTexts[j]}, embedded[j])
	}
	return results, nil
}

func (c *CachingEmbedder) Dimensions() int { return c.inner.Dimensions() }
func (c *CachingEmbedder) ModelID() string { return c.inner.ModelID() }

func (c *CachingEmbedder) Close() error {
	c.cache.Close()
	return c.inner.Close()
}
