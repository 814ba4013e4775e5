package scan

import (
	"context"
	"fmt"
)

// DefaultScanner is the tree-sitter-backed Scanner used outside tests. It
// is table-driven over the grammars registered in languageSpecs, plus a
// markdown/rst chunker for documentation files.
type DefaultScanner struct {
	docChunker *docChunker
}

// NewDefaultScanner builds a DefaultScanner. docTargetTokens bounds the
// size of each documentation chunk; 0 uses the default.
func NewDefaultScanner(docTargetTokens int) *DefaultScanner {
	return &DefaultScanner{docChunker: newDocChunker(docTargetTokens)}
}

func (s *DefaultScanner) Discover(ctx context.Context, opts Options) ([]string, error) {
	d, err := newDiscovery(opts)
	if err != nil {
		return nil, fmt.Errorf("scan: discover: %w", err)
	}
	return d.walk()
}

func (s *DefaultScanner) Scan(ctx context.Context, opts Options) (*Result, error) {
	paths, err := s.Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, relPath := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		lang := LanguageForPath(relPath)
		source, err := readFile(opts.RepoRoot, relPath)
		if err != nil {
			return nil, fmt.Errorf("scan: read %s: %w", relPath, err)
		}

		var docs []Document
		switch lang {
		case "markdown":
			docs = s.docChunker.chunk(relPath, string(source))
		default:
			spec, ok := languageSpecs[lang]
			if !ok {
				continue
			}
			docs, err = newTreeSitterExtractor(lang, spec).extract(relPath, source)
			if err != nil {
				return nil, err
			}
		}

		result.Documents = append(result.Documents, docs...)
		result.Stats.FilesScanned++
	}

	return result, nil
}
