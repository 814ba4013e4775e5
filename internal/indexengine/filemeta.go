package indexengine

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	"github.com/lytics/dev-agent/internal/scan"
	"github.com/lytics/dev-agent/internal/state"
)

// buildFileMetadata stats and hashes each path (repository-relative)
// and groups docsByPath's document ids under it, producing the
// FileMetadata entries state.Save expects. A path present in paths but
// absent from docsByPath is recorded with an empty DocumentIDs slice
// (spec.md §4.2: files with zero parsed components are still tracked).
func buildFileMetadata(repoRoot string, paths []string, docsByPath map[string][]scan.Document, now time.Time) (map[string]state.FileMetadata, error) {
	out := make(map[string]state.FileMetadata, len(paths))

	for _, relPath := range paths {
		absPath := filepath.Join(repoRoot, relPath)
		info, err := os.Stat(absPath)
		if err != nil {
			return nil, &IndexError{Kind: KindIO, Path: relPath, Err: err}
		}

		hash, err := hashFile(absPath)
		if err != nil {
			return nil, &IndexError{Kind: KindIO, Path: relPath, Err: err}
		}

		docs := docsByPath[relPath]
		ids := make([]string, len(docs))
		language := scan.LanguageForPath(relPath)
		lines := 0
		componentCounts := make(map[string]int)
		for i, d := range docs {
			ids[i] = d.ID
			language = d.Language
			if n := d.Metadata.EndLine - d.Metadata.StartLine + 1; n > 0 {
				lines += n
			}
			componentCounts[string(d.Metadata.Type)]++
		}

		out[relPath] = state.FileMetadata{
			Path:            relPath,
			Hash:            hash,
			LastModified:    info.ModTime(),
			LastIndexed:     now,
			DocumentIDs:     ids,
			Size:            info.Size(),
			Language:        language,
			Lines:           lines,
			ComponentCounts: componentCounts,
		}
	}
	return out, nil
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// groupByPath buckets a document stream by its source file, preserving
// per-file document order.
func groupByPath(docs []scan.Document) map[string][]scan.Document {
	out := make(map[string][]scan.Document)
	for _, d := range docs {
		out[d.Metadata.File] = append(out[d.Metadata.File], d)
	}
	return out
}
