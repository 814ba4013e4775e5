package indexengine

import (
	"context"

	"github.com/lytics/dev-agent/internal/metricsstore"
	"github.com/lytics/dev-agent/internal/scan"
	"github.com/lytics/dev-agent/internal/stats"
)

// collectCodeMetadata builds per-file CodeMetadata for a set of paths,
// combining the aggregator's per-file contribution (lines, component
// counts) with optional git change-frequency enrichment. Any git
// failure is swallowed: enrichment is best-effort per spec.md §4.1
// step 7 ("pluggable MetricsCollector, non-fatal").
func (e *Engine) collectCodeMetadata(ctx context.Context, contributions map[string]stats.FileContribution, paths []string) []metricsstore.CodeMetadata {
	var history map[string]struct {
		CommitCount  int
		LastModified string
		AuthorCount  int
	}

	if e.cfg.GitStats != nil {
		enriched, err := e.cfg.GitStats.FileHistory(ctx, e.cfg.RepoRoot, paths)
		if err != nil {
			e.cfg.Logger.Printf("git history enrichment failed: %v", err)
		} else {
			history = make(map[string]struct {
				CommitCount  int
				LastModified string
				AuthorCount  int
			}, len(enriched))
			for path, h := range enriched {
				history[path] = struct {
					CommitCount  int
					LastModified string
					AuthorCount  int
				}{CommitCount: h.CommitCount, LastModified: h.LastModified, AuthorCount: h.AuthorCount}
			}
		}
	}

	out := make([]metricsstore.CodeMetadata, 0, len(paths))
	for _, path := range paths {
		contrib := contributions[path]
		numFuncs := contrib.ComponentCounts[string(scan.ComponentFunction)] + contrib.ComponentCounts[string(scan.ComponentMethod)]
		numImports := 0 // imports are per-document metadata, not a per-file aggregate the Aggregator tracks

		cm := metricsstore.CodeMetadata{
			FilePath:     path,
			LinesOfCode:  contrib.Lines,
			NumFunctions: numFuncs,
			NumImports:   numImports,
		}
		if h, ok := history[path]; ok {
			cm.CommitCount = h.CommitCount
			cm.LastModified = h.LastModified
			cm.AuthorCount = h.AuthorCount
		}
		out = append(out, cm)
	}
	return out
}
