// Package stats implements the StatsAggregator (accumulate per-file,
// per-language, per-component-type, per-package counters from a document
// stream) and StatsMerger (a pure function combining aggregate stats with
// incremental changes), grounded in the teacher's aggregation-by-walk
// style seen across internal/indexer.
package stats

// LanguageStats is the per-language bucket of DetailedStats.byLanguage.
type LanguageStats struct {
	Files      int `json:"files"`
	Components int `json:"components"`
	Lines      int `json:"lines"`
}

// PackageStats is the per-package bucket of DetailedStats.byPackage.
type PackageStats struct {
	Name       string         `json:"name"`
	Path       string         `json:"path"`
	Files      int            `json:"files"`
	Components int            `json:"components"`
	Languages  map[string]int `json:"languages"`
}

// DetailedStats is the aggregate stats snapshot persisted in IndexerState
// and rebuilt by StatsAggregator, or recomputed by StatsMerger.
type DetailedStats struct {
	TotalFiles       int                      `json:"totalFiles"`
	TotalDocuments   int                      `json:"totalDocuments"`
	TotalVectors     int                      `json:"totalVectors"`
	ByLanguage       map[string]LanguageStats `json:"byLanguage"`
	ByComponentType  map[string]int           `json:"byComponentType"`
	ByPackage        map[string]PackageStats  `json:"byPackage"`
}

// NewDetailedStats returns a DetailedStats with all maps initialized, so
// callers never have to nil-check before indexing into it.
func NewDetailedStats() DetailedStats {
	return DetailedStats{
		ByLanguage:      make(map[string]LanguageStats),
		ByComponentType: make(map[string]int),
		ByPackage:       make(map[string]PackageStats),
	}
}

// FileContribution is what one file added to DetailedStats the last time
// it was indexed; StatsMerger subtracts this when the file changes or is
// deleted. Recomputed per-file by StatsAggregator alongside the aggregate.
type FileContribution struct {
	Path            string
	Language        string
	PackageRoot     string
	PackageName     string
	Lines           int
	ComponentCounts map[string]int // component type -> count contributed by this file
}
