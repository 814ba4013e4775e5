// Package state implements the persistent IndexerState: load/save with
// atomic rename, schema validation that treats corrupt state as empty,
// and the embedding-compatibility check that forces a full re-index on a
// model swap.
package state

import (
	"time"

	"github.com/lytics/dev-agent/internal/stats"
)

// CurrentVersion is the schema version written by this build. A loaded
// state with a different version is accepted (soft mismatch, per
// spec.md §4.5); Store.Load logs a warning but still returns it.
const CurrentVersion = "1"

// FileMetadata is one entry per tracked file in State.Files.
type FileMetadata struct {
	Path         string    `json:"path"`
	Hash         string    `json:"hash"`
	LastModified time.Time `json:"lastModified"`
	LastIndexed  time.Time `json:"lastIndexed"`
	DocumentIDs  []string  `json:"documentIds"`
	Size         int64     `json:"size"`
	Language     string    `json:"language"`

	// Lines and ComponentCounts mirror stats.FileContribution for this
	// file at the time it was last indexed, so StatsMerger can subtract
	// exactly what this file contributed when it is later changed or
	// deleted, without re-scanning it.
	Lines           int            `json:"lines,omitempty"`
	ComponentCounts map[string]int `json:"componentCounts,omitempty"`
}

// State is the persistent root, serialized to <storage>/indexer-state.json.
type State struct {
	Version                 string                  `json:"version"`
	EmbeddingModel          string                  `json:"embeddingModel"`
	EmbeddingDimension      int                     `json:"embeddingDimension"`
	RepositoryPath          string                  `json:"repositoryPath"`
	LastIndexTime           time.Time               `json:"lastIndexTime"`
	LastUpdate              *time.Time              `json:"lastUpdate,omitempty"`
	Files                   map[string]FileMetadata `json:"files"`
	Stats                   stats.DetailedStats     `json:"stats"`
	IncrementalUpdatesSince int                     `json:"incrementalUpdatesSince"`
}

// New returns an empty State for a fresh index.
func New(repoPath, embeddingModel string, embeddingDimension int) *State {
	return &State{
		Version:            CurrentVersion,
		EmbeddingModel:     embeddingModel,
		EmbeddingDimension: embeddingDimension,
		RepositoryPath:     repoPath,
		Files:              make(map[string]FileMetadata),
		Stats:              stats.NewDetailedStats(),
	}
}

// IncrementalUpdateThreshold is the incrementalUpdatesSince count past
// which consumers receive a "consider full reindex" warning.
const IncrementalUpdateThreshold = 10
