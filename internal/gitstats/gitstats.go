// Package gitstats provides the change-frequency enrichment collaborator:
// per-file commit counts, last-modified dates, and author counts sourced
// from git history. Enrichment failures are non-fatal to the indexing
// engine (spec'd as an optional decoration of stats).
package gitstats

import "context"

// FileHistory is the per-file enrichment record attached to CodeMetadata.
type FileHistory struct {
	CommitCount  int
	LastModified string // ISO-8601; empty if unknown
	AuthorCount  int
}

// Provider sources change-frequency data for a set of repository-relative
// paths. Implementations must treat an unreadable repository (not a git
// checkout, git binary missing) as "no enrichment available" rather than
// an error, per the engine's non-fatal enrichment contract.
type Provider interface {
	// FileHistory returns a FileHistory per requested path, keyed by the
	// same repository-relative path given in paths. Paths git has no
	// history for are omitted, not errored.
	FileHistory(ctx context.Context, repoRoot string, paths []string) (map[string]FileHistory, error)
}
