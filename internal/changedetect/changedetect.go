// Package changedetect classifies the files a repository tracks in its
// prior state against what's currently on disk, ported from the
// teacher's ChangeDetector (internal/indexer/change_detector.go): an
// mtime fast-path avoids hashing unchanged files, falling back to a
// SHA-256 comparison only when mtime has moved.
package changedetect

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/lytics/dev-agent/internal/scan"
	"github.com/lytics/dev-agent/internal/state"
)

// ChangeSet is the result of DetectChanges.
type ChangeSet struct {
	Added     []string
	Changed   []string
	Deleted   []string
	Unchanged []string
}

// Detector compares prior file metadata to the filesystem.
type Detector struct {
	repoRoot string
	scanner  scan.Scanner
}

// New builds a Detector rooted at repoRoot, using scanner in discovery
// mode to enumerate candidate files currently on disk.
func New(repoRoot string, scanner scan.Scanner) *Detector {
	return &Detector{repoRoot: repoRoot, scanner: scanner}
}

// DetectChanges classifies files per spec.md §4.2: stat each previously
// tracked file (deleted if stat fails, changed if its hash differs,
// unchanged otherwise), then discover files on disk to find additions.
func (d *Detector) DetectChanges(ctx context.Context, files map[string]state.FileMetadata) (*ChangeSet, error) {
	changes := &ChangeSet{}
	seen := make(map[string]bool, len(files))

	for path, meta := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		absPath := filepath.Join(d.repoRoot, path)
		info, err := os.Stat(absPath)
		if err != nil {
			changes.Deleted = append(changes.Deleted, path)
			continue
		}
		seen[path] = true

		if info.ModTime().Equal(meta.LastModified) {
			changes.Unchanged = append(changes.Unchanged, path)
			continue
		}

		hash, err := hashFile(absPath)
		if err != nil {
			// Unreadable file encountered during hashing is classified deleted
			// (spec.md §4.2 edge policy).
			changes.Deleted = append(changes.Deleted, path)
			continue
		}

		if hash == meta.Hash {
			changes.Unchanged = append(changes.Unchanged, path)
		} else {
			changes.Changed = append(changes.Changed, path)
		}
	}

	discovered, err := d.scanner.Discover(ctx, scan.Options{RepoRoot: d.repoRoot})
	if err != nil {
		return nil, err
	}
	for _, path := range discovered {
		if _, tracked := files[path]; !tracked {
			changes.Added = append(changes.Added, path)
		}
	}

	return changes, nil
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
