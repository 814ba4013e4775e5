package state

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Store loads and saves State to a JSON file, atomically (write to a
// temp file, then rename), so the file is never observed half-written.
// Ported from the teacher's CacheMetadata save path
// (internal/cache/metadata.go), which writes to a ".tmp" sibling and
// renames over the target.
type Store struct {
	path   string
	logger *log.Logger
}

// NewStore builds a Store persisting to path.
func NewStore(path string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(os.Stderr, "state: ", log.LstdFlags)
	}
	return &Store{path: path, logger: logger}
}

// Load reads and validates the state file. A missing file returns a nil
// State and no error (first run). A corrupt or structurally invalid file
// is logged and treated as a miss, not returned as an error, per
// spec.md §4.5.
func (s *Store) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("state: read %s: %w", s.path, err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Printf("state file %s is corrupt (%v); starting fresh", s.path, err)
		return nil, nil
	}

	if err := Validate(&st); err != nil {
		s.logger.Printf("state file %s failed validation (%v); starting fresh", s.path, err)
		return nil, nil
	}

	if st.Version != CurrentVersion {
		s.logger.Printf("state file %s has version %q, expected %q; continuing but a full re-index is recommended", s.path, st.Version, CurrentVersion)
	}

	return &st, nil
}

// Save serializes state atomically: write to a temp file in the same
// directory, then rename over the target. A failure here is fatal to the
// caller, since a lost write would desynchronize state from the vector
// store.
func (s *Store) Save(st *State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("state: create directory for %s: %w", s.path, err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("state: marshal: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("state: write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("state: rename temp file into place: %w", err)
	}

	return nil
}

// Clean removes the persisted state file. Idempotent: removing an
// already-absent file is not an error.
func (s *Store) Clean() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("state: remove %s: %w", s.path, err)
	}
	return nil
}

// EnsureStorageDirectory creates dir (and any missing parents) if it does
// not already exist, ported from the teacher's EnsureCacheLocation
// directory-creation step (internal/cache/cache.go). Callers use this to
// prepare the storage directory before opening the state, metrics, and
// vector store files that live inside it.
func EnsureStorageDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("state: create storage directory %s: %w", dir, err)
	}
	return nil
}
