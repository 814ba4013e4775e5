package state

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingRepositoryPath indicates a state document with no
	// repositoryPath, which cannot be structurally valid.
	ErrMissingRepositoryPath = errors.New("state: missing repositoryPath")

	// ErrInvalidEmbeddingDimension indicates a non-positive dimension.
	ErrInvalidEmbeddingDimension = errors.New("state: invalid embeddingDimension")

	// ErrNilFiles indicates the files map was not initialized.
	ErrNilFiles = errors.New("state: files map is nil")

	// ErrFileMetadataMissingHash indicates a tracked file with no hash,
	// which would make change detection unsound.
	ErrFileMetadataMissingHash = errors.New("state: file metadata missing hash")
)

// Validate structurally validates a loaded State. A state that fails
// validation must be treated as empty by the caller (Store.Load),
// not propagated as a fatal error.
func Validate(s *State) error {
	if s == nil {
		return fmt.Errorf("state: nil state")
	}
	if s.RepositoryPath == "" {
		return ErrMissingRepositoryPath
	}
	if s.EmbeddingDimension <= 0 {
		return ErrInvalidEmbeddingDimension
	}
	if s.Files == nil {
		return ErrNilFiles
	}
	for path, meta := range s.Files {
		if meta.Hash == "" {
			return fmt.Errorf("%w: %s", ErrFileMetadataMissingHash, path)
		}
	}
	return nil
}

// EmbeddingCompatible reports whether s was produced with the given
// (model, dimension) tuple. A mismatch forces a full re-index per
// spec.md §4.5.
func EmbeddingCompatible(s *State, model string, dimension int) bool {
	return s.EmbeddingModel == model && s.EmbeddingDimension == dimension
}
