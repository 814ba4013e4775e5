package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyModel indicates a missing embedding model id.
	ErrEmptyModel = errors.New("config: empty embedding model")

	// ErrInvalidDimensions indicates a non-positive embedding dimension.
	ErrInvalidDimensions = errors.New("config: invalid embedding dimensions")

	// ErrInvalidBatchSize indicates a non-positive batch size.
	ErrInvalidBatchSize = errors.New("config: invalid batch size")

	// ErrInvalidConcurrency indicates a negative concurrency override.
	ErrInvalidConcurrency = errors.New("config: invalid batch concurrency")

	// ErrEmptyStorageDirectory indicates a missing storage directory.
	ErrEmptyStorageDirectory = errors.New("config: empty storage directory")
)

// Validate checks that cfg is structurally complete and internally
// consistent.
func Validate(cfg *Config) error {
	var errs []error

	if strings.TrimSpace(cfg.Embedding.Model) == "" {
		errs = append(errs, ErrEmptyModel)
	}
	if cfg.Embedding.Dimensions <= 0 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidDimensions, cfg.Embedding.Dimensions))
	}
	if cfg.Batch.Size <= 0 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, cfg.Batch.Size))
	}
	if cfg.Batch.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidConcurrency, cfg.Batch.Concurrency))
	}
	if strings.TrimSpace(cfg.Storage.Directory) == "" {
		errs = append(errs, ErrEmptyStorageDirectory)
	}

	return joinErrors(errs)
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
