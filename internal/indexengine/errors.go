package indexengine

import "fmt"

// Kind tags an IndexError with the error taxonomy from spec.md §7. It is
// a classification, not a distinct Go type, so callers can switch on it
// without a type assertion per error source.
type Kind string

const (
	KindScanner     Kind = "scanner"
	KindStorage     Kind = "storage"
	KindState       Kind = "state"
	KindConfig      Kind = "config"
	KindIO          Kind = "io"
	KindConcurrency Kind = "concurrency"
	KindTimeout     Kind = "timeout"
)

// IndexError wraps an underlying error with a Kind tag. Scanner, state,
// and vector-store-init errors are fatal and returned wrapped in an
// IndexError; batch/delete failures are recorded in a Result's Errors
// slice instead of being returned.
type IndexError struct {
	Kind Kind
	Path string // repository-relative path, when the error is file-scoped
	Err  error
}

func (e *IndexError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s error for %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

// ConcurrentIndexError is returned when index/update is called while
// another is already running on the same engine.
type ConcurrentIndexError struct{}

func (e *ConcurrentIndexError) Error() string {
	return "indexengine: an index or update call is already in progress"
}
