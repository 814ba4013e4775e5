package scan

import (
	"context"
	"sync"
)

// MockScanner is a deterministic test double: it returns a fixed document
// set regardless of the repo tree on disk. Modeled on the teacher's
// embed.MockProvider (canned, inspectable, thread-safe).
type MockScanner struct {
	mu        sync.Mutex
	Documents []Document
	Paths     []string
	scanCalls int
	scanErr   error
}

// NewMockScanner returns a MockScanner seeded with the given documents.
// Discover reports the distinct file paths those documents reference
// unless overridden via Paths.
func NewMockScanner(docs []Document) *MockScanner {
	m := &MockScanner{Documents: docs}
	seen := map[string]bool{}
	for _, d := range docs {
		if !seen[d.Metadata.File] {
			seen[d.Metadata.File] = true
			m.Paths = append(m.Paths, d.Metadata.File)
		}
	}
	return m
}

// SetScanError configures Scan to fail on its next call.
func (m *MockScanner) SetScanError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanErr = err
}

// ScanCalls reports how many times Scan has been invoked.
func (m *MockScanner) ScanCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scanCalls
}

func (m *MockScanner) Scan(ctx context.Context, opts Options) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scanCalls++
	if m.scanErr != nil {
		return nil, m.scanErr
	}

	docs := m.Documents
	if len(opts.Include) > 0 {
		included := map[string]bool{}
		for _, p := range opts.Include {
			included[p] = true
		}
		docs = nil
		for _, d := range m.Documents {
			if included[d.Metadata.File] {
				docs = append(docs, d)
			}
		}
	}

	files := map[string]bool{}
	for _, d := range docs {
		files[d.Metadata.File] = true
	}

	return &Result{Documents: docs, Stats: Stats{FilesScanned: len(files)}}, nil
}

func (m *MockScanner) Discover(ctx context.Context, opts Options) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Paths...), nil
}
