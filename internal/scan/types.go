// Package scan extracts structured code components ("documents") from a
// source tree. The Scanner interface is the contract the indexing engine
// depends on; DefaultScanner is a tree-sitter-backed reference
// implementation and MockScanner is a deterministic test double.
package scan

import "context"

// ComponentType enumerates the kinds of components a Scanner can produce.
type ComponentType string

const (
	ComponentFunction  ComponentType = "function"
	ComponentClass     ComponentType = "class"
	ComponentMethod    ComponentType = "method"
	ComponentInterface ComponentType = "interface"
	ComponentTypeDecl  ComponentType = "type"
	ComponentModule    ComponentType = "module"
	ComponentDoc       ComponentType = "doc"
)

// Metadata is the typed view of a Document's known fields, with a
// spill-over map for anything a particular language or future extension
// wants to attach without widening this struct.
type Metadata struct {
	File       string   `json:"file"`
	Path       string   `json:"path"`
	Type       ComponentType `json:"type"`
	Name       string   `json:"name"`
	StartLine  int      `json:"startLine"`
	EndLine    int      `json:"endLine"`
	Signature  string   `json:"signature,omitempty"`
	Snippet    string   `json:"snippet,omitempty"`
	Imports    []string `json:"imports,omitempty"`
	Exported   bool     `json:"exported,omitempty"`
	Docstring  string   `json:"docstring,omitempty"`

	Extra map[string]any `json:"extra,omitempty"`
}

// Document is one extracted code component, stable across re-scans of an
// unchanged file (same id, same text) so re-indexing is idempotent.
type Document struct {
	ID       string   `json:"id"`
	Language string   `json:"language"`
	Metadata Metadata `json:"metadata"`
	Text     string   `json:"text"`
}

// Stats summarizes a single scan invocation.
type Stats struct {
	FilesScanned int
}

// Result is what Scan returns: the documents produced plus scan stats.
type Result struct {
	Documents []Document
	Stats     Stats
}

// Options configures a Scan call.
type Options struct {
	RepoRoot string
	// Include, when non-empty, restricts scanning to these repo-relative
	// paths and takes precedence over Exclude.
	Include []string
	// Exclude holds additional glob patterns layered on top of the
	// scanner's default excludes.
	Exclude []string
	// Languages restricts scanning to this set when non-empty.
	Languages []string
}

// Scanner turns a source tree (or a subset of it) into a document stream.
type Scanner interface {
	Scan(ctx context.Context, opts Options) (*Result, error)

	// Discover enumerates candidate files currently on disk without
	// parsing them, honoring Include/Exclude/Languages the same way Scan
	// does. Used by ChangeDetector to find files newly added to the tree.
	Discover(ctx context.Context, opts Options) ([]string, error)
}
