package stats

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/lytics/dev-agent/internal/scan"
)

// manifestNames are checked, nearest ancestor first, to find a file's
// owning package root. Chosen to cover every language the Scanner
// extracts from.
var manifestNames = []string{
	"go.mod", "package.json", "Cargo.toml", "pyproject.toml", "setup.py",
	"Gemfile", "composer.json", "pom.xml", "build.gradle",
}

// PackageResolver maps a repository-relative file path to its owning
// package's root path and display name. The resolver built by
// NewDefaultPackageResolver walks ancestor directories looking for a
// manifest file; the repository root is the fallback when none is found.
type PackageResolver func(relPath string) (root, name string)

// NewDefaultPackageResolver builds a PackageResolver that looks for a
// manifest file on disk in the file's own directory and then each parent
// directory, up to and including repoRoot.
func NewDefaultPackageResolver(repoRoot string) PackageResolver {
	return func(relPath string) (string, string) {
		dir := filepath.Dir(relPath)
		for {
			for _, manifest := range manifestNames {
				if _, err := os.Stat(filepath.Join(repoRoot, dir, manifest)); err == nil {
					name := filepath.Base(dir)
					if dir == "." {
						name = filepath.Base(repoRoot)
					}
					return dir, trimEmptyPackageName(name)
				}
			}
			if dir == "." || dir == "/" {
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
		return ".", trimEmptyPackageName(filepath.Base(repoRoot))
	}
}

// Aggregator accumulates DetailedStats from a document stream, one file's
// documents at a time, and records each file's contribution so a later
// StatsMerger call can subtract it if the file changes or is deleted.
type Aggregator struct {
	resolver      PackageResolver
	stats         DetailedStats
	contributions map[string]FileContribution
	seenFiles     map[string]bool
}

// NewAggregator builds an empty Aggregator. A nil resolver always
// attributes every file to the repository root package.
func NewAggregator(resolver PackageResolver) *Aggregator {
	if resolver == nil {
		resolver = func(string) (string, string) { return ".", "." }
	}
	return &Aggregator{
		resolver:      resolver,
		stats:         NewDetailedStats(),
		contributions: make(map[string]FileContribution),
		seenFiles:     make(map[string]bool),
	}
}

// AddDocument feeds one Document into the running aggregate.
func (a *Aggregator) AddDocument(doc scan.Document) {
	path := doc.Metadata.File
	lang := doc.Language

	if !a.seenFiles[path] {
		a.seenFiles[path] = true
		a.stats.TotalFiles++

		ls := a.stats.ByLanguage[lang]
		ls.Files++
		a.stats.ByLanguage[lang] = ls

		root, name := a.resolver(path)
		pkg, ok := a.stats.ByPackage[root]
		if !ok {
			pkg = PackageStats{Name: name, Path: root, Languages: make(map[string]int)}
		}
		pkg.Files++
		a.stats.ByPackage[root] = pkg

		a.contributions[path] = FileContribution{
			Path:            path,
			Language:        lang,
			PackageRoot:     root,
			PackageName:     name,
			ComponentCounts: make(map[string]int),
		}
	}

	a.stats.TotalDocuments++

	ls := a.stats.ByLanguage[lang]
	ls.Components++
	lines := doc.Metadata.EndLine - doc.Metadata.StartLine + 1
	if lines > 0 {
		ls.Lines += lines
	}
	a.stats.ByLanguage[lang] = ls

	compType := string(doc.Metadata.Type)
	a.stats.ByComponentType[compType]++

	contrib := a.contributions[path]
	contrib.ComponentCounts[compType]++
	if lines > 0 {
		contrib.Lines += lines
	}
	a.contributions[path] = contrib

	pkg := a.stats.ByPackage[contrib.PackageRoot]
	pkg.Components++
	if pkg.Languages == nil {
		pkg.Languages = make(map[string]int)
	}
	pkg.Languages[lang]++
	a.stats.ByPackage[contrib.PackageRoot] = pkg
}

// Stats returns the current aggregate. Safe to call mid-stream.
func (a *Aggregator) Stats() DetailedStats {
	return a.stats
}

// Contributions returns each file's recorded contribution, for StatsMerger
// to subtract later.
func (a *Aggregator) Contributions() map[string]FileContribution {
	return a.contributions
}

// Contribution for a file tracked but with zero documents (spec.md §4.2:
// "files whose parsed content yields zero documents are still tracked").
// Callers that discover such a file should call this instead of
// AddDocument so it gets a FileMetadata-worthy contribution record without
// inflating any counters.
func (a *Aggregator) TrackEmptyFile(relPath, language string) {
	if a.seenFiles[relPath] {
		return
	}
	a.seenFiles[relPath] = true
	a.stats.TotalFiles++

	ls := a.stats.ByLanguage[language]
	ls.Files++
	a.stats.ByLanguage[language] = ls

	root, name := a.resolver(relPath)
	pkg, ok := a.stats.ByPackage[root]
	if !ok {
		pkg = PackageStats{Name: name, Path: root, Languages: make(map[string]int)}
	}
	pkg.Files++
	a.stats.ByPackage[root] = pkg

	a.contributions[relPath] = FileContribution{
		Path: relPath, Language: language, PackageRoot: root, PackageName: name,
		ComponentCounts: make(map[string]int),
	}
}

// trimEmptyPackageName guards against a repository root whose basename is
// empty (e.g. "/"), which would otherwise produce an unhelpful "" name.
func trimEmptyPackageName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "root"
	}
	return name
}
