package scan

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultExcludes are layered under any caller-supplied Exclude patterns.
var DefaultExcludes = []string{
	".git/**",
	"node_modules/**",
	"dist/**",
	"coverage/**",
}

// languageByExt maps file extensions to the scanner's language identifiers.
var languageByExt = map[string]string{
	".py":   "python",
	".ts":   "typescript",
	".tsx":  "typescript",
	".rs":   "rust",
	".rb":   "ruby",
	".php":  "php",
	".java": "java",
	".c":    "c",
	".h":    "c",
	".md":   "markdown",
	".rst":  "markdown",
}

// discovery compiles glob patterns once and walks the tree matching them.
// Mirrors the teacher's FileDiscovery, generalized to spec.md's
// include-takes-precedence-over-exclude semantics and a language filter.
type discovery struct {
	rootDir  string
	include  []glob.Glob
	exclude  []glob.Glob
	langs    map[string]bool
}

func newDiscovery(opts Options) (*discovery, error) {
	d := &discovery{rootDir: opts.RepoRoot}

	for _, pattern := range opts.Include {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		d.include = append(d.include, g)
	}

	excludePatterns := append(append([]string{}, DefaultExcludes...), opts.Exclude...)
	for _, pattern := range excludePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		d.exclude = append(d.exclude, g)
	}

	if len(opts.Languages) > 0 {
		d.langs = make(map[string]bool, len(opts.Languages))
		for _, l := range opts.Languages {
			d.langs[l] = true
		}
	}

	return d, nil
}

// walk returns every repo-relative path that should be scanned.
func (d *discovery) walk() ([]string, error) {
	var matched []string

	err := filepath.Walk(d.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(d.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if !d.accepts(relPath) {
			return nil
		}
		matched = append(matched, relPath)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matched, nil
}

func (d *discovery) accepts(relPath string) bool {
	if len(d.include) > 0 {
		return d.matchesAny(relPath, d.include) && !d.isUnsupportedLanguage(relPath)
	}
	if d.matchesAny(relPath, d.exclude) || d.matchesAny(relPath+"/**", d.exclude) {
		return false
	}
	return !d.isUnsupportedLanguage(relPath)
}

func (d *discovery) isUnsupportedLanguage(relPath string) bool {
	lang, ok := languageByExt[strings.ToLower(filepath.Ext(relPath))]
	if !ok {
		return true
	}
	if d.langs != nil && !d.langs[lang] {
		return true
	}
	return false
}

func (d *discovery) matchesAny(path string, patterns []glob.Glob) bool {
	for _, p := range patterns {
		if p.Match(path) {
			return true
		}
	}
	return false
}

// LanguageForPath returns the scanner's language identifier for a
// repo-relative path, or "" if the extension is not recognized.
func LanguageForPath(relPath string) string {
	return languageByExt[strings.ToLower(filepath.Ext(relPath))]
}
