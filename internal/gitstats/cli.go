package gitstats

import (
	"context"
	"os/exec"
	"strings"
)

// CLIProvider shells out to `git log` to build commit counts, last-modified
// dates, and author sets per file, ported from the teacher's gitOps
// (internal/git/operations.go), which also drives git through
// exec.Command with cmd.Dir set to the repository root.
type CLIProvider struct{}

// NewCLIProvider returns a git-CLI-backed Provider.
func NewCLIProvider() *CLIProvider {
	return &CLIProvider{}
}

const logRecordSep = "\x1e"

// FileHistory walks the full commit log once, rather than once per file,
// since a per-file `git log --follow` call for every requested path does
// not scale to a repository-sized file set.
func (p *CLIProvider) FileHistory(ctx context.Context, repoRoot string, paths []string) (map[string]FileHistory, error) {
	wanted := make(map[string]bool, len(paths))
	for _, path := range paths {
		wanted[path] = true
	}

	cmd := exec.CommandContext(ctx, "git", "log",
		"--format="+logRecordSep+"%H|%ae|%aI",
		"--name-only")
	cmd.Dir = repoRoot
	output, err := cmd.Output()
	if err != nil {
		// Not a git repository, git missing, or repo with no commits yet:
		// enrichment is optional, so report "nothing available" not an error.
		return map[string]FileHistory{}, nil
	}

	type accum struct {
		commitCount int
		authors     map[string]bool
		lastSeen    string
	}
	byFile := make(map[string]*accum)

	records := strings.Split(string(output), logRecordSep)
	for _, record := range records {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}
		lines := strings.Split(record, "\n")
		header := strings.SplitN(lines[0], "|", 3)
		if len(header) != 3 {
			continue
		}
		author, date := header[1], header[2]

		for _, path := range lines[1:] {
			path = strings.TrimSpace(path)
			if path == "" || !wanted[path] {
				continue
			}
			a, ok := byFile[path]
			if !ok {
				a = &accum{authors: make(map[string]bool)}
				byFile[path] = a
			}
			a.commitCount++
			a.authors[author] = true
			// %aI is newest-first in `git log`'s default order, so the
			// first date seen for a path is its most recent commit.
			if a.lastSeen == "" {
				a.lastSeen = date
			}
		}
	}

	result := make(map[string]FileHistory, len(byFile))
	for path, a := range byFile {
		result[path] = FileHistory{
			CommitCount:  a.commitCount,
			LastModified: a.lastSeen,
			AuthorCount:  len(a.authors),
		}
	}
	return result, nil
}
