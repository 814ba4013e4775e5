package gitstats

import "context"

// NoopProvider reports no history for any file, used when the repository
// being indexed is not a git checkout.
type NoopProvider struct{}

func (NoopProvider) FileHistory(ctx context.Context, repoRoot string, paths []string) (map[string]FileHistory, error) {
	return map[string]FileHistory{}, nil
}
