package metricsstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lytics/dev-agent/internal/stats"
)

// TEST PLAN: Store
//
// 1. RecordSnapshot + GetLatestSnapshot round-trips repository path,
//    trigger, and embedded stats.
// 2. GetSnapshots returns newest-first and honors limit.
// 3. AppendCodeMetadata + GetCodeMetadata round-trips per-file rows,
//    honoring limit.
// 4. GetLatestSnapshot on an empty store returns (nil, nil).
// 5. Close is idempotent.

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metrics.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RecordAndGetLatestSnapshot(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	st := stats.NewDetailedStats()
	st.TotalFiles = 5

	id, err := s.RecordSnapshot("/repo", TriggerIndex, st)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	snap, err := s.GetLatestSnapshot("/repo")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "/repo", snap.RepositoryPath)
	assert.Equal(t, TriggerIndex, snap.Trigger)
	assert.Equal(t, 5, snap.Stats.TotalFiles)
}

func TestStore_GetSnapshotsNewestFirstWithLimit(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	_, err := s.RecordSnapshot("/repo", TriggerIndex, stats.NewDetailedStats())
	require.NoError(t, err)
	_, err = s.RecordSnapshot("/repo", TriggerUpdate, stats.NewDetailedStats())
	require.NoError(t, err)

	snaps, err := s.GetSnapshots("/repo", 1)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, TriggerUpdate, snaps[0].Trigger)
}

func TestStore_AppendAndGetCodeMetadata(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	id, err := s.RecordSnapshot("/repo", TriggerIndex, stats.NewDetailedStats())
	require.NoError(t, err)

	entries := []CodeMetadata{
		{FilePath: "a.go", CommitCount: 3, LastModified: "2026-01-01T00:00:00Z", AuthorCount: 2, LinesOfCode: 100, NumFunctions: 4, NumImports: 2},
		{FilePath: "b.go", CommitCount: 1, LastModified: "2026-01-02T00:00:00Z", AuthorCount: 1, LinesOfCode: 50, NumFunctions: 2, NumImports: 1},
	}
	require.NoError(t, s.AppendCodeMetadata(id, entries))

	got, err := s.GetCodeMetadata(id, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a.go", got[0].FilePath)
	assert.Equal(t, 3, got[0].CommitCount)

	limited, err := s.GetCodeMetadata(id, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestStore_GetLatestSnapshotEmpty(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	snap, err := s.GetLatestSnapshot("/nothing-here")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestStore_CloseIsIdempotent(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}
