package scan

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMockScanner_ScanHonorsInclude(t *testing.T) {
	t.Parallel()

	m := NewMockScanner([]Document{
		{ID: "a", Metadata: Metadata{File: "a.py"}},
		{ID: "b", Metadata: Metadata{File: "b.py"}},
	})

	result, err := m.Scan(context.Background(), Options{Include: []string{"a.py"}})
	require.NoError(t, err)
	require.Len(t, result.Documents, 1)
	require.Equal(t, "a", result.Documents[0].ID)
	require.Equal(t, 1, m.ScanCalls())
}

func TestMockScanner_ScanError(t *testing.T) {
	t.Parallel()

	m := NewMockScanner(nil)
	m.SetScanError(errors.New("boom"))

	_, err := m.Scan(context.Background(), Options{})
	require.ErrorContains(t, err, "boom")
}

func TestMockScanner_DiscoverReturnsDistinctPaths(t *testing.T) {
	t.Parallel()

	m := NewMockScanner([]Document{
		{Metadata: Metadata{File: "a.py"}},
		{Metadata: Metadata{File: "a.py"}},
		{Metadata: Metadata{File: "b.py"}},
	})

	paths, err := m.Discover(context.Background(), Options{})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.py", "b.py"}, paths)
}
