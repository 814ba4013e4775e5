package stats

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TEST PLAN: Merge
//
// - Deleting a file subtracts exactly its recorded contribution.
// - A changed file's prior contribution is subtracted, then the
//   incremental stats (its new contribution) are added back, netting to
//   the new shape.
// - A counter that would go negative is clamped to zero and a warning is
//   recorded, rather than the function panicking or returning negative
//   totals.

func sampleContribution(path, lang, pkgRoot string, lines int, components map[string]int) FileContribution {
	return FileContribution{Path: path, Language: lang, PackageRoot: pkgRoot, PackageName: pkgRoot, Lines: lines, ComponentCounts: components}
}

func TestMerge_DeletedFileSubtractsContribution(t *testing.T) {
	t.Parallel()

	current := NewDetailedStats()
	current.TotalFiles = 1
	current.TotalDocuments = 2
	current.ByLanguage["go"] = LanguageStats{Files: 1, Components: 2, Lines: 20}
	current.ByComponentType["function"] = 2
	current.ByPackage["."] = PackageStats{Name: "repo", Path: ".", Files: 1, Components: 2, Languages: map[string]int{"go": 2}}

	deleted := map[string]FileContribution{
		"a.go": sampleContribution("a.go", "go", ".", 20, map[string]int{"function": 2}),
	}

	result, warnings := Merge(current, deleted, nil, NewDetailedStats())

	require.Empty(t, warnings)
	require.Equal(t, 0, result.TotalFiles)
	require.Equal(t, 0, result.TotalDocuments)
	require.Equal(t, 0, result.ByLanguage["go"].Files)
	require.Equal(t, 0, result.ByComponentType["function"])
	require.Equal(t, 0, result.ByPackage["."].Languages["go"])
}

func TestMerge_ChangedFileSubtractsThenIncrementalAdds(t *testing.T) {
	t.Parallel()

	current := NewDetailedStats()
	current.TotalFiles = 1
	current.TotalDocuments = 1
	current.ByLanguage["go"] = LanguageStats{Files: 1, Components: 1, Lines: 5}
	current.ByComponentType["function"] = 1
	current.ByPackage["."] = PackageStats{Name: "repo", Path: ".", Files: 1, Components: 1, Languages: map[string]int{"go": 1}}

	changed := map[string]FileContribution{
		"a.go": sampleContribution("a.go", "go", ".", 5, map[string]int{"function": 1}),
	}

	incremental := NewDetailedStats()
	incremental.TotalFiles = 1
	incremental.TotalDocuments = 2
	incremental.ByLanguage["go"] = LanguageStats{Files: 1, Components: 2, Lines: 12}
	incremental.ByComponentType["function"] = 2
	incremental.ByPackage["."] = PackageStats{Name: "repo", Path: ".", Files: 1, Components: 2, Languages: map[string]int{"go": 2}}

	result, warnings := Merge(current, nil, changed, incremental)

	require.Empty(t, warnings)
	require.Equal(t, 1, result.TotalFiles)
	require.Equal(t, 2, result.TotalDocuments)
	require.Equal(t, 2, result.ByComponentType["function"])
	require.Equal(t, 2, result.ByPackage["."].Languages["go"])
}

func TestMerge_DeletedMultiComponentFileSubtractsFullPackageLanguageCount(t *testing.T) {
	t.Parallel()

	current := NewDetailedStats()
	current.TotalFiles = 1
	current.TotalDocuments = 2
	current.ByLanguage["go"] = LanguageStats{Files: 1, Components: 2, Lines: 20}
	current.ByComponentType["function"] = 1
	current.ByComponentType["class"] = 1
	current.ByPackage["svc/api"] = PackageStats{Name: "api", Path: "svc/api", Files: 1, Components: 2, Languages: map[string]int{"go": 2}}

	deleted := map[string]FileContribution{
		"svc/api/h.go": sampleContribution("svc/api/h.go", "go", "svc/api", 20, map[string]int{"function": 1, "class": 1}),
	}

	result, warnings := Merge(current, deleted, nil, NewDetailedStats())

	require.Empty(t, warnings)
	require.Equal(t, 0, result.ByPackage["svc/api"].Components)
	require.Equal(t, 0, result.ByPackage["svc/api"].Languages["go"])
}

func TestMerge_NegativeCounterClampsAndWarns(t *testing.T) {
	t.Parallel()

	current := NewDetailedStats() // nothing recorded

	deleted := map[string]FileContribution{
		"ghost.go": sampleContribution("ghost.go", "go", ".", 10, map[string]int{"function": 1}),
	}

	result, warnings := Merge(current, deleted, nil, NewDetailedStats())

	require.NotEmpty(t, warnings)
	require.Equal(t, 0, result.TotalFiles)
	require.GreaterOrEqual(t, result.ByComponentType["function"], 0)
}
