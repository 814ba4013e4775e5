package stats

// Merge computes updated aggregate stats from:
//   - current: the stats currently on disk, before this update.
//   - deleted: contributions of files removed from the repo.
//   - changed: contributions of files that existed before this update and
//     were re-scanned (their prior contribution must be subtracted; the
//     new contribution arrives inside incremental).
//   - incremental: the fresh aggregate for exactly {changed ∪ added}.
//
// Merge is a pure function of its inputs: no I/O, no globals, so it is
// testable independent of StateStore/VectorStore. Any counter that would
// go negative from floating contribution drift is clamped to zero and
// reported back in warnings rather than silently producing a negative
// total.
func Merge(current DetailedStats, deleted, changed map[string]FileContribution, incremental DetailedStats) (DetailedStats, []string) {
	result := cloneStats(current)
	var warnings []string

	subtract := func(path string, c FileContribution) {
		result.TotalFiles = clampSub(result.TotalFiles, 1, &warnings, "totalFiles")

		ls := result.ByLanguage[c.Language]
		ls.Files = clampSub(ls.Files, 1, &warnings, "byLanguage["+c.Language+"].files")
		ls.Lines = clampSub(ls.Lines, c.Lines, &warnings, "byLanguage["+c.Language+"].lines")
		for _, n := range c.ComponentCounts {
			ls.Components = clampSub(ls.Components, n, &warnings, "byLanguage["+c.Language+"].components")
		}
		result.ByLanguage[c.Language] = ls

		for compType, n := range c.ComponentCounts {
			result.ByComponentType[compType] = clampSub(result.ByComponentType[compType], n, &warnings, "byComponentType["+compType+"]")
			result.TotalDocuments = clampSub(result.TotalDocuments, n, &warnings, "totalDocuments")
		}

		pkg := result.ByPackage[c.PackageRoot]
		pkg.Files = clampSub(pkg.Files, 1, &warnings, "byPackage["+c.PackageRoot+"].files")
		totalComponents := 0
		for _, n := range c.ComponentCounts {
			pkg.Components = clampSub(pkg.Components, n, &warnings, "byPackage["+c.PackageRoot+"].components")
			totalComponents += n
		}
		if pkg.Languages != nil {
			pkg.Languages[c.Language] = clampSub(pkg.Languages[c.Language], totalComponents, &warnings, "byPackage["+c.PackageRoot+"].languages["+c.Language+"]")
		}
		result.ByPackage[c.PackageRoot] = pkg
	}

	for path, c := range deleted {
		subtract(path, c)
	}
	for path, c := range changed {
		subtract(path, c)
	}

	result = addStats(result, incremental)

	return result, warnings
}

func cloneStats(s DetailedStats) DetailedStats {
	out := NewDetailedStats()
	out.TotalFiles = s.TotalFiles
	out.TotalDocuments = s.TotalDocuments
	out.TotalVectors = s.TotalVectors
	for k, v := range s.ByLanguage {
		out.ByLanguage[k] = v
	}
	for k, v := range s.ByComponentType {
		out.ByComponentType[k] = v
	}
	for k, v := range s.ByPackage {
		langs := make(map[string]int, len(v.Languages))
		for lk, lv := range v.Languages {
			langs[lk] = lv
		}
		v.Languages = langs
		out.ByPackage[k] = v
	}
	return out
}

func addStats(base DetailedStats, add DetailedStats) DetailedStats {
	base.TotalFiles += add.TotalFiles
	base.TotalDocuments += add.TotalDocuments

	for lang, ls := range add.ByLanguage {
		existing := base.ByLanguage[lang]
		existing.Files += ls.Files
		existing.Components += ls.Components
		existing.Lines += ls.Lines
		base.ByLanguage[lang] = existing
	}

	for compType, n := range add.ByComponentType {
		base.ByComponentType[compType] += n
	}

	for root, pkg := range add.ByPackage {
		existing, ok := base.ByPackage[root]
		if !ok {
			existing = PackageStats{Name: pkg.Name, Path: pkg.Path, Languages: make(map[string]int)}
		}
		existing.Files += pkg.Files
		existing.Components += pkg.Components
		if existing.Languages == nil {
			existing.Languages = make(map[string]int)
		}
		for lang, n := range pkg.Languages {
			existing.Languages[lang] += n
		}
		base.ByPackage[root] = existing
	}

	return base
}

func clampSub(current, delta int, warnings *[]string, field string) int {
	result := current - delta
	if result < 0 {
		*warnings = append(*warnings, "counter "+field+" would go negative, clamped to zero")
		return 0
	}
	return result
}
