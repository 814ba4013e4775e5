package indexengine

import (
	"context"
	"time"

	"github.com/lytics/dev-agent/internal/batch"
	"github.com/lytics/dev-agent/internal/eventbus"
	"github.com/lytics/dev-agent/internal/metricsstore"
	"github.com/lytics/dev-agent/internal/progressreport"
	"github.com/lytics/dev-agent/internal/scan"
	"github.com/lytics/dev-agent/internal/state"
	"github.com/lytics/dev-agent/internal/stats"
)

// UpdateOptions configures an incremental Update call.
type UpdateOptions struct{}

// Update performs an incremental update: detect added/changed/deleted
// files since the last index, reconcile the vector store and state for
// exactly that delta, and re-merge aggregate stats, per spec.md §4.1's
// incremental-update algorithm. If no prior state exists it delegates
// to a full Index.
func (e *Engine) Update(ctx context.Context, opts UpdateOptions) (*Result, error) {
	if err := e.acquireRun(); err != nil {
		return nil, err
	}

	prior := e.currentState()
	if prior == nil {
		e.releaseRun()
		return e.Index(ctx, IndexOptions{})
	}
	defer e.releaseRun()

	start := time.Now()
	changes, err := e.detector.DetectChanges(ctx, prior.Files)
	if err != nil {
		return nil, &IndexError{Kind: KindScanner, Err: err}
	}

	if len(changes.Added) == 0 && len(changes.Changed) == 0 && len(changes.Deleted) == 0 {
		return &Result{IsIncremental: true, Stats: prior.Stats}, nil
	}

	resolver := stats.NewDefaultPackageResolver(e.cfg.RepoRoot)
	newFiles := cloneFiles(prior.Files)

	var deleteErrors []*IndexError
	deletedContribs := make(map[string]stats.FileContribution)
	for _, path := range changes.Deleted {
		meta, ok := prior.Files[path]
		if !ok {
			continue
		}
		if len(meta.DocumentIDs) > 0 {
			if err := e.cfg.VectorStore.DeleteDocuments(ctx, meta.DocumentIDs); err != nil {
				e.cfg.Logger.Printf("vector store delete for deleted file %s failed: %v", path, err)
				deleteErrors = append(deleteErrors, &IndexError{Kind: KindStorage, Path: path, Err: err})
			}
		}
		deletedContribs[path] = fileContributionFromMetadata(path, meta, resolver)
		delete(newFiles, path)
	}

	changedContribs := make(map[string]stats.FileContribution)
	for _, path := range changes.Changed {
		meta, ok := prior.Files[path]
		if !ok {
			continue
		}
		if len(meta.DocumentIDs) > 0 {
			if err := e.cfg.VectorStore.DeleteDocuments(ctx, meta.DocumentIDs); err != nil {
				e.cfg.Logger.Printf("vector store delete for changed file %s failed: %v", path, err)
				deleteErrors = append(deleteErrors, &IndexError{Kind: KindStorage, Path: path, Err: err})
			}
		}
		changedContribs[path] = fileContributionFromMetadata(path, meta, resolver)
	}

	filesToReindex := append(append([]string{}, changes.Changed...), changes.Added...)

	e.cfg.Reporter.Report(progressreport.Report{Phase: progressreport.PhaseScanning})
	scanResult, err := e.cfg.Scanner.Scan(ctx, scan.Options{RepoRoot: e.cfg.RepoRoot, Include: filesToReindex})
	if err != nil {
		return nil, &IndexError{Kind: KindScanner, Err: err}
	}

	agg := stats.NewAggregator(resolver)
	for _, doc := range scanResult.Documents {
		agg.AddDocument(doc)
	}
	docsByPath := groupByPath(scanResult.Documents)
	for _, path := range filesToReindex {
		if _, ok := docsByPath[path]; !ok {
			agg.TrackEmptyFile(path, scan.LanguageForPath(path))
		}
	}

	e.cfg.Reporter.Report(progressreport.Report{Phase: progressreport.PhaseEmbedding, TotalDocuments: len(scanResult.Documents)})

	items := make([]batch.Item, len(scanResult.Documents))
	for i, d := range scanResult.Documents {
		items[i] = batch.Item{ID: d.ID, Text: d.Text, Metadata: documentMetadata(d)}
	}

	e.cfg.Reporter.Report(progressreport.Report{Phase: progressreport.PhaseStoring, TotalDocuments: len(items)})

	var throttle progressreport.Throttle
	orch := batch.New(e.cfg.VectorStore, e.cfg.BatchSize, e.cfg.Concurrency, func(p batch.Progress) {
		if !throttle.Ready(time.Now()) {
			return
		}
		e.cfg.Reporter.Report(progressreport.Report{
			Phase:            progressreport.PhaseStoring,
			DocumentsIndexed: p.DocumentsIndexed,
			TotalDocuments:   p.TotalDocuments,
			DocsPerSecond:    p.DocsPerSecond,
			ETA:              p.ETA,
			PercentComplete:  percentOf(p.DocumentsIndexed, p.TotalDocuments),
		})
	})
	batchResult := orch.Run(ctx, items)

	indexErrors := make([]*IndexError, 0, len(deleteErrors)+len(batchResult.Errors))
	indexErrors = append(indexErrors, deleteErrors...)
	for _, be := range batchResult.Errors {
		indexErrors = append(indexErrors, &IndexError{Kind: KindStorage, Err: be})
	}

	reindexedMeta, err := buildFileMetadata(e.cfg.RepoRoot, filesToReindex, docsByPath, start)
	if err != nil {
		return nil, err
	}
	for path, meta := range reindexedMeta {
		newFiles[path] = meta
	}

	incrementalStats := agg.Stats()
	mergedStats, warnings := stats.Merge(prior.Stats, deletedContribs, changedContribs, incrementalStats)
	for _, w := range warnings {
		e.cfg.Logger.Printf("stats merge warning: %s", w)
	}
	if vsStats, err := e.cfg.VectorStore.GetStats(ctx); err == nil {
		mergedStats.TotalVectors = vsStats.TotalDocuments
	}

	newState := &state.State{
		Version:                 state.CurrentVersion,
		EmbeddingModel:          prior.EmbeddingModel,
		EmbeddingDimension:      prior.EmbeddingDimension,
		RepositoryPath:          e.cfg.RepoRoot,
		LastIndexTime:           prior.LastIndexTime,
		Files:                   newFiles,
		Stats:                   mergedStats,
		IncrementalUpdatesSince: prior.IncrementalUpdatesSince + 1,
	}
	now := time.Now()
	newState.LastUpdate = &now

	if err := e.stateStore.Save(newState); err != nil {
		return nil, &IndexError{Kind: KindState, Err: err}
	}
	e.setState(newState)

	if e.cfg.Metrics != nil {
		e.recordSnapshot(ctx, metricsstore.TriggerUpdate, mergedStats, agg.Contributions(), filesToReindex)
	}

	e.cfg.Reporter.Report(progressreport.Report{Phase: progressreport.PhaseComplete, DocumentsIndexed: batchResult.DocumentsIndexed, TotalDocuments: len(items), PercentComplete: 100})

	if e.cfg.Bus != nil {
		e.cfg.Bus.Emit(ctx, "index.updated", IndexUpdatedEvent{
			Type:           "code",
			DocumentsCount: batchResult.DocumentsIndexed,
			Duration:       time.Since(start),
			Path:           e.cfg.RepoRoot,
			Stats:          mergedStats,
			IsIncremental:  true,
		}, eventbus.EmitOptions{})
	}

	return &Result{
		FilesScanned:     scanResult.Stats.FilesScanned,
		DocumentsIndexed: batchResult.DocumentsIndexed,
		Errors:           indexErrors,
		IsIncremental:    true,
		Duration:         time.Since(start),
		Stats:            mergedStats,
		Warnings:         warnings,
	}, nil
}

func cloneFiles(files map[string]state.FileMetadata) map[string]state.FileMetadata {
	out := make(map[string]state.FileMetadata, len(files))
	for k, v := range files {
		out[k] = v
	}
	return out
}

func fileContributionFromMetadata(path string, meta state.FileMetadata, resolver stats.PackageResolver) stats.FileContribution {
	root, name := resolver(path)
	counts := make(map[string]int, len(meta.ComponentCounts))
	for k, v := range meta.ComponentCounts {
		counts[k] = v
	}
	return stats.FileContribution{
		Path:            path,
		Language:        meta.Language,
		PackageRoot:     root,
		PackageName:     name,
		Lines:           meta.Lines,
		ComponentCounts: counts,
	}
}
