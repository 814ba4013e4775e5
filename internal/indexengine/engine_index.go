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

// IndexOptions configures a full Index call.
type IndexOptions struct {
	// Include restricts the scan to these repository-relative paths,
	// passed through to Scanner.Scan. Empty means "the whole tree".
	Include []string
}

// Index performs a full index: scan every tracked file, rebuild
// aggregate stats from scratch, embed and store every document, and
// persist a fresh state, per spec.md §4.1's full-index algorithm.
func (e *Engine) Index(ctx context.Context, opts IndexOptions) (*Result, error) {
	if err := e.acquireRun(); err != nil {
		return nil, err
	}
	defer e.releaseRun()

	start := time.Now()
	e.cfg.Reporter.Report(progressreport.Report{Phase: progressreport.PhaseScanning})

	scanResult, err := e.cfg.Scanner.Scan(ctx, scan.Options{RepoRoot: e.cfg.RepoRoot, Include: opts.Include})
	if err != nil {
		return nil, &IndexError{Kind: KindScanner, Err: err}
	}

	agg := stats.NewAggregator(stats.NewDefaultPackageResolver(e.cfg.RepoRoot))
	for _, doc := range scanResult.Documents {
		agg.AddDocument(doc)
	}

	docsByPath := groupByPath(scanResult.Documents)
	paths, err := e.cfg.Scanner.Discover(ctx, scan.Options{RepoRoot: e.cfg.RepoRoot, Include: opts.Include})
	if err != nil {
		return nil, &IndexError{Kind: KindScanner, Err: err}
	}
	for _, p := range paths {
		if _, ok := docsByPath[p]; !ok {
			lang := scan.LanguageForPath(p)
			agg.TrackEmptyFile(p, lang)
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

	indexErrors := make([]*IndexError, 0, len(batchResult.Errors))
	for _, be := range batchResult.Errors {
		indexErrors = append(indexErrors, &IndexError{Kind: KindStorage, Err: be})
	}

	fileMeta, err := buildFileMetadata(e.cfg.RepoRoot, paths, docsByPath, start)
	if err != nil {
		return nil, err
	}

	newState := state.New(e.cfg.RepoRoot, e.cfg.Embedder.ModelID(), e.cfg.Embedder.Dimensions())
	newState.Files = fileMeta
	aggStats := agg.Stats()
	if vsStats, err := e.cfg.VectorStore.GetStats(ctx); err == nil {
		aggStats.TotalVectors = vsStats.TotalDocuments
	}
	newState.Stats = aggStats
	newState.LastIndexTime = start
	newState.IncrementalUpdatesSince = 0

	if err := e.stateStore.Save(newState); err != nil {
		return nil, &IndexError{Kind: KindState, Err: err}
	}
	e.setState(newState)

	if e.cfg.Metrics != nil {
		e.recordSnapshot(ctx, metricsstore.TriggerIndex, aggStats, agg.Contributions(), paths)
	}

	e.cfg.Reporter.Report(progressreport.Report{Phase: progressreport.PhaseComplete, DocumentsIndexed: batchResult.DocumentsIndexed, TotalDocuments: len(items), PercentComplete: 100})

	if e.cfg.Bus != nil {
		e.cfg.Bus.Emit(ctx, "index.updated", IndexUpdatedEvent{
			Type:             "code",
			DocumentsCount:   batchResult.DocumentsIndexed,
			Duration:         time.Since(start),
			Path:             e.cfg.RepoRoot,
			Stats:            aggStats,
			IsIncremental:    false,
		}, eventbus.EmitOptions{})
	}

	return &Result{
		FilesScanned:     scanResult.Stats.FilesScanned,
		DocumentsIndexed: batchResult.DocumentsIndexed,
		Errors:           indexErrors,
		IsIncremental:    false,
		Duration:         time.Since(start),
		Stats:            aggStats,
	}, nil
}

// IndexUpdatedEvent is the payload of the index.updated event
// (spec.md §3 "Event envelope").
type IndexUpdatedEvent struct {
	Type           string
	DocumentsCount int
	Duration       time.Duration
	Path           string
	Stats          stats.DetailedStats
	IsIncremental  bool
}

func (e *Engine) recordSnapshot(ctx context.Context, trigger metricsstore.Trigger, st stats.DetailedStats, contributions map[string]stats.FileContribution, paths []string) {
	id, err := e.cfg.Metrics.RecordSnapshot(e.cfg.RepoRoot, trigger, st)
	if err != nil {
		e.cfg.Logger.Printf("metrics: record snapshot: %v", err)
		return
	}
	codeMeta := e.collectCodeMetadata(ctx, contributions, paths)
	if err := e.cfg.Metrics.AppendCodeMetadata(id, codeMeta); err != nil {
		e.cfg.Logger.Printf("metrics: append code metadata: %v", err)
	}
}

func documentMetadata(d scan.Document) map[string]any {
	m := map[string]any{
		"file":      d.Metadata.File,
		"path":      d.Metadata.Path,
		"type":      string(d.Metadata.Type),
		"name":      d.Metadata.Name,
		"startLine": d.Metadata.StartLine,
		"endLine":   d.Metadata.EndLine,
		"language":  d.Language,
		"exported":  d.Metadata.Exported,
	}
	if d.Metadata.Signature != "" {
		m["signature"] = d.Metadata.Signature
	}
	if d.Metadata.Snippet != "" {
		m["snippet"] = d.Metadata.Snippet
	}
	if len(d.Metadata.Imports) > 0 {
		m["imports"] = d.Metadata.Imports
	}
	if d.Metadata.Docstring != "" {
		m["docstring"] = d.Metadata.Docstring
	}
	for k, v := range d.Metadata.Extra {
		m[k] = v
	}
	return m
}

func percentOf(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
