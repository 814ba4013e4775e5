// Package indexengine composes every collaborator in this module's
// pipeline (Scanner, ChangeDetector, StatsAggregator/Merger,
// BatchOrchestrator, VectorStore, StateStore, MetricsStore, EventBus,
// GitStats) into the IndexerEngine contract of spec.md §4.1: initialize,
// index, update, search, getStats, close.
package indexengine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lytics/dev-agent/internal/changedetect"
	"github.com/lytics/dev-agent/internal/state"
	"github.com/lytics/dev-agent/internal/stats"
	"github.com/lytics/dev-agent/internal/vectorstore"
)

// Result is the DetailedIndexStats returned by Index and Update.
type Result struct {
	FilesScanned     int
	DocumentsIndexed int
	Errors           []*IndexError
	IsIncremental    bool
	Duration         time.Duration
	Stats            stats.DetailedStats
	Warnings         []string
}

// Engine is the IndexerEngine. Zero value is not usable; build one with
// New.
type Engine struct {
	cfg Config

	mu         sync.Mutex // guards closed
	runMu      sync.Mutex // held for the duration of an Index, Update, or Clean call
	detector   *changedetect.Detector
	stateStore *state.Store

	stateMu sync.RWMutex
	state   *state.State
	closed  bool
}

// New builds an Engine from cfg, filling unset fields with defaults.
// Call Initialize before Index/Update/Search.
func New(cfg Config) *Engine {
	cfg.fillDefaults()
	return &Engine{
		cfg:        cfg,
		detector:   changedetect.New(cfg.RepoRoot, cfg.Scanner),
		stateStore: cfg.stateStore(),
	}
}

// Initialize opens the vector store and loads any prior state. A
// corrupt state file is reported (via Config.Logger) and treated as
// empty, not returned as an error; only a failure to open the vector
// store is fatal.
func (e *Engine) Initialize(ctx context.Context) error {
	if err := e.cfg.VectorStore.Initialize(ctx); err != nil {
		return &IndexError{Kind: KindStorage, Err: fmt.Errorf("initialize vector store: %w", err)}
	}

	st, err := e.stateStore.Load()
	if err != nil {
		return &IndexError{Kind: KindState, Err: err}
	}

	if st != nil && !state.EmbeddingCompatible(st, e.cfg.Embedder.ModelID(), e.cfg.Embedder.Dimensions()) {
		e.cfg.Logger.Printf("embedding model/dimension changed (was %s/%d, now %s/%d); forcing full re-index",
			st.EmbeddingModel, st.EmbeddingDimension, e.cfg.Embedder.ModelID(), e.cfg.Embedder.Dimensions())
		st = nil
	}

	e.stateMu.Lock()
	e.state = st
	e.stateMu.Unlock()
	return nil
}

// Search passes through to the vector store. It never blocks on the
// index/update mutex, per spec.md §4.11's read-mostly contract.
func (e *Engine) Search(ctx context.Context, query string, opts vectorstore.SearchOptions) ([]vectorstore.SearchResult, error) {
	return e.cfg.VectorStore.Search(ctx, query, opts)
}

// GetStats computes a DetailedStats snapshot from loaded state and the
// vector store's live count. Returns a zero-value snapshot before the
// first successful Index.
func (e *Engine) GetStats(ctx context.Context) (stats.DetailedStats, string, error) {
	e.stateMu.RLock()
	st := e.state
	e.stateMu.RUnlock()

	if st == nil {
		return stats.NewDetailedStats(), "", nil
	}

	vsStats, err := e.cfg.VectorStore.GetStats(ctx)
	if err != nil {
		return st.Stats, "", &IndexError{Kind: KindStorage, Err: err}
	}

	result := st.Stats
	result.TotalVectors = vsStats.TotalDocuments

	var warning string
	if st.IncrementalUpdatesSince > state.IncrementalUpdateThreshold {
		warning = "many incremental updates since the last full index; consider running a full re-index"
	}
	return result, warning, nil
}

// Close flushes no additional state (the last successful Index/Update
// already persisted it) and closes the vector store and embedder.
// Idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true

	var firstErr error
	if err := e.cfg.VectorStore.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := e.cfg.Embedder.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if e.cfg.Metrics != nil {
		if err := e.cfg.Metrics.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Clean discards persisted and in-memory state, forcing the next Index
// or Update to behave as a fresh full index. The vector store's
// contents are left untouched; callers that want a fully fresh vector
// index should also recreate the VectorStore given to Config.
func (e *Engine) Clean() error {
	if err := e.acquireRun(); err != nil {
		return err
	}
	defer e.releaseRun()

	if err := e.stateStore.Clean(); err != nil {
		return &IndexError{Kind: KindState, Err: err}
	}
	e.setState(nil)
	return nil
}

// acquireRun enforces the single-flight contract on Index/Update: an
// overlapping call is rejected rather than queued, per spec.md §5.
func (e *Engine) acquireRun() error {
	if !e.runMu.TryLock() {
		return &ConcurrentIndexError{}
	}
	return nil
}

func (e *Engine) releaseRun() {
	e.runMu.Unlock()
}

func (e *Engine) currentState() *state.State {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.state
}

func (e *Engine) setState(st *state.State) {
	e.stateMu.Lock()
	e.state = st
	e.stateMu.Unlock()
}
