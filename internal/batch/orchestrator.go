// Package batch implements the BatchOrchestrator: split an ordered
// document stream into fixed-size batches and submit up to CONCURRENCY of
// them in parallel to the vector store, aggregating per-batch errors
// without aborting the run. The teacher's own parallel sections use a
// bare sync.WaitGroup (internal/mcp/searcher_coordinator.go); this
// component instead reaches for sourcegraph/conc's pool, which is
// already in the teacher's dependency graph and gives a bounded
// worker count and panic-safe goroutines for free.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/lytics/dev-agent/internal/vectorstore"
)

// Item is one document queued for embedding + storage.
type Item struct {
	ID       string
	Text     string
	Metadata map[string]any
}

// Error records a single batch's failure without aborting the run.
type Error struct {
	BatchIndex int
	Err        error
}

func (e Error) Error() string {
	return fmt.Sprintf("batch %d: %v", e.BatchIndex, e.Err)
}

// Progress is emitted at most every ~100ms while Run is in flight.
type Progress struct {
	DocumentsIndexed int
	TotalDocuments   int
	DocsPerSecond    float64
	ETA              time.Duration
}

// Result summarizes one Run call.
type Result struct {
	DocumentsIndexed int
	Errors           []Error
}

// Orchestrator submits batches of Items to a VectorStore with bounded
// concurrency.
type Orchestrator struct {
	store       vectorstore.VectorStore
	batchSize   int
	concurrency int
	onProgress  func(Progress)
}

// New builds an Orchestrator. batchSize and concurrency must be >= 1;
// onProgress may be nil to disable progress reporting.
func New(store vectorstore.VectorStore, batchSize, concurrency int, onProgress func(Progress)) *Orchestrator {
	if batchSize < 1 {
		batchSize = 32
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Orchestrator{store: store, batchSize: batchSize, concurrency: concurrency, onProgress: onProgress}
}

// Run splits items into ceil(N/batchSize) batches preserving order within
// a batch, submits up to `concurrency` batches at a time, and returns once
// every batch has completed (successfully or not). A cancelled ctx lets
// in-flight batches finish but starts no new ones, per spec.md §4.3.
func (o *Orchestrator) Run(ctx context.Context, items []Item) Result {
	batches := o.split(items)

	var indexed atomicCounter
	var errs errorCollector
	var throttle progressThrottle
	start := time.Now()

	p := pool.New().WithMaxGoroutines(o.concurrency)

	for i, batch := range batches {
		i, batch := i, batch
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}

			docs := make([]vectorstore.Document, len(batch))
			for j, item := range batch {
				docs[j] = vectorstore.Document{ID: item.ID, Text: item.Text, Metadata: item.Metadata}
			}

			if err := o.store.AddDocuments(ctx, docs); err != nil {
				errs.add(Error{BatchIndex: i, Err: err})
				return
			}

			n := indexed.add(len(batch))
			if o.onProgress != nil && throttle.ready(100*time.Millisecond) {
				o.reportProgress(n, len(items), start)
			}
		})
	}

	p.Wait()

	if o.onProgress != nil {
		o.reportProgress(indexed.get(), len(items), start)
	}

	return Result{DocumentsIndexed: indexed.get(), Errors: errs.all()}
}

func (o *Orchestrator) reportProgress(indexed, total int, start time.Time) {
	elapsed := time.Since(start).Seconds()
	var rate float64
	if elapsed > 0 {
		rate = float64(indexed) / elapsed
	}
	var eta time.Duration
	if rate > 0 && total > indexed {
		eta = time.Duration(float64(total-indexed)/rate) * time.Second
	}
	o.onProgress(Progress{DocumentsIndexed: indexed, TotalDocuments: total, DocsPerSecond: rate, ETA: eta})
}

func (o *Orchestrator) split(items []Item) [][]Item {
	if len(items) == 0 {
		return nil
	}
	var batches [][]Item
	for start := 0; start < len(items); start += o.batchSize {
		end := start + o.batchSize
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}
