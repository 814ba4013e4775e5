package batch

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lytics/dev-agent/internal/vectorstore"
)

// TEST PLAN: Orchestrator
//
// 1. split() produces ceil(N/batchSize) batches, preserving item order
//    within each batch.
// 2. Run() indexes every item through a healthy store and reports
//    DocumentsIndexed equal to the input length, with no Errors.
// 3. A store that fails on a specific call records the failure in
//    Result.Errors without aborting the other batches.
// 4. Run() never lets more than `concurrency` AddDocuments calls execute
//    at once.
// 5. Progress callbacks report a non-decreasing DocumentsIndexed.

type fakeStore struct {
	mu         sync.Mutex
	failOnCall int // 1-indexed call number to fail, 0 disables
	calls      int
	received   [][]vectorstore.Document
	inFlight   int
	maxInFlight int
}

func (f *fakeStore) Initialize(ctx context.Context) error { return nil }

func (f *fakeStore) AddDocuments(ctx context.Context, docs []vectorstore.Document) error {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if f.failOnCall != 0 && call == f.failOnCall {
		return fmt.Errorf("simulated failure on call %d", call)
	}

	f.mu.Lock()
	f.received = append(f.received, docs)
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) DeleteDocuments(ctx context.Context, ids []string) error { return nil }

func (f *fakeStore) Search(ctx context.Context, query string, opts vectorstore.SearchOptions) ([]vectorstore.SearchResult, error) {
	return nil, nil
}

func (f *fakeStore) GetStats(ctx context.Context) (vectorstore.Stats, error) {
	return vectorstore.Stats{}, nil
}

func (f *fakeStore) Close() error { return nil }

func itemsN(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{ID: fmt.Sprintf("doc-%d", i), Text: fmt.Sprintf("text %d", i)}
	}
	return items
}

func TestOrchestrator_Split(t *testing.T) {
	t.Parallel()
	o := New(&fakeStore{}, 3, 1, nil)
	batches := o.split(itemsN(7))
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 3)
	assert.Len(t, batches[1], 3)
	assert.Len(t, batches[2], 1)
	assert.Equal(t, "doc-0", batches[0][0].ID)
	assert.Equal(t, "doc-6", batches[2][0].ID)
}

func TestOrchestrator_Split_Empty(t *testing.T) {
	t.Parallel()
	o := New(&fakeStore{}, 3, 1, nil)
	assert.Nil(t, o.split(nil))
}

func TestOrchestrator_Run_AllSucceed(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	o := New(store, 4, 2, nil)
	result := o.Run(context.Background(), itemsN(10))
	assert.Equal(t, 10, result.DocumentsIndexed)
	assert.Empty(t, result.Errors)
}

func TestOrchestrator_Run_PartialFailureDoesNotAbort(t *testing.T) {
	t.Parallel()
	store := &fakeStore{failOnCall: 2}
	o := New(store, 4, 1, nil)
	result := o.Run(context.Background(), itemsN(12))

	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].BatchIndex)
	// Batches 0 and 2 succeeded (4 items each); batch 1 failed.
	assert.Equal(t, 8, result.DocumentsIndexed)
}

func TestOrchestrator_Run_BoundsConcurrency(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	o := New(store, 1, 3, nil)
	o.Run(context.Background(), itemsN(12))

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.LessOrEqual(t, store.maxInFlight, 3)
}

func TestOrchestrator_Run_ReportsProgress(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	var mu sync.Mutex
	var reports []Progress
	o := New(store, 2, 1, func(p Progress) {
		mu.Lock()
		defer mu.Unlock()
		reports = append(reports, p)
	})

	result := o.Run(context.Background(), itemsN(6))
	assert.Equal(t, 6, result.DocumentsIndexed)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, reports)
	last := reports[len(reports)-1]
	assert.Equal(t, 6, last.DocumentsIndexed)
	assert.Equal(t, 6, last.TotalDocuments)

	prev := 0
	for _, r := range reports {
		assert.GreaterOrEqual(t, r.DocumentsIndexed, prev)
		prev = r.DocumentsIndexed
	}
}

func TestOrchestrator_Run_EmptyInput(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	o := New(store, 4, 2, nil)
	result := o.Run(context.Background(), nil)
	assert.Equal(t, 0, result.DocumentsIndexed)
	assert.Empty(t, result.Errors)
}

func TestError_MessageIncludesBatchIndex(t *testing.T) {
	t.Parallel()
	err := Error{BatchIndex: 3, Err: fmt.Errorf("boom")}
	assert.Equal(t, "batch 3: boom", err.Error())
}
