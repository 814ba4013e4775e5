package indexengine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lytics/dev-agent/internal/embedder"
	"github.com/lytics/dev-agent/internal/eventbus"
	"github.com/lytics/dev-agent/internal/scan"
	"github.com/lytics/dev-agent/internal/vectorstore"
)

// TEST PLAN: Engine
//
// S1 Fresh full index: one file, one component; state and vector store
//    agree on counts, byLanguage reflects the file.
// S2 No-op update: unmodified tree yields zero scanned files and no
//    vector-store writes.
// S3 Changed file: update deletes the prior document id before adding
//    the new one; byLanguage.files stays 1, hash changes.
// S4 Add + delete: update reconciles both in one call; deleted file's
//    key disappears from state, new file's key appears.
// S5 Partial batch failure: K of M batches fail; documentsIndexed is
//    the successful sum, errors length is K, the call still succeeds.
// S6 Model mismatch on load: Initialize ignores state for non-matching
//    (model, dim), acting as first run.
// Additional: overlapping Index/Update calls return ConcurrentIndexError.

func writeFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	abs := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
}

func tsDoc(file, name string, start, end int, text string) scan.Document {
	return scan.Document{
		ID:       fmt.Sprintf("%s:%s:%d", file, name, start),
		Language: "typescript",
		Metadata: scan.Metadata{
			File: file, Path: file, Type: scan.ComponentFunction, Name: name,
			StartLine: start, EndLine: end, Exported: true,
		},
		Text: text,
	}
}

func newTestEngine(t *testing.T, mock *scan.MockScanner) (*Engine, string) {
	t.Helper()
	root := t.TempDir()
	statePath := filepath.Join(root, ".devagent", "indexer-state.json")

	cfg := Config{
		RepoRoot:    root,
		Scanner:     mock,
		VectorStore: vectorstore.NewMemoryStore(embedder.NewMockEmbedder(8)),
		Embedder:    embedder.NewMockEmbedder(8),
		StatePath:   statePath,
		BatchSize:   10,
		Concurrency: 2,
	}
	e := New(cfg)
	require.NoError(t, e.Initialize(context.Background()))
	return e, root
}

func TestEngine_S1_FreshFullIndex(t *testing.T) {
	t.Parallel()
	doc := tsDoc("a.ts", "greet", 1, 1, "export function greet(name: string): string { return `Hello, ${name}`; }")
	mock := scan.NewMockScanner([]scan.Document{doc})
	e, root := newTestEngine(t, mock)
	writeFile(t, root, "a.ts", doc.Text)

	result, err := e.Index(context.Background(), IndexOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.FilesScanned)
	assert.Equal(t, 1, result.DocumentsIndexed)
	assert.Empty(t, result.Errors)

	st := e.currentState()
	require.NotNil(t, st)
	require.Contains(t, st.Files, "a.ts")
	assert.Len(t, st.Files["a.ts"].DocumentIDs, 1)

	ls := st.Stats.ByLanguage["typescript"]
	assert.Equal(t, 1, ls.Files)
	assert.Equal(t, 1, ls.Components)
	assert.GreaterOrEqual(t, ls.Lines, 1)

	require.FileExists(t, e.cfg.StatePath)

	vsStats, err := e.cfg.VectorStore.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, st.Stats.TotalVectors, vsStats.TotalDocuments)
}

func TestEngine_S2_NoOpUpdate(t *testing.T) {
	t.Parallel()
	doc := tsDoc("a.ts", "greet", 1, 1, "export function greet() {}")
	mock := scan.NewMockScanner([]scan.Document{doc})
	e, root := newTestEngine(t, mock)
	writeFile(t, root, "a.ts", doc.Text)

	_, err := e.Index(context.Background(), IndexOptions{})
	require.NoError(t, err)

	before, err := e.cfg.VectorStore.GetStats(context.Background())
	require.NoError(t, err)

	result, err := e.Update(context.Background(), UpdateOptions{})
	require.NoError(t, err)

	assert.Equal(t, 0, result.FilesScanned)
	assert.Equal(t, 0, result.DocumentsIndexed)

	after, err := e.cfg.VectorStore.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before.TotalDocuments, after.TotalDocuments)
}

func TestEngine_S3_ChangedFile(t *testing.T) {
	t.Parallel()
	oldDoc := tsDoc("a.ts", "greet", 1, 1, "export function greet() { return 1; }")
	mock := scan.NewMockScanner([]scan.Document{oldDoc})
	e, root := newTestEngine(t, mock)
	writeFile(t, root, "a.ts", oldDoc.Text)

	_, err := e.Index(context.Background(), IndexOptions{})
	require.NoError(t, err)
	priorHash := e.currentState().Files["a.ts"].Hash

	newDoc := tsDoc("a.ts", "greet", 1, 2, "export function greet() { return 2; }")
	mock.Documents = []scan.Document{newDoc}
	writeFile(t, root, "a.ts", newDoc.Text)

	result, err := e.Update(context.Background(), UpdateOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.DocumentsIndexed)

	st := e.currentState()
	assert.NotEqual(t, priorHash, st.Files["a.ts"].Hash)
	assert.Equal(t, 1, st.Stats.ByLanguage["typescript"].Files)

	vsStats, err := e.cfg.VectorStore.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, vsStats.TotalDocuments)
}

func TestEngine_S4_AddAndDelete(t *testing.T) {
	t.Parallel()
	docA := tsDoc("a.ts", "greet", 1, 1, "export function greet() {}")
	mock := scan.NewMockScanner([]scan.Document{docA})
	e, root := newTestEngine(t, mock)
	writeFile(t, root, "a.ts", docA.Text)

	_, err := e.Index(context.Background(), IndexOptions{})
	require.NoError(t, err)

	docB := tsDoc("b.ts", "farewell", 1, 1, "export function farewell() {}")
	mock.Documents = []scan.Document{docB}
	mock.Paths = []string{"b.ts"}
	writeFile(t, root, "b.ts", docB.Text)
	require.NoError(t, os.Remove(filepath.Join(root, "a.ts")))

	result, err := e.Update(context.Background(), UpdateOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.DocumentsIndexed)

	st := e.currentState()
	assert.NotContains(t, st.Files, "a.ts")
	assert.Contains(t, st.Files, "b.ts")

	vsStats, err := e.cfg.VectorStore.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, vsStats.TotalDocuments)
}

func TestEngine_S6_ModelMismatchOnLoad(t *testing.T) {
	t.Parallel()
	doc := tsDoc("a.ts", "greet", 1, 1, "export function greet() {}")
	mock := scan.NewMockScanner([]scan.Document{doc})
	e, root := newTestEngine(t, mock)
	writeFile(t, root, "a.ts", doc.Text)

	_, err := e.Index(context.Background(), IndexOptions{})
	require.NoError(t, err)

	reopened := New(Config{
		RepoRoot:    root,
		Scanner:     mock,
		VectorStore: vectorstore.NewMemoryStore(embedder.NewMockEmbedder(999)),
		Embedder:    embedder.NewMockEmbedder(999),
		StatePath:   e.cfg.StatePath,
		BatchSize:   10,
		Concurrency: 2,
	})
	require.NoError(t, reopened.Initialize(context.Background()))
	assert.Nil(t, reopened.currentState())
}

func TestEngine_OverlappingCallsRejected(t *testing.T) {
	t.Parallel()
	doc := tsDoc("a.ts", "greet", 1, 1, "export function greet() {}")
	mock := scan.NewMockScanner([]scan.Document{doc})
	e, _ := newTestEngine(t, mock)

	require.True(t, e.runMu.TryLock())
	defer e.runMu.Unlock()

	_, err := e.Index(context.Background(), IndexOptions{})
	assert.ErrorAs(t, err, new(*ConcurrentIndexError))
}

// failingStore fails AddDocuments on specific 1-indexed call numbers,
// otherwise delegates to an embedded MemoryStore.
type failingStore struct {
	*vectorstore.MemoryStore
	mu      sync.Mutex
	calls   int
	failOn  map[int]bool
}

func (f *failingStore) AddDocuments(ctx context.Context, docs []vectorstore.Document) error {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()

	if f.failOn[call] {
		return fmt.Errorf("simulated batch failure on call %d", call)
	}
	return f.MemoryStore.AddDocuments(ctx, docs)
}

func TestEngine_S5_PartialBatchFailure(t *testing.T) {
	t.Parallel()
	docs := make([]scan.Document, 100)
	for i := range docs {
		docs[i] = tsDoc(fmt.Sprintf("f%d.ts", i), fmt.Sprintf("fn%d", i), 1, 1, "export function fn() {}")
	}
	mock := scan.NewMockScanner(docs)

	root := t.TempDir()
	for _, d := range docs {
		writeFile(t, root, d.Metadata.File, d.Text)
	}

	store := &failingStore{
		MemoryStore: vectorstore.NewMemoryStore(embedder.NewMockEmbedder(8)),
		failOn:      map[int]bool{3: true, 7: true},
	}

	cfg := Config{
		RepoRoot:    root,
		Scanner:     mock,
		VectorStore: store,
		Embedder:    embedder.NewMockEmbedder(8),
		StatePath:   filepath.Join(root, ".devagent", "indexer-state.json"),
		BatchSize:   10,
		Concurrency: 1, // serialize so call numbers are deterministic
	}
	e := New(cfg)
	require.NoError(t, e.Initialize(context.Background()))

	result, err := e.Index(context.Background(), IndexOptions{})
	require.NoError(t, err)

	assert.Equal(t, 80, result.DocumentsIndexed)
	assert.Len(t, result.Errors, 2)

	vsStats, err := store.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 80, vsStats.TotalDocuments)
}
