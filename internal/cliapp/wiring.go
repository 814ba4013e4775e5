package cliapp

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/lytics/dev-agent/internal/config"
	"github.com/lytics/dev-agent/internal/embedder"
	"github.com/lytics/dev-agent/internal/eventbus"
	"github.com/lytics/dev-agent/internal/gitstats"
	"github.com/lytics/dev-agent/internal/indexengine"
	"github.com/lytics/dev-agent/internal/metricsstore"
	"github.com/lytics/dev-agent/internal/progressreport"
	"github.com/lytics/dev-agent/internal/scan"
	"github.com/lytics/dev-agent/internal/state"
	"github.com/lytics/dev-agent/internal/vectorstore"
)

const (
	stateFileName  = "indexer-state.json"
	metricsDBName  = "metrics.db"
	vectorsDBName  = "vectors.db"
)

// app bundles an Engine with the collaborators its owner is responsible
// for closing, matching the teacher's pattern of returning a bundle of
// "things the caller must Close" from its per-command setup helpers.
type app struct {
	Engine *indexengine.Engine
	Bus    *eventbus.Bus
}

// buildApp loads configuration for repoRoot and wires every
// IndexerEngine collaborator from the reference implementations in
// SPEC_FULL.md §4.14–§4.17:
// sqlite-vec vector store, mock embedder, git-CLI history provider,
// SQLite metrics store, and an event bus. Close the returned app's
// Engine when done.
func buildApp(repoRoot string, quiet bool) (*app, error) {
	cfg, err := config.NewLoader(repoRoot).Load()
	if err != nil {
		return nil, fmt.Errorf("cliapp: load config: %w", err)
	}

	storageDir := filepath.Join(repoRoot, cfg.Storage.Directory)
	if err := state.EnsureStorageDirectory(storageDir); err != nil {
		return nil, fmt.Errorf("cliapp: %w", err)
	}

	baseEmb := embedder.NewMockEmbedder(cfg.Embedding.Dimensions)
	emb, err := embedder.NewCachingEmbedder(baseEmb, 0)
	if err != nil {
		return nil, fmt.Errorf("cliapp: build embedder cache: %w", err)
	}

	vs := vectorstore.NewSQLiteVecStore(filepath.Join(storageDir, vectorsDBName), emb)

	metrics, err := metricsstore.Open(filepath.Join(storageDir, metricsDBName))
	if err != nil {
		return nil, fmt.Errorf("cliapp: open metrics store: %w", err)
	}

	var gitProvider gitstats.Provider = gitstats.NewCLIProvider()
	if _, err := os.Stat(filepath.Join(repoRoot, ".git")); err != nil {
		gitProvider = gitstats.NoopProvider{}
	}

	bus := eventbus.New(log.New(os.Stderr, "eventbus: ", log.LstdFlags))

	reporter := progressreport.Reporter(progressreport.NoOp)
	if !quiet {
		reporter = newBarReporter()
	}

	engine := indexengine.New(indexengine.Config{
		RepoRoot:    repoRoot,
		Scanner:     scan.NewDefaultScanner(0),
		VectorStore: vs,
		Embedder:    emb,
		GitStats:    gitProvider,
		Metrics:     metrics,
		StatePath:   filepath.Join(storageDir, stateFileName),
		BatchSize:   cfg.Batch.Size,
		Concurrency: cfg.Batch.Concurrency,
		Bus:         bus,
		Reporter:    reporter,
		Logger:      log.New(os.Stderr, "devagent: ", log.LstdFlags),
	})

	return &app{Engine: engine, Bus: bus}, nil
}

// BuildEngine wires a production Engine for repoRoot the same way every
// cliapp subcommand does, for reuse by cmd/devagent-mcp. The caller owns
// the returned Engine's lifecycle (Initialize, then Close).
func BuildEngine(repoRoot string, quiet bool) (*indexengine.Engine, error) {
	a, err := buildApp(repoRoot, quiet)
	if err != nil {
		return nil, err
	}
	return a.Engine, nil
}

func repoRootFromArgs(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return "", fmt.Errorf("cliapp: resolve path %q: %w", args[0], err)
		}
		return abs, nil
	}
	return os.Getwd()
}
