package indexengine

import (
	"log"
	"os"

	"github.com/lytics/dev-agent/internal/concurrency"
	"github.com/lytics/dev-agent/internal/embedder"
	"github.com/lytics/dev-agent/internal/eventbus"
	"github.com/lytics/dev-agent/internal/gitstats"
	"github.com/lytics/dev-agent/internal/metricsstore"
	"github.com/lytics/dev-agent/internal/progressreport"
	"github.com/lytics/dev-agent/internal/scan"
	"github.com/lytics/dev-agent/internal/state"
	"github.com/lytics/dev-agent/internal/vectorstore"
)

// DefaultBatchSize is the batch size used when Config.BatchSize is <= 0.
const DefaultBatchSize = 32

// Config bundles every collaborator the engine composes, per spec.md
// §4.1's component list. Tests substitute mocks/in-memory
// implementations for Scanner, VectorStore, Embedder, and GitStats;
// production wiring builds the real ones in internal/cliapp.
type Config struct {
	RepoRoot string

	Scanner     scan.Scanner
	VectorStore vectorstore.VectorStore
	Embedder    embedder.Embedder
	GitStats    gitstats.Provider // optional; nil disables enrichment
	Metrics     *metricsstore.Store // optional; nil disables snapshot recording

	StatePath string

	BatchSize   int
	Concurrency int // <=0 derives from concurrency.GetOptimalConcurrency

	Bus      *eventbus.Bus // optional; nil disables event emission
	Reporter progressreport.Reporter // optional; defaults to progressreport.NoOp

	Logger *log.Logger
}

func (c *Config) fillDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Concurrency <= 0 {
		c.Concurrency = concurrency.GetOptimalConcurrency(concurrency.Options{})
	}
	if c.Reporter == nil {
		c.Reporter = progressreport.NoOp
	}
	if c.Logger == nil {
		c.Logger = log.New(os.Stderr, "indexengine: ", log.LstdFlags)
	}
}

func (c *Config) stateStore() *state.Store {
	return state.NewStore(c.StatePath, c.Logger)
}
