// Package concurrency computes the effective worker count for the batch
// orchestrator from CPU count and environment overrides.
package concurrency

import (
	"os"
	"runtime"
	"strconv"
)

// EnvOverride is the documented environment variable that overrides the
// computed worker count.
const EnvOverride = "DEV_AGENT_CONCURRENCY"

// SystemResources describes the resources available for computing a
// concurrency policy. Zero value means "ask the runtime".
type SystemResources struct {
	// LogicalCPUs overrides runtime.NumCPU() when > 0; used by tests.
	LogicalCPUs int
}

// Options bundles the inputs to GetOptimalConcurrency.
type Options struct {
	Resources SystemResources
	// Environment is consulted for EnvOverride; defaults to os.LookupEnv.
	Environment func(key string) (string, bool)
}

// GetOptimalConcurrency computes an effective worker count.
// Environment overrides win; otherwise the default is
// min(8, max(2, cpus/2)). The result is always >= 1.
func GetOptimalConcurrency(opts Options) int {
	lookup := opts.Environment
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if raw, ok := lookup(EnvOverride); ok {
		if n, err := strconv.Atoi(raw); err == nil && n >= 1 {
			return n
		}
	}

	cpus := opts.Resources.LogicalCPUs
	if cpus <= 0 {
		cpus = runtime.NumCPU()
	}

	n := cpus / 2
	if n < 2 {
		n = 2
	}
	if n > 8 {
		n = 8
	}
	return n
}
