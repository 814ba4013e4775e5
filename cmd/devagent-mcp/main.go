// Command devagent-mcp exposes the indexing engine's search over the
// Model Context Protocol on stdio, for use by MCP-aware coding
// assistants.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lytics/dev-agent/internal/cliapp"
	"github.com/lytics/dev-agent/internal/mcpapp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	repoRoot, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	engine, err := cliapp.BuildEngine(repoRoot, true)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	if err := engine.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}

	srv := mcpapp.New(engine)
	defer srv.Close()

	return srv.Serve(ctx)
}
