// Package mcpapp exposes the indexing engine's search over the Model
// Context Protocol, ported from the teacher's internal/mcp server
// bootstrap (internal/mcp/server.go) down to a single tool, search_code,
// since this module's scope stops at §1's core engine.
package mcpapp

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/lytics/dev-agent/internal/indexengine"
)

// Server wraps an *indexengine.Engine in an MCP stdio server exposing
// the search_code tool.
type Server struct {
	engine *indexengine.Engine
	mcp    *server.MCPServer
	logger *log.Logger
}

// New builds a Server around engine. Call engine.Initialize before Serve.
func New(engine *indexengine.Engine) *Server {
	mcpServer := server.NewMCPServer("devagent-mcp", "1.0.0", server.WithToolCapabilities(false))

	s := &Server{
		engine: engine,
		mcp:    mcpServer,
		logger: log.New(os.Stderr, "mcpapp: ", log.LstdFlags),
	}
	addSearchCodeTool(mcpServer, engine)
	return s
}

// Serve starts the MCP server on stdio and blocks until a shutdown
// signal arrives or the server errors, mirroring the teacher's
// MCPServer.Serve graceful-shutdown loop.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("starting MCP server on stdio")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("mcpapp: serve: %w", err)
		}
	}()

	select {
	case <-sigCh:
		s.logger.Printf("received shutdown signal")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the underlying engine's resources.
func (s *Server) Close() error {
	return s.engine.Close()
}
