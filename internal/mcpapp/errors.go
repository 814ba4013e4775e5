package mcpapp

import (
	"errors"
	"fmt"

	"github.com/lytics/dev-agent/internal/indexengine"
)

// JSON-RPC error codes per spec.md §7's MCP mapping. GitHubCliError has
// no corresponding collaborator in this module's scope (§1 drops the
// GitHub CLI enrichment entirely) and is therefore never produced; it is
// kept here only so the full code table is visible in one place.
const (
	codeInvalidParams = -32602
	codeNotFound       = -32001
	codeTimeout        = -32002
	codeInternal       = -32603
	codeGitHubCliError = -32003
	codeIndexerError   = -32004
)

// mcpError carries a JSON-RPC error code alongside the engine error it
// was derived from.
type mcpError struct {
	Code    int
	Message string
}

func (e *mcpError) Error() string { return fmt.Sprintf("[%d] %s", e.Code, e.Message) }

// classifyError maps an engine error to the JSON-RPC code table.
func classifyError(err error) *mcpError {
	if err == nil {
		return nil
	}

	var concurrent *indexengine.ConcurrentIndexError
	if errors.As(err, &concurrent) {
		return &mcpError{Code: codeIndexerError, Message: err.Error()}
	}

	var idxErr *indexengine.IndexError
	if errors.As(err, &idxErr) {
		switch idxErr.Kind {
		case indexengine.KindTimeout:
			return &mcpError{Code: codeTimeout, Message: err.Error()}
		case indexengine.KindConfig:
			return &mcpError{Code: codeInvalidParams, Message: err.Error()}
		default:
			return &mcpError{Code: codeIndexerError, Message: err.Error()}
		}
	}

	return &mcpError{Code: codeInternal, Message: err.Error()}
}
