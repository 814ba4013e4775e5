package mcpapp

// Implementation Plan (ported from the teacher's tool.go/AddCortexSearchTool):
// 1. addSearchCodeTool registers the search_code tool with the server.
// 2. createSearchCodeHandler parses MCP arguments into SearchOptions.
// 3. Delegate to Engine.Search and marshal the results back as JSON.
// 4. Engine errors are classified per the spec's JSON-RPC code table.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lytics/dev-agent/internal/indexengine"
	"github.com/lytics/dev-agent/internal/vectorstore"
)

const defaultSearchLimit = 15

// searchCodeResponse is the JSON body returned as the tool's text result.
type searchCodeResponse struct {
	Results []vectorstore.SearchResult `json:"results"`
	Total   int                        `json:"total"`
}

func addSearchCodeTool(s *server.MCPServer, engine *indexengine.Engine) {
	tool := mcp.NewTool(
		"search_code",
		mcp.WithDescription("Search the indexed repository for code components relevant to a natural-language query."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language search query, e.g. 'retry logic for HTTP requests'")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (default 15)")),
		mcp.WithNumber("threshold",
			mcp.Description("Minimum similarity score in [0,1] a result must meet")),
	)

	s.AddTool(tool, createSearchCodeHandler(engine))
}

func createSearchCodeHandler(engine *indexengine.Engine) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("[%d] invalid arguments format", codeInvalidParams)), nil
		}

		query, ok := argsMap["query"].(string)
		if !ok || query == "" {
			return mcp.NewToolResultError(fmt.Sprintf("[%d] query parameter is required", codeInvalidParams)), nil
		}

		limit := defaultSearchLimit
		if v, ok := argsMap["limit"].(float64); ok && v > 0 {
			limit = int(v)
		}

		var threshold float32
		if v, ok := argsMap["threshold"].(float64); ok {
			threshold = float32(v)
		}

		results, err := engine.Search(ctx, query, vectorstore.SearchOptions{
			Limit:          limit,
			ScoreThreshold: threshold,
		})
		if err != nil {
			mcpErr := classifyError(err)
			return mcp.NewToolResultError(mcpErr.Error()), nil
		}

		response := searchCodeResponse{Results: results, Total: len(results)}
		jsonData, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("mcpapp: marshal response: %w", err)
		}

		return mcp.NewToolResultText(string(jsonData)), nil
	}
}
