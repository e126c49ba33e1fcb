package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/services"
)

// HealthChecker reports the state of the pipeline's collaborators.
type HealthChecker interface {
	Check(ctx context.Context) *services.HealthReport
}

type healthResult struct {
	Version string `json:"version"`
	*services.HealthReport
}

// RegisterHealthTool adds a health check tool to the MCP server.
// The tool reports the schema, example index and database state with the version.
func RegisterHealthTool(s *server.MCPServer, checker HealthChecker, version string) {
	tool := mcp.NewTool(
		"health",
		mcp.WithDescription("Returns server health status and version"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(healthResult{Version: version, HealthReport: checker.Check(ctx)})
	})
}
