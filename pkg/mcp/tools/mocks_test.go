package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/models"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/services"
)

type mockQueryService struct {
	generateSQL      func(ctx context.Context, question string) (*models.GenerationResult, error)
	executeSQL       func(ctx context.Context, sqlQuery string) (*models.QueryResult, error)
	generateInsights func(ctx context.Context, sqlQuery, question string) ([]models.Insight, error)
}

var _ services.QueryService = (*mockQueryService)(nil)

func (m *mockQueryService) GenerateSQL(ctx context.Context, question string) (*models.GenerationResult, error) {
	return m.generateSQL(ctx, question)
}

func (m *mockQueryService) ExecuteSQL(ctx context.Context, sqlQuery string) (*models.QueryResult, error) {
	return m.executeSQL(ctx, sqlQuery)
}

func (m *mockQueryService) GenerateInsights(ctx context.Context, sqlQuery, question string) ([]models.Insight, error) {
	return m.generateInsights(ctx, sqlQuery, question)
}

type toolResponse struct {
	Result struct {
		Content []mcp.TextContent `json:"content"`
		IsError bool              `json:"isError"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// callTool sends a tools/call message through the server and decodes the reply.
func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) toolResponse {
	t.Helper()

	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params":  map[string]any{"name": name, "arguments": args},
	})
	require.NoError(t, err)

	raw, err := json.Marshal(s.HandleMessage(context.Background(), msg))
	require.NoError(t, err)

	var resp toolResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	return resp
}

func newTestServer() *server.MCPServer {
	return server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
}
