package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/models"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/services"
)

type fakeQueryService struct{}

func (fakeQueryService) GenerateSQL(ctx context.Context, question string) (*models.GenerationResult, error) {
	return &models.GenerationResult{Question: question, SQL: "SELECT 1;"}, nil
}

func (fakeQueryService) ExecuteSQL(ctx context.Context, sqlQuery string) (*models.QueryResult, error) {
	return &models.QueryResult{Columns: []string{"x"}, Rows: [][]any{{1}}}, nil
}

func (fakeQueryService) GenerateInsights(ctx context.Context, sqlQuery, question string) ([]models.Insight, error) {
	return nil, nil
}

type fakeChecker struct{}

func (fakeChecker) Check(ctx context.Context) *services.HealthReport {
	return &services.HealthReport{Status: services.StatusOK}
}

func TestNewServer(t *testing.T) {
	s := NewServer(ServerName, "1.0.0", zap.NewNop())

	require.NotNil(t, s)
	assert.NotNil(t, s.MCP())
	assert.Same(t, s.mcp, s.MCP())
}

func TestServer_RegisterPipelineTools(t *testing.T) {
	s := NewServer(ServerName, "1.0.0", zap.NewNop())
	s.RegisterPipelineTools(fakeQueryService{}, fakeChecker{}, "1.0.0")

	raw, err := json.Marshal(s.MCP().HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","method":"tools/list","id":1}`)))
	require.NoError(t, err)

	var response struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &response))

	var names []string
	for _, tool := range response.Result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"generate_sql", "execute_sql", "generate_insights", "health"}, names)
}

func TestServer_RegisterRoutes(t *testing.T) {
	s := NewServer(ServerName, "1.0.0", zap.NewNop())
	s.RegisterPipelineTools(fakeQueryService{}, fakeChecker{}, "1.0.0")

	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"generate_sql","arguments":{"question":"one"}}}`
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "SELECT 1;")
}
