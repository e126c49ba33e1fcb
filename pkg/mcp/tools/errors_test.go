package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/llm"
)

func decodeError(t *testing.T, result *mcp.CallToolResult) ErrorResponse {
	t.Helper()
	require.NotNil(t, result)
	require.True(t, result.IsError)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(text.Text), &resp))
	return resp
}

func TestNewErrorResult(t *testing.T) {
	resp := decodeError(t, NewErrorResult("only_select", "only SELECT statements can be executed"))

	assert.True(t, resp.Error)
	assert.Equal(t, "only_select", resp.Code)
	assert.Equal(t, "only SELECT statements can be executed", resp.Message)
}

func TestErrorResult_PipelineErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"empty question", apperrors.ErrEmptyQuestion, "empty_query"},
		{"empty sql", apperrors.ErrEmptySQL, "missing_sql"},
		{"not select", apperrors.ErrOnlySelectAllowed, "only_select"},
		{"no tables", apperrors.NoTablesError("what is up"), "no_tables_extracted"},
		{"malformed", &apperrors.MalformedOutputError{Raw: "oops"}, "malformed_model_output"},
		{"retrieval", fmt.Errorf("retrieve examples: %w", &apperrors.RetrievalError{Cause: errors.New("disk")}), "example_retrieval_failed"},
		{"model", llm.NewError(llm.ErrorTypeRateLimit, "slow down", true, nil), "model_error"},
		{"unavailable", fmt.Errorf("no executor: %w", apperrors.ErrResourceUnavailable), "resource_unavailable"},
		{"sql syntax", &pgconn.PgError{Code: "42601", Message: "syntax error at or near \"FORM\""}, "syntax_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := decodeError(t, errorResult(tt.err))
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestErrorResult_ServerErrorReturnsNil(t *testing.T) {
	assert.Nil(t, errorResult(errors.New("connection reset by peer")))
}

func TestIsSQLUserError(t *testing.T) {
	assert.True(t, IsSQLUserError(&pgconn.PgError{Code: "42P01"}))
	assert.True(t, IsSQLUserError(errors.New(`ERROR: division by zero (SQLSTATE 22012)`)))
	assert.False(t, IsSQLUserError(&pgconn.PgError{Code: "08006"}))
	assert.False(t, IsSQLUserError(errors.New("timeout")))
	assert.False(t, IsSQLUserError(nil))
}

func TestSQLUserErrorCode(t *testing.T) {
	assert.Equal(t, "undefined_table", SQLUserErrorCode(&pgconn.PgError{Code: "42P01"}))
	assert.Equal(t, "undefined_column", SQLUserErrorCode(errors.New("x (SQLSTATE 42703)")))
	assert.Equal(t, "data_exception", SQLUserErrorCode(&pgconn.PgError{Code: "22023"}))
	assert.Equal(t, "sql_error", SQLUserErrorCode(&pgconn.PgError{Code: "42501"}))
	assert.Equal(t, "", SQLUserErrorCode(errors.New("timeout")))
}

func TestExtractSQLErrorMessage(t *testing.T) {
	assert.Equal(t, "relation \"foo\" does not exist",
		ExtractSQLErrorMessage(&pgconn.PgError{Code: "42P01", Message: "relation \"foo\" does not exist"}))
	assert.Equal(t, "division by zero",
		ExtractSQLErrorMessage(errors.New("query: ERROR: division by zero (SQLSTATE 22012)")))
	assert.Equal(t, "", ExtractSQLErrorMessage(nil))
}
