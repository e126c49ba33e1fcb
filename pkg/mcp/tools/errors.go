package tools

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/llm"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/logging"
)

// ErrorResponse represents a structured error in tool results.
// Errors are returned as tool results so that the client model sees them
// and can rephrase the question or fix the SQL.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorResult creates a tool result containing a structured error.
func NewErrorResult(code, message string) *mcp.CallToolResult {
	jsonBytes, _ := json.Marshal(ErrorResponse{Error: true, Code: code, Message: message})
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// errorResult maps a pipeline error onto a structured tool error.
// It returns nil for failures the client cannot act on; the caller
// should return those as Go errors.
func errorResult(err error) *mcp.CallToolResult {
	var llmErr *llm.Error

	switch {
	case errors.Is(err, apperrors.ErrEmptyQuestion):
		return NewErrorResult("empty_query", "question cannot be empty")
	case errors.Is(err, apperrors.ErrEmptySQL):
		return NewErrorResult("missing_sql", "sql cannot be empty")
	case errors.Is(err, apperrors.ErrOnlySelectAllowed):
		return NewErrorResult("only_select", "only SELECT statements can be executed")
	case errors.Is(err, apperrors.ErrNoTablesExtracted):
		return NewErrorResult("no_tables_extracted", err.Error())
	case errors.Is(err, apperrors.ErrMalformedModelOutput):
		return NewErrorResult("malformed_model_output", err.Error())
	case errors.Is(err, apperrors.ErrExampleRetrievalFailed):
		return NewErrorResult("example_retrieval_failed", logging.SanitizeError(err))
	case errors.As(err, &llmErr):
		return NewErrorResult("model_error", logging.SanitizeError(err))
	case errors.Is(err, apperrors.ErrResourceUnavailable):
		return NewErrorResult("resource_unavailable", logging.SanitizeError(err))
	case IsSQLUserError(err):
		return NewErrorResult(SQLUserErrorCode(err), ExtractSQLErrorMessage(err))
	}
	return nil
}

// sqlStateRegex matches PostgreSQL SQLSTATE codes in error messages like "(SQLSTATE 42601)"
var sqlStateRegex = regexp.MustCompile(`\(SQLSTATE ([0-9A-Z]{5})\)`)

// IsSQLUserError reports whether err is caused by the statement itself
// (syntax, missing table or column, bad data) rather than the server.
//
// PostgreSQL SQLSTATE classes treated as user errors:
//   - 22xxx: Data Exception
//   - 42xxx: Syntax Error or Access Rule Violation
func IsSQLUserError(err error) bool {
	code := sqlState(err)
	return strings.HasPrefix(code, "22") || strings.HasPrefix(code, "42")
}

// SQLUserErrorCode returns a readable code for a SQL user error, or "" if
// err is not one.
func SQLUserErrorCode(err error) string {
	code := sqlState(err)
	switch code {
	case "42601":
		return "syntax_error"
	case "42703":
		return "undefined_column"
	case "42P01":
		return "undefined_table"
	case "42883":
		return "undefined_function"
	case "22012":
		return "division_by_zero"
	case "22P02", "22007":
		return "invalid_input"
	}
	switch {
	case strings.HasPrefix(code, "22"):
		return "data_exception"
	case strings.HasPrefix(code, "42"):
		return "sql_error"
	}
	return ""
}

func sqlState(err error) string {
	if err == nil {
		return ""
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	if matches := sqlStateRegex.FindStringSubmatch(err.Error()); len(matches) >= 2 {
		return matches[1]
	}
	return ""
}

// ExtractSQLErrorMessage extracts a clean error message from a SQL error.
// Removes the "SQLSTATE XXXXX" suffix and any "ERROR: " prefix.
func ExtractSQLErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Message
	}

	msg := err.Error()
	if idx := strings.Index(msg, " (SQLSTATE"); idx != -1 {
		msg = msg[:idx]
	}
	if idx := strings.LastIndex(msg, "ERROR: "); idx != -1 {
		msg = msg[idx+len("ERROR: "):]
	}
	return msg
}
