package handlers

import (
	"errors"
	"net/http"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/llm"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/logging"
)

// Error codes returned in the "error" field.
const (
	CodeInvalidRequest       = "invalid_request"
	CodeEmptyQuery           = "empty_query"
	CodeMissingSQL           = "missing_sql"
	CodeOnlySelect           = "only_select"
	CodeMissingInput         = "missing_input"
	CodeNoTables             = "no_tables_extracted"
	CodeMalformedModelOutput = "malformed_model_output"
	CodeModelError           = "model_error"
	CodeModelUnavailable     = "model_unavailable"
	CodeRetrievalFailed      = "example_retrieval_failed"
	CodeResourceUnavailable  = "resource_unavailable"
	CodeInternal             = "internal_error"
)

// errorStatus maps a pipeline error to an HTTP status, error code and
// user-facing message.
func errorStatus(err error) (int, string, string) {
	var llmErr *llm.Error

	switch {
	case errors.Is(err, apperrors.ErrEmptyQuestion):
		return http.StatusBadRequest, CodeEmptyQuery, "No query provided"
	case errors.Is(err, apperrors.ErrEmptySQL):
		return http.StatusBadRequest, CodeMissingSQL, "No SQL provided"
	case errors.Is(err, apperrors.ErrOnlySelectAllowed):
		return http.StatusBadRequest, CodeOnlySelect, "Only SELECT allowed"
	case errors.Is(err, apperrors.ErrNoTablesExtracted):
		return http.StatusBadRequest, CodeNoTables, err.Error()
	case errors.Is(err, apperrors.ErrMalformedModelOutput):
		return http.StatusBadGateway, CodeMalformedModelOutput, err.Error()
	case errors.Is(err, apperrors.ErrExampleRetrievalFailed):
		return http.StatusServiceUnavailable, CodeRetrievalFailed, logging.SanitizeError(err)
	case errors.As(err, &llmErr):
		if llmErr.Type == llm.ErrorTypeCircuit {
			return http.StatusServiceUnavailable, CodeModelUnavailable, llmErr.Error()
		}
		return http.StatusBadGateway, CodeModelError, logging.SanitizeError(err)
	case errors.Is(err, apperrors.ErrResourceUnavailable):
		return http.StatusServiceUnavailable, CodeResourceUnavailable, logging.SanitizeError(err)
	default:
		return http.StatusInternalServerError, CodeInternal, logging.SanitizeError(err)
	}
}
