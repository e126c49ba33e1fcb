package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/logging"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/models"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/services"
)

// GenerateSQLRequest is the body of POST /generate_sql.
type GenerateSQLRequest struct {
	Query string `json:"query"`
}

// GenerateSQLResponse echoes the question with its generated statement.
type GenerateSQLResponse struct {
	SQL   string `json:"sql"`
	Query string `json:"query"`
}

// ExecuteSQLRequest is the body of POST /execute_sql.
type ExecuteSQLRequest struct {
	SQL string `json:"sql"`
}

// ExecuteSQLResponse carries the executed result set.
type ExecuteSQLResponse struct {
	Results  *models.QueryResult `json:"results"`
	RowCount int                 `json:"row_count"`
}

// GenerateInsightsRequest is the body of POST /generate_insights.
type GenerateInsightsRequest struct {
	SQL   string `json:"sql"`
	Query string `json:"query"`
}

// GenerateInsightsResponse carries the parsed insight entries.
type GenerateInsightsResponse struct {
	Insights []models.Insight `json:"insights"`
}

// QueryHandler serves the question-to-SQL endpoints.
type QueryHandler struct {
	queryService services.QueryService
	logger       *zap.Logger
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(queryService services.QueryService, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		queryService: queryService,
		logger:       logger.Named("handlers.query"),
	}
}

// RegisterRoutes registers the query handler's routes on the given mux.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /generate_sql", h.GenerateSQL)
	mux.HandleFunc("POST /execute_sql", h.ExecuteSQL)
	mux.HandleFunc("POST /generate_insights", h.GenerateInsights)
}

// GenerateSQL handles POST /generate_sql
func (h *QueryHandler) GenerateSQL(w http.ResponseWriter, r *http.Request) {
	var req GenerateSQLRequest
	if !h.decode(w, r, &req, "sql", "") {
		return
	}

	question := strings.TrimSpace(req.Query)
	h.logger.Info("Generate SQL request", zap.String("query", logging.TruncateString(question, logging.MaxQueryLogLength)))

	result, err := h.queryService.GenerateSQL(r.Context(), question)
	if err != nil {
		h.writeError(w, err, "sql", "")
		return
	}

	if err := WriteJSON(w, http.StatusOK, GenerateSQLResponse{SQL: result.SQL, Query: question}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ExecuteSQL handles POST /execute_sql
func (h *QueryHandler) ExecuteSQL(w http.ResponseWriter, r *http.Request) {
	var req ExecuteSQLRequest
	if !h.decode(w, r, &req, "results", map[string]any{}) {
		return
	}

	result, err := h.queryService.ExecuteSQL(r.Context(), req.SQL)
	if err != nil {
		h.writeError(w, err, "results", map[string]any{})
		return
	}

	if err := WriteJSON(w, http.StatusOK, ExecuteSQLResponse{Results: result, RowCount: result.RowCount()}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GenerateInsights handles POST /generate_insights
func (h *QueryHandler) GenerateInsights(w http.ResponseWriter, r *http.Request) {
	var req GenerateInsightsRequest
	if !h.decode(w, r, &req, "insights", []models.Insight{}) {
		return
	}

	if strings.TrimSpace(req.SQL) == "" || strings.TrimSpace(req.Query) == "" {
		if err := ErrorResponseWithPayload(w, http.StatusBadRequest, CodeMissingInput, "SQL and original query required", "insights", []models.Insight{}); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	insights, err := h.queryService.GenerateInsights(r.Context(), req.SQL, req.Query)
	if err != nil {
		h.writeError(w, err, "insights", []models.Insight{})
		return
	}

	if err := WriteJSON(w, http.StatusOK, GenerateInsightsResponse{Insights: insights}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *QueryHandler) decode(w http.ResponseWriter, r *http.Request, dst any, payloadKey string, payload any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if err := ErrorResponseWithPayload(w, http.StatusBadRequest, CodeInvalidRequest, "Invalid request body", payloadKey, payload); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return false
	}
	return true
}

func (h *QueryHandler) writeError(w http.ResponseWriter, err error, payloadKey string, payload any) {
	status, code, message := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("code", code),
			zap.String("error", logging.SanitizeError(err)))
	} else {
		h.logger.Info("Request rejected", zap.String("code", code))
	}

	if err := ErrorResponseWithPayload(w, status, code, message, payloadKey, payload); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
