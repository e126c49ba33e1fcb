// Package tools implements the MCP tools backed by the query pipeline.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/logging"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/models"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/services"
)

type generateSQLResult struct {
	SQL      string                 `json:"sql"`
	Query    string                 `json:"query"`
	Intent   models.Intent          `json:"intent,omitempty"`
	Model    string                 `json:"model,omitempty"`
	Entities *models.EntitySkeleton `json:"entities,omitempty"`
	Prompt   string                 `json:"prompt,omitempty"`
}

type executeSQLResult struct {
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
	RowCount int      `json:"row_count"`
}

type insightsResult struct {
	Insights []models.Insight `json:"insights"`
}

// RegisterQueryTools adds generate_sql, execute_sql and generate_insights.
func RegisterQueryTools(s *server.MCPServer, queryService services.QueryService, logger *zap.Logger) {
	registerGenerateSQLTool(s, queryService, logger)
	registerExecuteSQLTool(s, queryService, logger)
	registerGenerateInsightsTool(s, queryService, logger)
}

func registerGenerateSQLTool(s *server.MCPServer, queryService services.QueryService, logger *zap.Logger) {
	tool := mcp.NewTool(
		"generate_sql",
		mcp.WithDescription("Translates a natural-language question about the dataset into a single SQL SELECT statement. "+
			"The statement is returned, not executed; use execute_sql to run it."),
		mcp.WithString(
			"question",
			mcp.Required(),
			mcp.Description("The question to answer, e.g. 'top 5 providers by total paid amount'"),
		),
		mcp.WithBoolean(
			"debug",
			mcp.Description("Include the intent, routed model, extracted entities and final prompt"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}

		result, err := queryService.GenerateSQL(ctx, question)
		if err != nil {
			return handleToolError(logger, "generate_sql", err)
		}

		out := generateSQLResult{SQL: result.SQL, Query: result.Question}
		if req.GetBool("debug", false) {
			out.Intent = result.Intent
			out.Model = result.Model
			out.Entities = result.Entities
			out.Prompt = result.Prompt
		}
		return jsonResult(out)
	})
}

func registerExecuteSQLTool(s *server.MCPServer, queryService services.QueryService, logger *zap.Logger) {
	tool := mcp.NewTool(
		"execute_sql",
		mcp.WithDescription("Executes a SQL SELECT statement against the dataset and returns its rows. "+
			"Statements that do not start with SELECT are rejected."),
		mcp.WithString(
			"sql",
			mcp.Required(),
			mcp.Description("The SELECT statement to run"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sqlQuery, err := req.RequireString("sql")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}

		result, err := queryService.ExecuteSQL(ctx, sqlQuery)
		if err != nil {
			return handleToolError(logger, "execute_sql", err)
		}

		return jsonResult(executeSQLResult{
			Columns:  result.Columns,
			Rows:     result.Rows,
			RowCount: result.RowCount(),
		})
	})
}

func registerGenerateInsightsTool(s *server.MCPServer, queryService services.QueryService, logger *zap.Logger) {
	tool := mcp.NewTool(
		"generate_insights",
		mcp.WithDescription("Executes a SELECT statement and summarizes its result as short insights "+
			"that answer the original question."),
		mcp.WithString(
			"sql",
			mcp.Required(),
			mcp.Description("The SELECT statement whose result should be summarized"),
		),
		mcp.WithString(
			"question",
			mcp.Required(),
			mcp.Description("The natural-language question the statement answers"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sqlQuery, err := req.RequireString("sql")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		question, err := req.RequireString("question")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		if strings.TrimSpace(sqlQuery) == "" || strings.TrimSpace(question) == "" {
			return NewErrorResult("missing_input", "sql and question are required"), nil
		}

		items, err := queryService.GenerateInsights(ctx, sqlQuery, question)
		if err != nil {
			return handleToolError(logger, "generate_insights", err)
		}
		return jsonResult(insightsResult{Insights: items})
	})
}

// handleToolError turns actionable errors into tool results and returns
// everything else as a Go error.
func handleToolError(logger *zap.Logger, tool string, err error) (*mcp.CallToolResult, error) {
	if result := errorResult(err); result != nil {
		logger.Debug("Tool returned error result",
			zap.String("tool", tool),
			zap.String("error", logging.SanitizeError(err)))
		return result, nil
	}
	logger.Error("Tool failed",
		zap.String("tool", tool),
		zap.String("error", logging.SanitizeError(err)))
	return nil, fmt.Errorf("%s failed: %s", tool, logging.SanitizeError(err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}
