// Package mcp exposes the question-to-SQL pipeline as MCP tools.
package mcp

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/mcp/tools"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/middleware"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/services"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "ekaya-nl2sql"

// Server wraps the mcp-go MCPServer with the pipeline's tools.
type Server struct {
	mcp    *server.MCPServer
	logger *zap.Logger
}

// NewServer creates a new MCP server instance.
func NewServer(name, version string, logger *zap.Logger) *Server {
	mcpServer := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
	)

	return &Server{
		mcp:    mcpServer,
		logger: logger.Named("mcp"),
	}
}

// MCP returns the underlying MCPServer for tool registration.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// RegisterPipelineTools adds the query and health tools.
func (s *Server) RegisterPipelineTools(queryService services.QueryService, checker tools.HealthChecker, version string) {
	tools.RegisterQueryTools(s.mcp, queryService, s.logger)
	tools.RegisterHealthTool(s.mcp, checker, version)
}

// NewStreamableHTTPServer creates an HTTP transport server wrapping this MCP server.
// The HTTP mux handles routing to /mcp, so no endpoint path is configured here.
func (s *Server) NewStreamableHTTPServer() *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(
		s.mcp,
		server.WithStateLess(true),
	)
}

// RegisterRoutes mounts the streamable HTTP transport on /mcp with tool-call logging.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/mcp", middleware.MCPRequestLogger(s.logger)(s.NewStreamableHTTPServer()))
}
