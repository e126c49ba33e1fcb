package handlers

import (
	"context"
	"net/http"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/services"
)

// PingResponse contains service status and version information.
type PingResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Service     string `json:"service"`
	GoVersion   string `json:"go_version"`
	Hostname    string `json:"hostname"`
	Environment string `json:"environment"`
}

// HealthChecker reports the state of the pipeline's collaborators.
type HealthChecker interface {
	Check(ctx context.Context) *services.HealthReport
}

// HealthHandler handles health check and ping endpoints.
type HealthHandler struct {
	checker     HealthChecker
	version     string
	environment string
	logger      *zap.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(checker HealthChecker, version, environment string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		checker:     checker,
		version:     version,
		environment: environment,
		logger:      logger,
	}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health handles GET /health requests.
// A degraded report is still served with 200: the server keeps answering
// requests that do not need the missing component.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	report := h.checker.Check(r.Context())
	if report.Status != services.StatusOK {
		h.logger.Warn("Health check degraded",
			zap.Bool("schema", report.Schema.Available),
			zap.Bool("index", report.Index.Available),
			zap.Bool("database", report.Database.Available))
	}

	if err := WriteJSON(w, http.StatusOK, report); err != nil {
		h.logger.Error("Failed to encode health response", zap.Error(err))
	}
}

// Ping handles GET /ping requests.
// Returns detailed service information including version and environment.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	hostname, err := os.Hostname()
	if err != nil {
		http.Error(w, "failed to get hostname", http.StatusInternalServerError)
		return
	}

	response := PingResponse{
		Status:      "ok",
		Version:     h.version,
		Service:     "ekaya-nl2sql",
		GoVersion:   runtime.Version(),
		Hostname:    hostname,
		Environment: h.environment,
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
