package services

import (
	"context"
	"errors"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/catalog"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/logging"
)

// Health statuses.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// Pinger reports whether a backing resource is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ComponentHealth is the state of one collaborator.
type ComponentHealth struct {
	Available bool   `json:"available"`
	Detail    string `json:"detail,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HealthReport summarizes the collaborators the pipeline depends on.
type HealthReport struct {
	Status   string          `json:"status"`
	Schema   ComponentHealth `json:"schema"`
	Index    ComponentHealth `json:"index"`
	Database ComponentHealth `json:"database"`
}

// HealthService inspects the schema catalog, example index and database.
type HealthService struct {
	catalog  *catalog.Catalog
	index    Pinger
	indexErr error
	database Pinger
}

// NewHealthService creates a health service. indexErr is the error recorded
// when the example index could not be opened at startup; index and database
// may be nil.
func NewHealthService(cat *catalog.Catalog, index Pinger, indexErr error, database Pinger) *HealthService {
	return &HealthService{
		catalog:  cat,
		index:    index,
		indexErr: indexErr,
		database: database,
	}
}

// Check reports each component. The overall status is degraded when any
// component is unavailable.
func (h *HealthService) Check(ctx context.Context) *HealthReport {
	report := &HealthReport{Status: StatusOK}

	report.Schema = h.schemaHealth()
	report.Index = pingHealth(ctx, h.index, h.indexErr, "example index not loaded")
	report.Database = pingHealth(ctx, h.database, nil, "no database configured")

	if !report.Schema.Available || !report.Index.Available || !report.Database.Available {
		report.Status = StatusDegraded
	}
	return report
}

func (h *HealthService) schemaHealth() ComponentHealth {
	if h.catalog == nil || h.catalog.Unavailable() {
		health := ComponentHealth{Error: "schema file not loaded"}
		if h.catalog != nil && h.catalog.LoadError() != nil {
			health.Error = logging.SanitizeError(h.catalog.LoadError())
		}
		return health
	}
	return ComponentHealth{Available: true, Detail: h.catalog.Summary()}
}

func pingHealth(ctx context.Context, p Pinger, startupErr error, missing string) ComponentHealth {
	if startupErr != nil {
		return ComponentHealth{Error: logging.SanitizeError(startupErr)}
	}
	if p == nil {
		return ComponentHealth{Error: missing}
	}
	if err := p.Ping(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return ComponentHealth{Error: "health check canceled"}
		}
		return ComponentHealth{Error: logging.SanitizeError(err)}
	}
	return ComponentHealth{Available: true}
}
