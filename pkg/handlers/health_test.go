package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/services"
)

type staticChecker struct {
	report *services.HealthReport
}

func (c staticChecker) Check(ctx context.Context) *services.HealthReport {
	return c.report
}

func TestHealthHandler_Health(t *testing.T) {
	report := &services.HealthReport{
		Status: services.StatusDegraded,
		Schema: services.ComponentHealth{Available: true, Detail: "claims(claim_id)\n"},
		Index:  services.ComponentHealth{Error: "example index not loaded"},
	}
	handler := NewHealthHandler(staticChecker{report: report}, "test-version", "test", zap.NewNop())

	rec := httptest.NewRecorder()
	handler.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got services.HealthReport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, *report, got)
}

func TestHealthHandler_Ping(t *testing.T) {
	handler := NewHealthHandler(staticChecker{}, "test-version", "test", zap.NewNop())

	rec := httptest.NewRecorder()
	handler.Ping(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var response PingResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, "test-version", response.Version)
	assert.Equal(t, "ekaya-nl2sql", response.Service)
	assert.Equal(t, "test", response.Environment)
	assert.NotEmpty(t, response.GoVersion)
}
