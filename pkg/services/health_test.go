package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/catalog"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func TestHealthService_AllAvailable(t *testing.T) {
	h := NewHealthService(catalog.New(testSchema), stubPinger{}, nil, stubPinger{})

	report := h.Check(context.Background())

	assert.Equal(t, StatusOK, report.Status)
	assert.True(t, report.Schema.Available)
	assert.Contains(t, report.Schema.Detail, "claims(claim_id, provider_name")
	assert.True(t, report.Index.Available)
	assert.True(t, report.Database.Available)
}

func TestHealthService_Degraded(t *testing.T) {
	indexErr := fmt.Errorf("example index vector_store/examples.db: %w", apperrors.ErrResourceUnavailable)
	h := NewHealthService(
		catalog.Load("/nonexistent/schema.txt", zap.NewNop()),
		nil,
		indexErr,
		stubPinger{err: errors.New("dial tcp 127.0.0.1:5433: connect: connection refused")},
	)

	report := h.Check(context.Background())

	assert.Equal(t, StatusDegraded, report.Status)
	assert.False(t, report.Schema.Available)
	assert.NotEmpty(t, report.Schema.Error)
	assert.False(t, report.Index.Available)
	assert.Contains(t, report.Index.Error, "resource unavailable")
	assert.False(t, report.Database.Available)
	assert.Contains(t, report.Database.Error, "connection refused")
}

func TestHealthService_MissingCollaborators(t *testing.T) {
	report := NewHealthService(nil, nil, nil, nil).Check(context.Background())

	assert.Equal(t, StatusDegraded, report.Status)
	assert.Equal(t, "example index not loaded", report.Index.Error)
	assert.Equal(t, "no database configured", report.Database.Error)
}
