package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/llm"
)

// setupTestLogger creates a test logger with an observer to capture log entries.
func setupTestLogger(t *testing.T) (*zap.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, recorded := observer.New(zapcore.DebugLevel)
	return zap.New(core), recorded
}

func decodeEvent(t *testing.T, entry observer.LoggedEntry) SecurityEvent {
	t.Helper()
	raw, ok := entry.ContextMap()["event_json"].(string)
	require.True(t, ok, "event_json field missing")

	var event SecurityEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &event))
	return event
}

func TestNewSecurityAuditor(t *testing.T) {
	logger, _ := setupTestLogger(t)
	auditor := NewSecurityAuditor(logger)

	assert.NotNil(t, auditor)
	assert.NotNil(t, auditor.logger)
}

func TestLogRejectedStatement(t *testing.T) {
	logger, recorded := setupTestLogger(t)
	auditor := NewSecurityAuditor(logger)
	ctx := llm.WithRequestID(context.Background(), "req-42")

	auditor.LogRejectedStatement(ctx, "DROP TABLE claims", "only SELECT allowed")

	require.Equal(t, 1, recorded.Len())
	entry := recorded.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "Statement rejected", entry.Message)
	assert.Equal(t, "security_audit", entry.LoggerName)
	assert.Equal(t, "req-42", entry.ContextMap()["request_id"])

	event := decodeEvent(t, entry)
	assert.Equal(t, EventStatementRejected, event.EventType)
	assert.Equal(t, SeverityWarning, event.Severity)
	assert.Equal(t, "req-42", event.RequestID)
	assert.False(t, event.Timestamp.IsZero())

	details, ok := event.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "DROP TABLE claims", details["sql"])
	assert.Equal(t, "only SELECT allowed", details["reason"])
}

func TestLogRejectedStatement_RedactsSecrets(t *testing.T) {
	logger, recorded := setupTestLogger(t)
	auditor := NewSecurityAuditor(logger)

	auditor.LogRejectedStatement(context.Background(), "ALTER USER app WITH password=hunter2", "only SELECT allowed")

	require.Equal(t, 1, recorded.Len())
	assert.NotContains(t, recorded.All()[0].ContextMap()["event_json"], "hunter2")
}

func TestLogQueryExecution(t *testing.T) {
	logger, recorded := setupTestLogger(t)
	auditor := NewSecurityAuditor(logger)

	auditor.LogQueryExecution(context.Background(), "SELECT * FROM claims", 4, 25*time.Millisecond)

	require.Equal(t, 1, recorded.Len())
	entry := recorded.All()[0]
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	assert.Equal(t, int64(4), entry.ContextMap()["row_count"])

	event := decodeEvent(t, entry)
	assert.Equal(t, EventQueryExecution, event.EventType)
	details := event.Details.(map[string]any)
	assert.Equal(t, float64(4), details["row_count"])
	assert.Equal(t, float64(25), details["duration_ms"])
}

func TestNilAuditor(t *testing.T) {
	var auditor *SecurityAuditor

	assert.NotPanics(t, func() {
		auditor.LogRejectedStatement(context.Background(), "DELETE FROM claims", "only SELECT allowed")
		auditor.LogQueryExecution(context.Background(), "SELECT 1", 1, time.Millisecond)
	})
}
