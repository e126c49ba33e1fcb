// Package audit provides security audit logging for SIEM consumption.
// It logs statements submitted for execution in structured JSON format so
// rejected and executed SQL can be traced per request.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/llm"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/logging"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventStatementRejected is logged when a statement fails the SELECT allow-list.
	EventStatementRejected SecurityEventType = "statement_rejected"
	// EventQueryExecution is logged for successful query execution (can be high volume).
	EventQueryExecution SecurityEventType = "query_execution"
)

// Severity levels.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
)

// SecurityEvent represents an auditable security event.
type SecurityEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType SecurityEventType `json:"event_type"`
	RequestID string            `json:"request_id,omitempty"`
	Details   any               `json:"details"`
	Severity  string            `json:"severity"`
}

// StatementDetails describes the statement an event refers to. SQL is
// truncated and stripped of secrets before logging.
type StatementDetails struct {
	SQL        string `json:"sql"`
	Reason     string `json:"reason,omitempty"`
	RowCount   int    `json:"row_count,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
}

// SecurityAuditor logs security events. A nil auditor discards events.
type SecurityAuditor struct {
	logger *zap.Logger
}

// NewSecurityAuditor creates a new security auditor with a dedicated logger namespace.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{logger: logger.Named("security_audit")}
}

// LogRejectedStatement records a statement that was refused before execution.
// Logged at WARN level; most rejections are model or user mistakes, not attacks.
func (a *SecurityAuditor) LogRejectedStatement(ctx context.Context, sqlQuery, reason string) {
	if a == nil {
		return
	}
	event := a.event(ctx, EventStatementRejected, SeverityWarning, StatementDetails{
		SQL:    logging.SanitizeQuery(sqlQuery),
		Reason: reason,
	})

	a.logger.Warn("Statement rejected",
		zap.String("event_json", event),
		zap.String("request_id", llm.RequestIDFrom(ctx)),
		zap.String("reason", reason),
		zap.String("severity", SeverityWarning),
	)
}

// LogQueryExecution records a successful execution for the audit trail.
func (a *SecurityAuditor) LogQueryExecution(ctx context.Context, sqlQuery string, rowCount int, elapsed time.Duration) {
	if a == nil {
		return
	}
	event := a.event(ctx, EventQueryExecution, SeverityInfo, StatementDetails{
		SQL:        logging.SanitizeQuery(sqlQuery),
		RowCount:   rowCount,
		DurationMS: elapsed.Milliseconds(),
	})

	a.logger.Info("Query executed",
		zap.String("event_json", event),
		zap.String("request_id", llm.RequestIDFrom(ctx)),
		zap.Int("row_count", rowCount),
		zap.String("severity", SeverityInfo),
	)
}

func (a *SecurityAuditor) event(ctx context.Context, eventType SecurityEventType, severity string, details any) string {
	// Marshaling known types cannot fail.
	b, _ := json.Marshal(SecurityEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		RequestID: llm.RequestIDFrom(ctx),
		Details:   details,
		Severity:  severity,
	})
	return string(b)
}
