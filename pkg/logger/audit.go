package logger

import (
	"context"
	"log/slog"
	"time"
)

// Audit event types emitted by the gateway.
const (
	EventAdminLoginSuccess = "admin_login_success"
	EventAdminLoginFailed  = "admin_login_failed"
	EventNonAdminLogin     = "non_admin_login"
	EventClientBlocked     = "client_blocked"
)

// AuditEvent represents a security audit event.
type AuditEvent struct {
	EventType     string
	UserID        string
	Username      string
	IPAddress     string
	Success       bool
	FailureReason string
}

// AuditLogger emits structured security audit records. These are internal
// telemetry only; nothing here feeds back into client-visible responses.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

// LogAuthAttempt logs an authentication attempt outcome.
func (al *AuditLogger) LogAuthAttempt(event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "auth"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
	}
	if event.Username != "" {
		attrs = append(attrs, slog.String("username", MaskUsername(event.Username)))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(context.Background(), level, "audit", attrs...)
}

// LogClientBlocked logs a lockout escalation for a client key.
func (al *AuditLogger) LogClientBlocked(ipAddress string) {
	al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit",
		slog.String("audit_type", "ratelimit"),
		slog.String("event_type", EventClientBlocked),
		slog.String("ip_address", ipAddress),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	)
}
