package entity

import "time"

// Audit event types published to the audit queue.
const (
	AuditRegistered  = "auth.registered"
	AuditLogin       = "auth.login"
	AuditLoginFailed = "auth.login_failed"
	AuditDenied      = "access.denied"
	AuditMessageSent = "message.sent"
	AuditMessageRead = "message.read"
)

type AuditEvent struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Username   string            `json:"username,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}
