package ports

import (
	"context"
	"time"
)

// Audit actions recorded against the audit trail.
const (
	AuditRegister = "register"
	AuditLogin    = "login"
	AuditUpdate   = "update"
	AuditDelete   = "delete"
)

// AuditEntry describes one account operation for the audit trail.
type AuditEntry struct {
	ProfileID string
	Username  string
	Action    string
	Timestamp time.Time
}

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// AuditSink accepts entries for asynchronous recording. Implementations
// must not block the caller beyond a bounded buffer.
type AuditSink interface {
	Enqueue(entry AuditEntry)
}
