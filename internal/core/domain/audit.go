package domain

import "time"

// AuditAction enumerates the console actions recorded in the audit trail.
type AuditAction string

const (
	AuditLogin       AuditAction = "login"
	AuditLoginFailed AuditAction = "login_failed"
	AuditLogout      AuditAction = "logout"
)

// AuditEntry is one record in the console's operational audit trail.
// Audit writes are best-effort; losing one never fails the operation
// that produced it.
type AuditEntry struct {
	ID          string      `json:"id"`
	Kind        Kind        `json:"kind"`
	PrincipalID string      `json:"principal_id,omitempty"`
	Action      AuditAction `json:"action"`
	Detail      string      `json:"detail,omitempty"`
	At          time.Time   `json:"at"`
}
