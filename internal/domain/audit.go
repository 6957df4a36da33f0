package domain

import "time"

// Audit action codes recorded against pass lifecycle transitions
const (
	AuditPassCreated       = "PASS_CREATED"
	AuditPassApproved      = "PASS_APPROVED"
	AuditPassRejected      = "PASS_REJECTED"
	AuditPassCheckedIn     = "PASS_CHECKED_IN"
	AuditPassCheckedOut    = "PASS_CHECKED_OUT"
	AuditPassExpiredSystem = "PASS_EXPIRED_SYSTEM"
)

// AuditLog is one append-only record of a pass transition. ActorID is nil
// for system-initiated actions such as the expiry sweep and for gate
// check-ins performed without an attributable operator.
type AuditLog struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	PassID    string    `json:"pass_id"`
	Action    string    `json:"action"`
	ActorID   *string   `json:"actor_id,omitempty"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
