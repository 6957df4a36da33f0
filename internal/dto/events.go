package dto

import "time"

// Topic names for pass and user lifecycle events. Downstream notification
// consumers subscribe by these names, so they are part of the wire contract.
const (
	TopicPassApproved  = "pass.event.approved"
	TopicPassRejected  = "pass.event.rejected"
	TopicPassExpired   = "pass.event.expired"
	TopicUserCreated   = "user.event.created"
	TopicPasswordReset = "password.reset"
)

// PassApprovedEvent is published when a pending pass is approved.
// It carries enough context for the notification service to email the
// visitor and the hosting employee without further lookups.
type PassApprovedEvent struct {
	PassID        string    `json:"passId"`
	TenantID      string    `json:"tenantId"`
	VisitorName   string    `json:"visitorName"`
	VisitorEmail  string    `json:"visitorEmail"`
	EmployeeEmail string    `json:"employeeEmail"`
	PassCode      string    `json:"passCode"`
	VisitDateTime time.Time `json:"visitDateTime"`
}

// Key returns the Kafka message key for partitioning
func (e *PassApprovedEvent) Key() string {
	return e.PassID
}

// PassRejectedEvent is published when a pending pass is rejected
type PassRejectedEvent struct {
	PassID          string `json:"passId"`
	VisitorName     string `json:"visitorName"`
	EmployeeEmail   string `json:"employeeEmail"`
	RejectionReason string `json:"rejectionReason"`
}

// Key returns the Kafka message key for partitioning
func (e *PassRejectedEvent) Key() string {
	return e.PassID
}

// PassExpiredEvent is published by the expiry sweep for each overdue pass.
// TenantAdminEmail is nil when the tenant has no active admin to notify.
type PassExpiredEvent struct {
	PassID           string    `json:"passId"`
	TenantID         string    `json:"tenantId"`
	VisitorName      string    `json:"visitorName"`
	VisitDateTime    time.Time `json:"visitDateTime"`
	EmployeeEmail    string    `json:"employeeEmail"`
	TenantAdminEmail *string   `json:"tenantAdminEmail"`
}

// Key returns the Kafka message key for partitioning
func (e *PassExpiredEvent) Key() string {
	return e.PassID
}

// UserCreatedEvent is published when a new user account is provisioned
type UserCreatedEvent struct {
	UserID   string `json:"userId"`
	TenantID string `json:"tenantId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Key returns the Kafka message key for partitioning
func (e *UserCreatedEvent) Key() string {
	return e.UserID
}

// PasswordResetEvent is published when a password reset token is issued
type PasswordResetEvent struct {
	Email      string `json:"email"`
	ResetToken string `json:"resetToken"`
}

// Key returns the Kafka message key for partitioning
func (e *PasswordResetEvent) Key() string {
	return e.Email
}
