package dto

import (
	"strings"
	"time"

	"github.com/AhilyaKokare/visitor-pass-service/internal/domain"
)

// CreatePassRequest represents a request to create a visitor pass
type CreatePassRequest struct {
	VisitorName   string    `json:"visitor_name" binding:"required,min=2,max=255"`
	VisitorEmail  string    `json:"visitor_email" binding:"required,email"`
	VisitorPhone  string    `json:"visitor_phone" binding:"required,max=32"`
	Purpose       string    `json:"purpose" binding:"required,min=2,max=500"`
	VisitDateTime time.Time `json:"visit_date_time" binding:"required"`
}

// Validate checks constraints the binding tags cannot express
func (r *CreatePassRequest) Validate() (bool, string) {
	if !r.VisitDateTime.After(time.Now()) {
		return false, "Visit date-time must be in the future"
	}
	return true, ""
}

// RejectPassRequest represents a request to reject a pending pass
type RejectPassRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// Validate ensures the rejection reason is not blank
func (r *RejectPassRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.Reason) == "" {
		return false, "Rejection reason must not be blank"
	}
	return true, ""
}

// PassResponse represents visitor pass data in a response
type PassResponse struct {
	ID              string            `json:"id"`
	TenantID        string            `json:"tenant_id"`
	VisitorName     string            `json:"visitor_name"`
	VisitorEmail    string            `json:"visitor_email"`
	VisitorPhone    string            `json:"visitor_phone"`
	Purpose         string            `json:"purpose"`
	VisitDateTime   time.Time         `json:"visit_date_time"`
	PassCode        string            `json:"pass_code"`
	Status          domain.PassStatus `json:"status"`
	CreatedByID     string            `json:"created_by_id"`
	ApprovedByID    *string           `json:"approved_by_id,omitempty"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// FromPass converts a domain VisitorPass to a PassResponse
func FromPass(p *domain.VisitorPass) *PassResponse {
	return &PassResponse{
		ID:              p.ID,
		TenantID:        p.TenantID,
		VisitorName:     p.VisitorName,
		VisitorEmail:    p.VisitorEmail,
		VisitorPhone:    p.VisitorPhone,
		Purpose:         p.Purpose,
		VisitDateTime:   p.VisitDateTime,
		PassCode:        p.PassCode,
		Status:          p.Status,
		CreatedByID:     p.CreatedByID,
		ApprovedByID:    p.ApprovedByID,
		RejectionReason: p.RejectionReason,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// FromPasses converts a slice of domain passes to responses
func FromPasses(passes []*domain.VisitorPass) []*PassResponse {
	out := make([]*PassResponse, 0, len(passes))
	for _, p := range passes {
		out = append(out, FromPass(p))
	}
	return out
}

// ListPassesQuery represents query parameters for listing passes
type ListPassesQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status string `form:"status" binding:"omitempty"`
}

// SetDefaults sets default values for query parameters
func (q *ListPassesQuery) SetDefaults() {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = 20
	}
}

// Validate checks that a status filter, when present, is a known status
func (q *ListPassesQuery) Validate() (bool, string) {
	if q.Status != "" && !domain.PassStatus(q.Status).IsValid() {
		return false, "Unknown pass status filter"
	}
	return true, ""
}

// ListPassesResponse represents a paginated list of passes
type ListPassesResponse struct {
	Passes     []*PassResponse `json:"passes"`
	TotalCount int             `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// AuditLogResponse represents one audit trail entry in a response
type AuditLogResponse struct {
	ID        string    `json:"id"`
	PassID    string    `json:"pass_id"`
	Action    string    `json:"action"`
	ActorID   *string   `json:"actor_id,omitempty"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FromAuditLog converts a domain AuditLog to a response
func FromAuditLog(a *domain.AuditLog) *AuditLogResponse {
	return &AuditLogResponse{
		ID:        a.ID,
		PassID:    a.PassID,
		Action:    a.Action,
		ActorID:   a.ActorID,
		Details:   a.Details,
		CreatedAt: a.CreatedAt,
	}
}

// FromAuditLogs converts a slice of domain audit logs to responses
func FromAuditLogs(logs []*domain.AuditLog) []*AuditLogResponse {
	out := make([]*AuditLogResponse, 0, len(logs))
	for _, a := range logs {
		out = append(out, FromAuditLog(a))
	}
	return out
}

// TodayDashboardResponse summarizes gate activity for the current day
type TodayDashboardResponse struct {
	Date           string          `json:"date"`
	ExpectedCount  int             `json:"expected_count"`
	CheckedInCount int             `json:"checked_in_count"`
	Passes         []*PassResponse `json:"passes"`
}
