package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PassStatus is the closed set of visitor pass lifecycle states
type PassStatus string

const (
	PassStatusPending    PassStatus = "PENDING"
	PassStatusApproved   PassStatus = "APPROVED"
	PassStatusRejected   PassStatus = "REJECTED"
	PassStatusCheckedIn  PassStatus = "CHECKED_IN"
	PassStatusCheckedOut PassStatus = "CHECKED_OUT"
	PassStatusExpired    PassStatus = "EXPIRED"
)

// passTransitions is the complete transition table of the lifecycle.
// A status missing from the map is terminal.
var passTransitions = map[PassStatus][]PassStatus{
	PassStatusPending:   {PassStatusApproved, PassStatusRejected},
	PassStatusApproved:  {PassStatusCheckedIn, PassStatusExpired},
	PassStatusCheckedIn: {PassStatusCheckedOut},
}

// IsValid reports whether the status is a known lifecycle state
func (s PassStatus) IsValid() bool {
	switch s {
	case PassStatusPending, PassStatusApproved, PassStatusRejected,
		PassStatusCheckedIn, PassStatusCheckedOut, PassStatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed
func (s PassStatus) IsTerminal() bool {
	return len(passTransitions[s]) == 0
}

// CanTransitionTo reports whether the lifecycle permits moving to target
func (s PassStatus) CanTransitionTo(target PassStatus) bool {
	for _, next := range passTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

var (
	// ErrInvalidTransition is returned when a lifecycle operation is
	// attempted from a status that does not permit it
	ErrInvalidTransition = errors.New("invalid pass status transition")
	// ErrInvalidPassData is returned when pass fields fail domain validation
	ErrInvalidPassData = errors.New("invalid pass data")
)

// PassCodeLength is the length of the human-presentable pass code
const PassCodeLength = 8

// VisitorPass is the central entity of the pass workflow. A pass belongs to
// exactly one tenant for its whole lifetime and moves through the lifecycle
// via the transition methods below; Version backs the store's optimistic
// concurrency check.
type VisitorPass struct {
	ID              string     `json:"id"`
	TenantID        string     `json:"tenant_id"`
	VisitorName     string     `json:"visitor_name"`
	VisitorEmail    string     `json:"visitor_email"`
	VisitorPhone    string     `json:"visitor_phone"`
	Purpose         string     `json:"purpose"`
	VisitDateTime   time.Time  `json:"visit_date_time"`
	PassCode        string     `json:"pass_code"`
	Status          PassStatus `json:"status"`
	CreatedByID     string     `json:"created_by_id"`
	ApprovedByID    *string    `json:"approved_by_id,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	Version         int64      `json:"version"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// GeneratePassCode returns a new 8-character uppercase pass code
func GeneratePassCode() string {
	return strings.ToUpper(uuid.New().String()[:PassCodeLength])
}

// NewVisitorPass creates a PENDING pass for the given tenant and creator
func NewVisitorPass(tenantID, visitorName, visitorEmail, visitorPhone, purpose string, visitDateTime time.Time, createdByID string) (*VisitorPass, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", ErrInvalidPassData)
	}
	if visitorName == "" || visitorEmail == "" || visitorPhone == "" || purpose == "" {
		return nil, fmt.Errorf("%w: visitor name, email, phone and purpose are required", ErrInvalidPassData)
	}
	if createdByID == "" {
		return nil, fmt.Errorf("%w: creator id is required", ErrInvalidPassData)
	}
	if !visitDateTime.After(time.Now()) {
		return nil, fmt.Errorf("%w: visit date-time must be in the future", ErrInvalidPassData)
	}

	now := time.Now().UTC()
	return &VisitorPass{
		ID:            uuid.New().String(),
		TenantID:      tenantID,
		VisitorName:   visitorName,
		VisitorEmail:  visitorEmail,
		VisitorPhone:  visitorPhone,
		Purpose:       purpose,
		VisitDateTime: visitDateTime,
		PassCode:      GeneratePassCode(),
		Status:        PassStatusPending,
		CreatedByID:   createdByID,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Approve moves a PENDING pass to APPROVED, stamping the approver exactly once
func (p *VisitorPass) Approve(approverID string) error {
	if p.Status != PassStatusPending {
		return fmt.Errorf("%w: cannot approve pass in status %s", ErrInvalidTransition, p.Status)
	}
	p.Status = PassStatusApproved
	p.ApprovedByID = &approverID
	p.touch()
	return nil
}

// Reject moves a PENDING pass to REJECTED with a mandatory reason
func (p *VisitorPass) Reject(approverID, reason string) error {
	if p.Status != PassStatusPending {
		return fmt.Errorf("%w: cannot reject pass in status %s", ErrInvalidTransition, p.Status)
	}
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("%w: rejection reason is required", ErrInvalidPassData)
	}
	p.Status = PassStatusRejected
	p.ApprovedByID = &approverID
	p.RejectionReason = reason
	p.touch()
	return nil
}

// CheckIn moves an APPROVED pass to CHECKED_IN
func (p *VisitorPass) CheckIn() error {
	if p.Status != PassStatusApproved {
		return fmt.Errorf("%w: cannot check in pass in status %s", ErrInvalidTransition, p.Status)
	}
	p.Status = PassStatusCheckedIn
	p.touch()
	return nil
}

// CheckOut moves a CHECKED_IN pass to CHECKED_OUT
func (p *VisitorPass) CheckOut() error {
	if p.Status != PassStatusCheckedIn {
		return fmt.Errorf("%w: cannot check out pass in status %s", ErrInvalidTransition, p.Status)
	}
	p.Status = PassStatusCheckedOut
	p.touch()
	return nil
}

// Expire moves an overdue APPROVED pass to EXPIRED. The visit date-time must
// already be in the past at the given instant.
func (p *VisitorPass) Expire(now time.Time) error {
	if p.Status != PassStatusApproved {
		return fmt.Errorf("%w: cannot expire pass in status %s", ErrInvalidTransition, p.Status)
	}
	if !p.VisitDateTime.Before(now) {
		return fmt.Errorf("%w: pass is not overdue", ErrInvalidTransition)
	}
	p.Status = PassStatusExpired
	p.touch()
	return nil
}

func (p *VisitorPass) touch() {
	p.UpdatedAt = time.Now().UTC()
}
