package repository

import (
	"context"
	"errors"
	"time"

	"github.com/AhilyaKokare/visitor-pass-service/internal/domain"
)

var (
	// ErrVersionConflict is returned when a versioned update matched no row,
	// meaning another writer changed the pass first
	ErrVersionConflict = errors.New("pass was modified concurrently")
	// ErrDuplicatePassCode is returned when a generated pass code already
	// exists within the tenant
	ErrDuplicatePassCode = errors.New("pass code already exists for tenant")
)

// PassRepository defines the interface for visitor pass data access.
// Mutations that change lifecycle state take the matching audit record and
// persist both in one atomic unit.
type PassRepository interface {
	// Create persists a new pass together with its creation audit record
	Create(ctx context.Context, pass *domain.VisitorPass, audit *domain.AuditLog) error
	// GetByID retrieves a pass by ID
	GetByID(ctx context.Context, id string) (*domain.VisitorPass, error)
	// GetByTenantAndCode retrieves a pass by tenant and pass code
	GetByTenantAndCode(ctx context.Context, tenantID, passCode string) (*domain.VisitorPass, error)
	// ListByTenant retrieves a tenant's passes newest-first with pagination
	// and an optional status filter
	ListByTenant(ctx context.Context, tenantID string, status domain.PassStatus, page, limit int) ([]*domain.VisitorPass, int, error)
	// ListByCreator retrieves passes created by one user, newest-first
	ListByCreator(ctx context.Context, tenantID, creatorID string, page, limit int) ([]*domain.VisitorPass, int, error)
	// ListByTenantAndVisitDate retrieves a tenant's passes whose visit
	// date-time falls within [from, to), newest-first
	ListByTenantAndVisitDate(ctx context.Context, tenantID string, from, to time.Time) ([]*domain.VisitorPass, error)
	// FindOverdueApproved retrieves APPROVED passes across all tenants whose
	// visit date-time is before the given instant
	FindOverdueApproved(ctx context.Context, before time.Time) ([]*domain.VisitorPass, error)
	// Update persists a modified pass and its audit record atomically.
	// The write is guarded by the pass's previous version; a lost race
	// returns ErrVersionConflict.
	Update(ctx context.Context, pass *domain.VisitorPass, audit *domain.AuditLog) error
}
