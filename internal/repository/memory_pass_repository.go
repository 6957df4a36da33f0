package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AhilyaKokare/visitor-pass-service/internal/domain"
)

// MemoryPassRepository is an in-memory implementation of PassRepository for
// testing. It enforces the same per-tenant pass code uniqueness and version
// guard as the Postgres implementation.
type MemoryPassRepository struct {
	mu     sync.RWMutex
	passes map[string]*domain.VisitorPass
	byCode map[string]string // tenantID+"/"+passCode -> passID
	audits []*domain.AuditLog
}

// NewMemoryPassRepository creates a new in-memory pass repository
func NewMemoryPassRepository() *MemoryPassRepository {
	return &MemoryPassRepository{
		passes: make(map[string]*domain.VisitorPass),
		byCode: make(map[string]string),
	}
}

func codeKey(tenantID, passCode string) string {
	return tenantID + "/" + passCode
}

// Create persists a new pass together with its creation audit record
func (r *MemoryPassRepository) Create(ctx context.Context, pass *domain.VisitorPass, audit *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byCode[codeKey(pass.TenantID, pass.PassCode)]; exists {
		return ErrDuplicatePassCode
	}

	copied := copyPass(pass)
	r.passes[pass.ID] = copied
	r.byCode[codeKey(pass.TenantID, pass.PassCode)] = pass.ID
	if audit != nil {
		r.audits = append(r.audits, copyAudit(audit))
	}
	return nil
}

// GetByID retrieves a pass by ID
func (r *MemoryPassRepository) GetByID(ctx context.Context, id string) (*domain.VisitorPass, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pass, exists := r.passes[id]
	if !exists {
		return nil, nil
	}
	return copyPass(pass), nil
}

// GetByTenantAndCode retrieves a pass by tenant and pass code
func (r *MemoryPassRepository) GetByTenantAndCode(ctx context.Context, tenantID, passCode string) (*domain.VisitorPass, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byCode[codeKey(tenantID, passCode)]
	if !exists {
		return nil, nil
	}
	return copyPass(r.passes[id]), nil
}

// ListByTenant retrieves a tenant's passes newest-first with pagination
func (r *MemoryPassRepository) ListByTenant(ctx context.Context, tenantID string, status domain.PassStatus, page, limit int) ([]*domain.VisitorPass, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.filter(func(p *domain.VisitorPass) bool {
		return p.TenantID == tenantID && (status == "" || p.Status == status)
	})
	sortNewestFirst(matched)
	return paginate(matched, page, limit), len(matched), nil
}

// ListByCreator retrieves passes created by one user, newest-first
func (r *MemoryPassRepository) ListByCreator(ctx context.Context, tenantID, creatorID string, page, limit int) ([]*domain.VisitorPass, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.filter(func(p *domain.VisitorPass) bool {
		return p.TenantID == tenantID && p.CreatedByID == creatorID
	})
	sortNewestFirst(matched)
	return paginate(matched, page, limit), len(matched), nil
}

// ListByTenantAndVisitDate retrieves a tenant's passes within [from, to)
func (r *MemoryPassRepository) ListByTenantAndVisitDate(ctx context.Context, tenantID string, from, to time.Time) ([]*domain.VisitorPass, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.filter(func(p *domain.VisitorPass) bool {
		return p.TenantID == tenantID &&
			!p.VisitDateTime.Before(from) && p.VisitDateTime.Before(to)
	})
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].VisitDateTime.Before(matched[j].VisitDateTime)
	})
	return matched, nil
}

// FindOverdueApproved retrieves APPROVED passes whose visit time has passed
func (r *MemoryPassRepository) FindOverdueApproved(ctx context.Context, before time.Time) ([]*domain.VisitorPass, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.filter(func(p *domain.VisitorPass) bool {
		return p.Status == domain.PassStatusApproved && p.VisitDateTime.Before(before)
	})
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].VisitDateTime.Before(matched[j].VisitDateTime)
	})
	return matched, nil
}

// Update persists a modified pass and its audit record atomically
func (r *MemoryPassRepository) Update(ctx context.Context, pass *domain.VisitorPass, audit *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.passes[pass.ID]
	if !exists || stored.Version != pass.Version {
		return ErrVersionConflict
	}

	pass.Version++
	r.passes[pass.ID] = copyPass(pass)
	if audit != nil {
		r.audits = append(r.audits, copyAudit(audit))
	}
	return nil
}

// AuditLogs returns a snapshot of recorded audit entries, oldest-first
func (r *MemoryPassRepository) AuditLogs() []*domain.AuditLog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.AuditLog, 0, len(r.audits))
	for _, a := range r.audits {
		out = append(out, copyAudit(a))
	}
	return out
}

func (r *MemoryPassRepository) filter(keep func(*domain.VisitorPass) bool) []*domain.VisitorPass {
	matched := make([]*domain.VisitorPass, 0)
	for _, p := range r.passes {
		if keep(p) {
			matched = append(matched, copyPass(p))
		}
	}
	return matched
}

func sortNewestFirst(passes []*domain.VisitorPass) {
	sort.Slice(passes, func(i, j int) bool {
		if !passes[i].CreatedAt.Equal(passes[j].CreatedAt) {
			return passes[i].CreatedAt.After(passes[j].CreatedAt)
		}
		return passes[i].ID > passes[j].ID
	})
}

func paginate(passes []*domain.VisitorPass, page, limit int) []*domain.VisitorPass {
	start := (page - 1) * limit
	if start >= len(passes) {
		return []*domain.VisitorPass{}
	}
	end := start + limit
	if end > len(passes) {
		end = len(passes)
	}
	return passes[start:end]
}

func copyPass(p *domain.VisitorPass) *domain.VisitorPass {
	copied := *p
	if p.ApprovedByID != nil {
		id := *p.ApprovedByID
		copied.ApprovedByID = &id
	}
	return &copied
}

func copyAudit(a *domain.AuditLog) *domain.AuditLog {
	copied := *a
	if a.ActorID != nil {
		id := *a.ActorID
		copied.ActorID = &id
	}
	return &copied
}
