package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/AhilyaKokare/visitor-pass-service/internal/domain"
)

// MemoryUserRepository is an in-memory implementation of UserRepository for
// testing
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewMemoryUserRepository creates a new in-memory user repository
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*domain.User)}
}

// Add stores a user, replacing any existing user with the same ID
func (r *MemoryUserRepository) Add(user *domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
}

// GetByID retrieves a user by ID
func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

// GetByEmail retrieves a user by email
func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

// FindFirstActiveByTenantAndRole retrieves the first active user of the given
// role within a tenant, ordered by creation time
func (r *MemoryUserRepository) FindFirstActiveByTenantAndRole(ctx context.Context, tenantID string, role domain.Role) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*domain.User, 0)
	for _, user := range r.users {
		if user.TenantID == tenantID && user.Role == role && user.IsActive {
			matched = append(matched, user)
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	copied := *matched[0]
	return &copied, nil
}

// MemoryTenantRepository is an in-memory implementation of TenantRepository
// for testing
type MemoryTenantRepository struct {
	mu      sync.RWMutex
	tenants map[string]*domain.Tenant
}

// NewMemoryTenantRepository creates a new in-memory tenant repository
func NewMemoryTenantRepository() *MemoryTenantRepository {
	return &MemoryTenantRepository{tenants: make(map[string]*domain.Tenant)}
}

// Add stores a tenant, replacing any existing tenant with the same ID
func (r *MemoryTenantRepository) Add(tenant *domain.Tenant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *tenant
	r.tenants[tenant.ID] = &copied
}

// GetByID retrieves a tenant by ID
func (r *MemoryTenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenant, exists := r.tenants[id]
	if !exists {
		return nil, nil
	}
	copied := *tenant
	return &copied, nil
}
