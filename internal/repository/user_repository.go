package repository

import (
	"context"

	"github.com/AhilyaKokare/visitor-pass-service/internal/domain"
)

// UserRepository defines the interface for user directory access
type UserRepository interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindFirstActiveByTenantAndRole retrieves the first active user of the
	// given role within a tenant, or nil when none exists
	FindFirstActiveByTenantAndRole(ctx context.Context, tenantID string, role domain.Role) (*domain.User, error)
}

// TenantRepository defines the interface for tenant data access
type TenantRepository interface {
	// GetByID retrieves a tenant by ID
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
}
