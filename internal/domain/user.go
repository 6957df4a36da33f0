package domain

import (
	"time"
)

// Role identifies what a principal is allowed to do inside their tenant
type Role string

const (
	RoleEmployee    Role = "EMPLOYEE"
	RoleApprover    Role = "APPROVER"
	RoleSecurity    Role = "SECURITY"
	RoleTenantAdmin Role = "TENANT_ADMIN"
	RoleSuperAdmin  Role = "SUPER_ADMIN"
)

// IsValid reports whether the role is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleEmployee, RoleApprover, RoleSecurity, RoleTenantAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// User represents an authenticated principal bound to a tenant.
// TenantID is empty only for the system-level super admin.
type User struct {
	ID        string    `json:"id"`
	UniqueID  string    `json:"unique_id"`
	TenantID  string    `json:"tenant_id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Contact   string    `json:"contact,omitempty"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CanCreatePass reports whether the user may request a visitor pass
func (u *User) CanCreatePass() bool {
	return u.Role == RoleEmployee || u.Role == RoleTenantAdmin
}

// CanDecidePass reports whether the user may approve or reject a pass
func (u *User) CanDecidePass() bool {
	return u.Role == RoleApprover || u.Role == RoleTenantAdmin
}

// CanOperateGate reports whether the user may check visitors in and out
func (u *User) CanOperateGate() bool {
	return u.Role == RoleSecurity || u.Role == RoleTenantAdmin
}
