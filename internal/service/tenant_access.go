package service

import "errors"

// ErrTenantAccessDenied is returned when a principal addresses a tenant
// other than their own
var ErrTenantAccessDenied = errors.New("access denied for tenant")

// AuthorizeTenantAccess checks that a principal may act within the requested
// tenant. Access requires an exact tenant match; an empty principal tenant
// never matches anything, so unscoped principals are always denied.
func AuthorizeTenantAccess(principalTenantID, requestedTenantID string) error {
	if requestedTenantID == "" || principalTenantID == "" {
		return ErrTenantAccessDenied
	}
	if principalTenantID != requestedTenantID {
		return ErrTenantAccessDenied
	}
	return nil
}
