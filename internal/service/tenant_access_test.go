package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorizeTenantAccess(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		requested string
		wantErr   bool
	}{
		{"matching tenant", "tenant-1", "tenant-1", false},
		{"different tenant", "tenant-1", "tenant-2", true},
		{"empty principal tenant", "", "tenant-1", true},
		{"empty requested tenant", "tenant-1", "", true},
		{"both empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AuthorizeTenantAccess(tt.principal, tt.requested)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrTenantAccessDenied)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
