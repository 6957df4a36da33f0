package domain

import (
	"time"
)

// Tenant represents an isolated office location in the multi-tenant system
type Tenant struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	LocationDetails string    `json:"location_details,omitempty"`
	CreatedBy       string    `json:"created_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
