package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription tiers.
const (
	TierFree = "free"
	TierPro  = "pro"
)

// Tenant is an isolated organizational unit owning events and members.
// ClaimedDomain, when set, is globally unique across tenants.
type Tenant struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	OwnerID       uuid.UUID `json:"owner_id"`
	Tier          string    `json:"tier"`
	ClaimedDomain *string   `json:"claimed_domain,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Member roles within a tenant.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Member binds a user to exactly one tenant with a role.
type Member struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
