// Package profile maps a verified identity to its tenant membership and role.
package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luna-live/backend/pkg/database"
)

// ErrProfileNotFound means the identity has no member record yet, i.e. has not
// completed onboarding.
var ErrProfileNotFound = errors.New("profile not found")

// Profile is an identity's tenant membership.
type Profile struct {
	TenantID           uuid.UUID `json:"tenant_id"`
	Role               string    `json:"role"`
	OnboardingComplete bool      `json:"onboarding_complete"`
}

// Resolver resolves identities to profiles from the member store.
type Resolver struct {
	pool *pgxpool.Pool
}

// NewResolver creates a profile resolver.
func NewResolver(pool *pgxpool.Pool) *Resolver {
	return &Resolver{pool: pool}
}

// Resolve returns the profile for an identity. A missing member record yields
// ErrProfileNotFound; member creation commits in the same transaction as its
// tenant, so once onboarding completes this read observes it.
func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID) (Profile, error) {
	const q = `SELECT tenant_id, role FROM members WHERE user_id = $1`
	var p Profile
	err := database.WithRetry(ctx, func(ctx context.Context) error {
		return r.pool.QueryRow(ctx, q, userID).Scan(&p.TenantID, &p.Role)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	p.OnboardingComplete = true
	return p, nil
}
