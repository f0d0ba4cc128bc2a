// Package gate decides, per request, whether an identity may proceed, must
// complete onboarding, or must be sent back to sign-in. Every tenant-scoped
// route passes through it.
package gate

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/luna-live/backend/internal/auth"
	"github.com/luna-live/backend/internal/profile"
)

// State is the per-request authorization state.
type State int

const (
	// NoSession: no credential presented.
	NoSession State = iota
	// Unauthenticated: a credential was presented but failed verification.
	Unauthenticated
	// AuthenticatedIncomplete: identity verified, no member record yet.
	AuthenticatedIncomplete
	// AuthenticatedComplete: identity verified and onboarded.
	AuthenticatedComplete
)

func (s State) String() string {
	switch s {
	case NoSession:
		return "no_session"
	case Unauthenticated:
		return "unauthenticated"
	case AuthenticatedIncomplete:
		return "authenticated_incomplete"
	case AuthenticatedComplete:
		return "authenticated_complete"
	}
	return "unknown"
}

// Verifier validates a raw session credential.
type Verifier interface {
	Verify(ctx context.Context, raw string) (*auth.Claims, error)
}

// ProfileResolver maps a verified identity to its tenant membership.
type ProfileResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (profile.Profile, error)
}

// Decision is the outcome of evaluating one request's credential.
type Decision struct {
	State   State
	Claims  *auth.Claims    // set for Authenticated* states
	Profile profile.Profile // set for AuthenticatedComplete
}

// Gate evaluates credentials against the verifier and profile resolver.
type Gate struct {
	verifier Verifier
	profiles ProfileResolver
}

// New creates a gate.
func New(verifier Verifier, profiles ProfileResolver) *Gate {
	return &Gate{verifier: verifier, profiles: profiles}
}

// Evaluate runs the fixed-order check sequence: missing credential, then
// verification, then profile resolution. The order is load-bearing: an invalid
// session wins over every later check (fail closed), and a missing profile
// forces onboarding before any tenant data is served. Steps are sequential
// because each depends on the previous one's result.
func (g *Gate) Evaluate(ctx context.Context, rawCredential string) (Decision, error) {
	if rawCredential == "" {
		return Decision{State: NoSession}, nil
	}

	claims, err := g.verifier.Verify(ctx, rawCredential)
	if err != nil {
		return Decision{State: Unauthenticated}, nil
	}

	prof, err := g.profiles.Resolve(ctx, claims.UserID)
	if errors.Is(err, profile.ErrProfileNotFound) {
		return Decision{State: AuthenticatedIncomplete, Claims: claims}, nil
	}
	if err != nil {
		return Decision{}, err
	}

	return Decision{State: AuthenticatedComplete, Claims: claims, Profile: prof}, nil
}
