package gate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/luna-live/backend/internal/auth"
	"github.com/luna-live/backend/internal/gate"
	"github.com/luna-live/backend/internal/profile"
)

type fakeVerifier struct {
	claims *auth.Claims
	err    error
}

func (f *fakeVerifier) Verify(_ context.Context, raw string) (*auth.Claims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

type fakeProfiles struct {
	profile profile.Profile
	err     error
}

func (f *fakeProfiles) Resolve(_ context.Context, _ uuid.UUID) (profile.Profile, error) {
	return f.profile, f.err
}

func TestEvaluateNoCredential(t *testing.T) {
	g := gate.New(&fakeVerifier{}, &fakeProfiles{})
	d, err := g.Evaluate(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, gate.NoSession, d.State)
	require.Nil(t, d.Claims)
}

func TestEvaluateInvalidCredential(t *testing.T) {
	g := gate.New(&fakeVerifier{err: auth.ErrInvalidSession}, &fakeProfiles{})
	d, err := g.Evaluate(context.Background(), "tampered")
	require.NoError(t, err)
	require.Equal(t, gate.Unauthenticated, d.State)
	require.Nil(t, d.Claims)
}

func TestEvaluateIncompleteProfile(t *testing.T) {
	claims := &auth.Claims{UserID: uuid.New(), Email: "alice@acme.io"}
	g := gate.New(&fakeVerifier{claims: claims}, &fakeProfiles{err: profile.ErrProfileNotFound})
	d, err := g.Evaluate(context.Background(), "valid")
	require.NoError(t, err)
	require.Equal(t, gate.AuthenticatedIncomplete, d.State)
	require.Equal(t, claims, d.Claims)
}

func TestEvaluateCompleteProfile(t *testing.T) {
	claims := &auth.Claims{UserID: uuid.New(), Email: "alice@acme.io"}
	prof := profile.Profile{TenantID: uuid.New(), Role: "owner", OnboardingComplete: true}
	g := gate.New(&fakeVerifier{claims: claims}, &fakeProfiles{profile: prof})
	d, err := g.Evaluate(context.Background(), "valid")
	require.NoError(t, err)
	require.Equal(t, gate.AuthenticatedComplete, d.State)
	require.Equal(t, prof, d.Profile)
}

// An invalid credential must lose before the profile is ever consulted, even
// when a resolver lookup would succeed.
func TestInvalidCredentialWinsOverProfile(t *testing.T) {
	prof := profile.Profile{TenantID: uuid.New(), Role: "owner", OnboardingComplete: true}
	g := gate.New(&fakeVerifier{err: auth.ErrInvalidSession}, &fakeProfiles{profile: prof})
	d, err := g.Evaluate(context.Background(), "expired")
	require.NoError(t, err)
	require.Equal(t, gate.Unauthenticated, d.State)
}

// Store failures during profile resolution surface as errors, never as a
// permissive state.
func TestResolverFailureFailsClosed(t *testing.T) {
	claims := &auth.Claims{UserID: uuid.New(), Email: "alice@acme.io"}
	g := gate.New(&fakeVerifier{claims: claims}, &fakeProfiles{err: errors.New("connection refused")})
	_, err := g.Evaluate(context.Background(), "valid")
	require.Error(t, err)
}
