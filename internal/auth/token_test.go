package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/luna-live/backend/internal/auth"
)

type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: make(map[string]time.Duration)}
}

func (f *fakeRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[jti] = ttl
	return nil
}

func (f *fakeRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revoked[jti]
	return ok, nil
}

func TestTokenRoundTrip(t *testing.T) {
	svc := auth.NewTokenService("test-secret", 1, nil)
	userID := uuid.New()

	raw, err := svc.Issue(userID, "alice@acme.io")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := svc.Verify(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.Equal(t, "alice@acme.io", claims.Email)
	require.NotEmpty(t, claims.ID)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := auth.NewTokenService("secret-a", 1, nil)
	verifier := auth.NewTokenService("secret-b", 1, nil)

	raw, err := issuer.Issue(uuid.New(), "alice@acme.io")
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), raw)
	require.ErrorIs(t, err, auth.ErrInvalidSession)
}

func TestVerifyRejectsExpired(t *testing.T) {
	svc := auth.NewTokenService("test-secret", -1, nil)

	raw, err := svc.Issue(uuid.New(), "alice@acme.io")
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), raw)
	require.ErrorIs(t, err, auth.ErrInvalidSession)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := auth.NewTokenService("test-secret", 1, nil)
	_, err := svc.Verify(context.Background(), "not-a-token")
	require.ErrorIs(t, err, auth.ErrInvalidSession)
}

func TestRevokedSessionIsInvalid(t *testing.T) {
	revoker := newFakeRevoker()
	svc := auth.NewTokenService("test-secret", 1, revoker)

	raw, err := svc.Issue(uuid.New(), "alice@acme.io")
	require.NoError(t, err)

	claims, err := svc.Verify(context.Background(), raw)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeClaims(context.Background(), claims))

	_, err = svc.Verify(context.Background(), raw)
	require.ErrorIs(t, err, auth.ErrInvalidSession)
}

func TestRevokeUsesRemainingLifetime(t *testing.T) {
	revoker := newFakeRevoker()
	svc := auth.NewTokenService("test-secret", 24, revoker)

	raw, err := svc.Issue(uuid.New(), "alice@acme.io")
	require.NoError(t, err)
	claims, err := svc.Verify(context.Background(), raw)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeClaims(context.Background(), claims))

	revoker.mu.Lock()
	ttl := revoker.revoked[claims.ID]
	revoker.mu.Unlock()
	require.Greater(t, ttl, time.Duration(0))
	require.LessOrEqual(t, ttl, 24*time.Hour)
}
