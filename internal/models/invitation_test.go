package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luna-live/backend/internal/models"
)

func TestInvitationRedeemable(t *testing.T) {
	now := time.Now()
	inv := models.Invitation{Status: models.InvitationPending, ExpiresAt: now.Add(time.Hour)}
	require.True(t, inv.Redeemable(now))

	// Past expiry, even while still marked pending.
	inv.ExpiresAt = now.Add(-time.Minute)
	require.False(t, inv.Redeemable(now))

	inv.ExpiresAt = now.Add(time.Hour)
	for _, s := range []models.InvitationStatus{
		models.InvitationAccepted, models.InvitationExpired, models.InvitationRevoked,
	} {
		inv.Status = s
		require.False(t, inv.Redeemable(now), string(s))
	}
}
