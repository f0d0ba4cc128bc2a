package invitations

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/luna-live/backend/internal/models"
)

func pendingInvitation(expiresAt time.Time) models.Invitation {
	return models.Invitation{
		ID:        uuid.New(),
		EventID:   uuid.New(),
		Status:    models.InvitationPending,
		InvitedBy: uuid.New(),
		ExpiresAt: expiresAt,
	}
}

func TestDecideAcceptGrantsPendingUnexpired(t *testing.T) {
	now := time.Now()
	inv := pendingInvitation(now.Add(time.Hour))
	require.Equal(t, acceptGrant, decideAccept(&inv, uuid.New(), now))
}

// The same identity re-accepting its own invitation succeeds as a no-op.
func TestDecideAcceptIsIdempotentForWinner(t *testing.T) {
	now := time.Now()
	winner := uuid.New()

	inv := pendingInvitation(now.Add(time.Hour))
	inv.Status = models.InvitationAccepted
	inv.AcceptedBy = &winner

	require.Equal(t, acceptIdempotent, decideAccept(&inv, winner, now))
}

// Once one identity has accepted, every other identity is turned away. The two
// racers serialize on the row lock, so the loser always observes the accepted
// row and exactly one of them is granted.
func TestDecideAcceptIsExclusiveAcrossIdentities(t *testing.T) {
	now := time.Now()
	userA, userB := uuid.New(), uuid.New()

	inv := pendingInvitation(now.Add(time.Hour))
	require.Equal(t, acceptGrant, decideAccept(&inv, userA, now))

	// What userA's transaction commits.
	inv.Status = models.InvitationAccepted
	inv.AcceptedBy = &userA

	require.Equal(t, acceptConsumed, decideAccept(&inv, userB, now))
	require.Equal(t, acceptIdempotent, decideAccept(&inv, userA, now))
}

func TestDecideAcceptRejectsRevokedAndExpired(t *testing.T) {
	now := time.Now()
	for _, s := range []models.InvitationStatus{models.InvitationRevoked, models.InvitationExpired} {
		inv := pendingInvitation(now.Add(time.Hour))
		inv.Status = s
		require.Equal(t, acceptUnavailable, decideAccept(&inv, uuid.New(), now), string(s))
	}
}

// A row still marked pending but past its expiry lapses at acceptance time.
func TestDecideAcceptLapsesPastExpiry(t *testing.T) {
	now := time.Now()
	inv := pendingInvitation(now.Add(-time.Minute))
	require.Equal(t, acceptLapsed, decideAccept(&inv, uuid.New(), now))
}
