package tenants

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

// Two first-time users from the same domain race CreateWithOwner; the loser's
// insert trips the partial unique index and must surface as the claim sentinel.
func TestMapUniqueViolationDomainClaim(t *testing.T) {
	err := mapUniqueViolation(&pgconn.PgError{
		Code:           uniqueViolation,
		ConstraintName: "tenants_claimed_domain_key",
	})
	require.ErrorIs(t, err, ErrDomainAlreadyClaimed)
}

func TestMapUniqueViolationMemberRecord(t *testing.T) {
	err := mapUniqueViolation(&pgconn.PgError{
		Code:           uniqueViolation,
		ConstraintName: "members_user_id_key",
	})
	require.ErrorIs(t, err, ErrAlreadyOnboarded)
}

func TestMapUniqueViolationPassesThroughOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	require.ErrorIs(t, mapUniqueViolation(boom), boom)

	// Unique violations on unrelated constraints are not remapped.
	other := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_email_key"}
	require.Equal(t, error(other), mapUniqueViolation(other))

	// Non-unique-violation Postgres errors pass through untouched.
	deadlock := &pgconn.PgError{Code: "40P01"}
	require.Equal(t, error(deadlock), mapUniqueViolation(deadlock))
}
