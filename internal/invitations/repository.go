package invitations

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luna-live/backend/internal/models"
)

// DefaultTTL is how long an invitation stays redeemable after issue.
const DefaultTTL = 7 * 24 * time.Hour

var (
	// ErrNotFound covers unknown, expired, and revoked invitations.
	ErrNotFound = errors.New("invitation not found")
	// ErrAlreadyConsumed means a different identity already accepted the invitation.
	ErrAlreadyConsumed = errors.New("invitation already used")
)

// Repository handles invitation persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an invitations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// NewToken returns a random URL-safe invitation token.
func NewToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Create inserts a pending invitation with a fresh token and TTL.
func (r *Repository) Create(ctx context.Context, inv *models.Invitation) error {
	token, err := NewToken()
	if err != nil {
		return err
	}
	const q = `INSERT INTO invitations (id, event_id, token, status, email, invited_by, expires_at)
		VALUES (gen_random_uuid(), $1, $2, 'pending', $3, $4, $5)
		RETURNING id, created_at`
	inv.Token = token
	inv.Status = models.InvitationPending
	if inv.ExpiresAt.IsZero() {
		inv.ExpiresAt = time.Now().Add(DefaultTTL)
	}
	return r.pool.QueryRow(ctx, q, inv.EventID, token, inv.Email, inv.InvitedBy, inv.ExpiresAt).
		Scan(&inv.ID, &inv.CreatedAt)
}

// GetByToken returns an invitation by its token, or nil when none exists.
func (r *Repository) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	const q = `SELECT id, event_id, token, status, email, invited_by, accepted_by, expires_at, accepted_at, created_at
		FROM invitations WHERE token = $1`
	var inv models.Invitation
	err := r.pool.QueryRow(ctx, q, token).Scan(&inv.ID, &inv.EventID, &inv.Token, &inv.Status,
		&inv.Email, &inv.InvitedBy, &inv.AcceptedBy, &inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// acceptDecision classifies what Accept does with a locked invitation row.
type acceptDecision int

const (
	// acceptGrant: pending and unexpired; mark accepted and grant admin.
	acceptGrant acceptDecision = iota
	// acceptIdempotent: already accepted by this same identity; succeed as a no-op.
	acceptIdempotent
	// acceptConsumed: accepted by a different identity.
	acceptConsumed
	// acceptUnavailable: revoked or already marked expired.
	acceptUnavailable
	// acceptLapsed: still pending but past expiry; mark expired, then not found.
	acceptLapsed
)

// decideAccept is the single-use rule: concurrent accepts serialize on the row
// lock, the winner flips pending to accepted, and every later decision is made
// against the row the winner left behind.
func decideAccept(inv *models.Invitation, userID uuid.UUID, now time.Time) acceptDecision {
	switch inv.Status {
	case models.InvitationAccepted:
		if inv.AcceptedBy != nil && *inv.AcceptedBy == userID {
			return acceptIdempotent
		}
		return acceptConsumed
	case models.InvitationRevoked, models.InvitationExpired:
		return acceptUnavailable
	}
	if now.After(inv.ExpiresAt) {
		return acceptLapsed
	}
	return acceptGrant
}

// Accept redeems an invitation for a user as one transaction: lock the row,
// check it is still pending and unexpired, mark it accepted, and append the
// user to the event's admin set. Concurrent accepts on the same token
// serialize on the row lock, so exactly one wins; the loser sees the accepted
// row and gets ErrAlreadyConsumed. Re-acceptance by the identity that already
// won is an idempotent success, and the admin insert's ON CONFLICT keeps the
// admin set free of duplicates.
func (r *Repository) Accept(ctx context.Context, token string, userID uuid.UUID) (*models.Invitation, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const sel = `SELECT id, event_id, token, status, email, invited_by, accepted_by, expires_at, accepted_at, created_at
		FROM invitations WHERE token = $1 FOR UPDATE`
	var inv models.Invitation
	err = tx.QueryRow(ctx, sel, token).Scan(&inv.ID, &inv.EventID, &inv.Token, &inv.Status,
		&inv.Email, &inv.InvitedBy, &inv.AcceptedBy, &inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	switch decideAccept(&inv, userID, time.Now()) {
	case acceptIdempotent:
		return &inv, nil
	case acceptConsumed:
		return nil, ErrAlreadyConsumed
	case acceptUnavailable:
		return nil, ErrNotFound
	case acceptLapsed:
		if _, err := tx.Exec(ctx, `UPDATE invitations SET status = 'expired' WHERE id = $1`, inv.ID); err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}

	const upd = `UPDATE invitations SET status = 'accepted', accepted_by = $1, accepted_at = NOW()
		WHERE id = $2 RETURNING accepted_at`
	if err := tx.QueryRow(ctx, upd, userID, inv.ID).Scan(&inv.AcceptedAt); err != nil {
		return nil, err
	}
	const grant = `INSERT INTO event_admins (event_id, user_id) VALUES ($1, $2)
		ON CONFLICT (event_id, user_id) DO NOTHING`
	if _, err := tx.Exec(ctx, grant, inv.EventID, userID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	inv.Status = models.InvitationAccepted
	inv.AcceptedBy = &userID
	return &inv, nil
}

// Revoke marks a pending invitation revoked. Returns ErrNotFound when the
// invitation does not exist or is no longer pending.
func (r *Repository) Revoke(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE invitations SET status = 'revoked' WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByEvent returns an event's invitations, newest first.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Invitation, error) {
	const q = `SELECT id, event_id, token, status, email, invited_by, accepted_by, expires_at, accepted_at, created_at
		FROM invitations WHERE event_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Invitation
	for rows.Next() {
		var inv models.Invitation
		if err := rows.Scan(&inv.ID, &inv.EventID, &inv.Token, &inv.Status, &inv.Email,
			&inv.InvitedBy, &inv.AcceptedBy, &inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}
