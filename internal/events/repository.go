package events

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luna-live/backend/internal/models"
	"github.com/luna-live/backend/pkg/database"
)

// JoinCodeLength is the length of the short public join code.
const JoinCodeLength = 8

// joinCodeAlphabet avoids ambiguous characters (0/O, 1/I/L).
const joinCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const uniqueViolation = "23505"

// Repository handles event and event-admin persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// NewJoinCode returns a random short join code.
func NewJoinCode() (string, error) {
	buf := make([]byte, JoinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	for i, b := range buf {
		buf[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	return string(buf), nil
}

// Create inserts a new event, generating a join code. Retries code generation
// a few times on the (unlikely) unique collision.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (id, tenant_id, title, description, status, starts_at, ends_at, created_by, join_code)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	if e.Status == "" {
		e.Status = models.EventDraft
	}
	for attempt := 0; attempt < 3; attempt++ {
		code, err := NewJoinCode()
		if err != nil {
			return err
		}
		err = r.pool.QueryRow(ctx, q, e.TenantID, e.Title, e.Description, e.Status, e.StartsAt, e.EndsAt, e.CreatedBy, code).
			Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
		if err == nil {
			e.JoinCode = code
			return nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "events_join_code_key" {
			continue
		}
		return err
	}
	return errors.New("join code collision")
}

// GetByID returns an event by id, or nil when none exists.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	const q = `SELECT id, tenant_id, title, description, status, starts_at, ends_at, created_by, join_code, created_at, updated_at
		FROM events WHERE id = $1`
	var e models.Event
	err := database.WithRetry(ctx, func(ctx context.Context) error {
		return r.pool.QueryRow(ctx, q, id).Scan(&e.ID, &e.TenantID, &e.Title, &e.Description, &e.Status,
			&e.StartsAt, &e.EndsAt, &e.CreatedBy, &e.JoinCode, &e.CreatedAt, &e.UpdatedAt)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByJoinCode returns a published event by its public join code, or nil.
func (r *Repository) GetByJoinCode(ctx context.Context, code string) (*models.Event, error) {
	const q = `SELECT id, tenant_id, title, description, status, starts_at, ends_at, created_by, join_code, created_at, updated_at
		FROM events WHERE join_code = $1 AND status = 'published'`
	var e models.Event
	err := database.WithRetry(ctx, func(ctx context.Context) error {
		return r.pool.QueryRow(ctx, q, code).Scan(&e.ID, &e.TenantID, &e.Title, &e.Description, &e.Status,
			&e.StartsAt, &e.EndsAt, &e.CreatedBy, &e.JoinCode, &e.CreatedAt, &e.UpdatedAt)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListByTenant returns a tenant's events, soonest start first.
func (r *Repository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Event, error) {
	const q = `SELECT id, tenant_id, title, description, status, starts_at, ends_at, created_by, join_code, created_at, updated_at
		FROM events WHERE tenant_id = $1 ORDER BY starts_at DESC`
	rows, err := r.pool.Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.TenantID, &e.Title, &e.Description, &e.Status,
			&e.StartsAt, &e.EndsAt, &e.CreatedBy, &e.JoinCode, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Update updates mutable event fields. Nil pointers leave the column as-is,
// so a present-but-empty description clears while an absent one is preserved.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, title, description, status *string, startsAt, endsAt *time.Time) error {
	const q = `UPDATE events SET
		title = COALESCE($1, title),
		description = COALESCE($2, description),
		status = COALESCE($3, status),
		starts_at = COALESCE($4, starts_at),
		ends_at = COALESCE($5, ends_at),
		updated_at = NOW()
		WHERE id = $6`
	_, err := r.pool.Exec(ctx, q, title, description, status, startsAt, endsAt, id)
	return err
}

// Delete removes an event.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	return err
}

// IsOwnerOrAdmin reports whether the user owns the event or is in its admin set.
func (r *Repository) IsOwnerOrAdmin(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	e, err := r.GetByID(ctx, eventID)
	if err != nil || e == nil {
		return false, err
	}
	if e.CreatedBy == userID {
		return true, nil
	}
	const q = `SELECT 1 FROM event_admins WHERE event_id = $1 AND user_id = $2`
	var exists int
	err = r.pool.QueryRow(ctx, q, eventID, userID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListAdmins returns the user ids in the event's admin set.
func (r *Repository) ListAdmins(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id FROM event_admins WHERE event_id = $1 ORDER BY added_at ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
