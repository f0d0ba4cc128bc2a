package push

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luna-live/backend/internal/models"
)

// Repository handles push subscription persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a push subscriptions repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert registers a subscription for an event, updating keys when the
// endpoint already exists. Returns the stored row.
func (r *Repository) Upsert(ctx context.Context, s *models.PushSubscription) error {
	const q = `INSERT INTO push_subscriptions (id, event_id, endpoint, auth, p256dh)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		ON CONFLICT (event_id, endpoint) DO UPDATE SET auth = EXCLUDED.auth, p256dh = EXCLUDED.p256dh
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, s.EventID, s.Endpoint, s.Auth, s.P256DH).
		Scan(&s.ID, &s.CreatedAt)
}

// ListByEvent returns all subscriptions for an event.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.PushSubscription, error) {
	const q = `SELECT id, event_id, endpoint, auth, p256dh, created_at
		FROM push_subscriptions WHERE event_id = $1`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.PushSubscription
	for rows.Next() {
		var s models.PushSubscription
		if err := rows.Scan(&s.ID, &s.EventID, &s.Endpoint, &s.Auth, &s.P256DH, &s.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// GetByID returns a subscription by id, or nil when none exists.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.PushSubscription, error) {
	const q = `SELECT id, event_id, endpoint, auth, p256dh, created_at
		FROM push_subscriptions WHERE id = $1`
	var s models.PushSubscription
	err := r.pool.QueryRow(ctx, q, id).Scan(&s.ID, &s.EventID, &s.Endpoint, &s.Auth, &s.P256DH, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete removes a subscription. Used when an endpoint reports itself gone.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM push_subscriptions WHERE id = $1`, id)
	return err
}

// DeleteByEndpoint removes a subscription by event and endpoint, for explicit
// unsubscribe from a browser that does not know the subscription id.
func (r *Repository) DeleteByEndpoint(ctx context.Context, eventID uuid.UUID, endpoint string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM push_subscriptions WHERE event_id = $1 AND endpoint = $2`, eventID, endpoint)
	return err
}
