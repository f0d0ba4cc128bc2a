package announcements

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luna-live/backend/internal/models"
	"github.com/luna-live/backend/pkg/database"
)

// Repository handles announcement persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an announcements repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an announcement.
func (r *Repository) Create(ctx context.Context, a *models.Announcement) error {
	const q = `INSERT INTO announcements (id, event_id, author_id, title, body, attachment_key)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, a.EventID, a.AuthorID, a.Title, a.Body, a.AttachmentKey).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// GetByID returns an announcement by id, or nil when none exists.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Announcement, error) {
	const q = `SELECT id, event_id, author_id, title, body, attachment_key, created_at, updated_at
		FROM announcements WHERE id = $1`
	var a models.Announcement
	err := database.WithRetry(ctx, func(ctx context.Context) error {
		return r.pool.QueryRow(ctx, q, id).Scan(&a.ID, &a.EventID, &a.AuthorID, &a.Title, &a.Body,
			&a.AttachmentKey, &a.CreatedAt, &a.UpdatedAt)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByEvent returns an event's announcements, newest first.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Announcement, error) {
	const q = `SELECT id, event_id, author_id, title, body, attachment_key, created_at, updated_at
		FROM announcements WHERE event_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Announcement
	for rows.Next() {
		var a models.Announcement
		if err := rows.Scan(&a.ID, &a.EventID, &a.AuthorID, &a.Title, &a.Body,
			&a.AttachmentKey, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Update updates an announcement's title and body.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, title, body string) error {
	const q = `UPDATE announcements SET
		title = COALESCE(NULLIF($1, ''), title),
		body = COALESCE(NULLIF($2, ''), body),
		updated_at = NOW()
		WHERE id = $3`
	_, err := r.pool.Exec(ctx, q, title, body, id)
	return err
}

// SetAttachmentKey records the S3 object key after a client-side upload.
func (r *Repository) SetAttachmentKey(ctx context.Context, id uuid.UUID, key string) error {
	_, err := r.pool.Exec(ctx, `UPDATE announcements SET attachment_key = $1, updated_at = NOW() WHERE id = $2`, key, id)
	return err
}

// Delete removes an announcement.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	return err
}
