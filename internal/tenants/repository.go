package tenants

import (
	"context"
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

var (
	// ErrDomainAlreadyClaimed means another tenant already claimed this email domain.
	ErrDomainAlreadyClaimed = errors.New("domain already claimed")
	// ErrAlreadyOnboarded means the identity already has a member record.
	ErrAlreadyOnboarded = errors.New("already onboarded")
)

const uniqueViolation = "23505"

// Repository handles tenant and member persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a tenants repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateWithOwner inserts the tenant and its owner member record in one
// transaction. The partial unique index on claimed_domain turns the
// check-then-create race into an atomic conditional write: when two first-time
// users from the same unclaimed domain onboard concurrently, exactly one
// transaction commits and the loser gets ErrDomainAlreadyClaimed.
func (r *Repository) CreateWithOwner(ctx context.Context, t *models.Tenant) (*models.Member, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertTenant = `INSERT INTO tenants (id, name, owner_id, tier, claimed_domain)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	if t.Tier == "" {
		t.Tier = models.TierFree
	}
	err = tx.QueryRow(ctx, insertTenant, t.Name, t.OwnerID, t.Tier, t.ClaimedDomain).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}

	const insertMember = `INSERT INTO members (id, tenant_id, user_id, role)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, created_at, updated_at`
	m := &models.Member{TenantID: t.ID, UserID: t.OwnerID, Role: models.RoleOwner}
	err = tx.QueryRow(ctx, insertMember, t.ID, t.OwnerID, models.RoleOwner).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapUniqueViolation(err)
	}
	return m, nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "tenants_claimed_domain_key":
			return ErrDomainAlreadyClaimed
		case "members_user_id_key":
			return ErrAlreadyOnboarded
		}
	}
	return err
}

// GetByID returns a tenant by id, or nil when none exists.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	const q = `SELECT id, name, owner_id, tier, claimed_domain, created_at, updated_at
		FROM tenants WHERE id = $1`
	var t models.Tenant
	err := database.WithRetry(ctx, func(ctx context.Context) error {
		return r.pool.QueryRow(ctx, q, id).
			Scan(&t.ID, &t.Name, &t.OwnerID, &t.Tier, &t.ClaimedDomain, &t.CreatedAt, &t.UpdatedAt)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByClaimedDomain returns the tenant claiming a domain, or nil when unclaimed.
func (r *Repository) GetByClaimedDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	const q = `SELECT id, name, owner_id, tier, claimed_domain, created_at, updated_at
		FROM tenants WHERE claimed_domain = $1`
	var t models.Tenant
	err := database.WithRetry(ctx, func(ctx context.Context) error {
		return r.pool.QueryRow(ctx, q, domain).
			Scan(&t.ID, &t.Name, &t.OwnerID, &t.Tier, &t.ClaimedDomain, &t.CreatedAt, &t.UpdatedAt)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// MemberDetail is a tenant member with user details (for GET /api/tenant/members).
type MemberDetail struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Role     string    `json:"role"`
	AddedAt  time.Time `json:"added_at"`
}

// ListMembers returns members of a tenant (join members + users).
func (r *Repository) ListMembers(ctx context.Context, tenantID uuid.UUID) ([]MemberDetail, error) {
	const q = `SELECT m.id, m.user_id, u.email, COALESCE(u.full_name, ''), m.role, m.created_at
		FROM members m
		INNER JOIN users u ON u.id = m.user_id
		WHERE m.tenant_id = $1
		ORDER BY m.created_at ASC`
	rows, err := r.pool.Query(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []MemberDetail
	for rows.Next() {
		var m MemberDetail
		if err := rows.Scan(&m.ID, &m.UserID, &m.Email, &m.FullName, &m.Role, &m.AddedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
