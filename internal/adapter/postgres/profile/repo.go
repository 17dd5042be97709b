// Package profile implements the read-only Profile repository.
package profile

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/apexlens/backoffice/internal/adapter/postgres"
	"github.com/apexlens/backoffice/internal/domain"
)

// Repo reads profiles from PostgreSQL. Profiles are written by an external
// administrative process, so only lookups exist here.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new profile repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// GetByID returns the profile whose id equals the identity token subject.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var (
		p    domain.Profile
		role string
	)
	err := q.QueryRow(ctx, `
		SELECT id, email, name, role, created_at, updated_at
		FROM profiles
		WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Email, &p.Name, &role, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "profile", id)
	}

	p.Role = domain.UserRole(role)
	return &p, nil
}
