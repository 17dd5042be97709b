// Package subscriber implements the Subscriber repository.
package subscriber

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/apexlens/backoffice/internal/adapter/postgres"
	"github.com/apexlens/backoffice/internal/domain"
)

// Repo provides subscriber-list persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new subscriber repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ListSubscribed returns every address still on the distribution list.
func (r *Repo) ListSubscribed(ctx context.Context) ([]domain.Subscriber, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, `
		SELECT id, email, subscribed, created_at
		FROM subscribers
		WHERE subscribed
		ORDER BY created_at`)
	if err != nil {
		return nil, postgres.MapError(err, "subscriber", uuid.Nil)
	}
	defer rows.Close()

	var subs []domain.Subscriber
	for rows.Next() {
		var s domain.Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.Subscribed, &s.CreatedAt); err != nil {
			return nil, postgres.MapError(err, "subscriber", uuid.Nil)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "subscriber", uuid.Nil)
	}

	return subs, nil
}

// Add inserts a new subscriber; a duplicate email maps to ErrAlreadyExists.
func (r *Repo) Add(ctx context.Context, email string) (*domain.Subscriber, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var s domain.Subscriber
	err := q.QueryRow(ctx, `
		INSERT INTO subscribers (email)
		VALUES ($1)
		RETURNING id, email, subscribed, created_at`,
		email,
	).Scan(&s.ID, &s.Email, &s.Subscribed, &s.CreatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "subscriber", uuid.Nil)
	}

	return &s, nil
}

// Unsubscribe flips the subscribed flag off, keeping the row for history.
func (r *Repo) Unsubscribe(ctx context.Context, email string) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, `UPDATE subscribers SET subscribed = false WHERE email = $1`, email)
	if err != nil {
		return postgres.MapError(err, "subscriber", uuid.Nil)
	}
	if tag.RowsAffected() == 0 {
		return postgres.MapError(pgx.ErrNoRows, "subscriber", uuid.Nil)
	}
	return nil
}
