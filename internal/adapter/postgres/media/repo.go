// Package media implements the MediaAsset repository, the source of the
// aggregate storage-usage figure.
package media

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/apexlens/backoffice/internal/adapter/postgres"
	"github.com/apexlens/backoffice/internal/domain"
)

// Repo provides media-asset persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new media repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// TotalSize returns the summed size of all stored gallery assets in bytes.
func (r *Repo) TotalSize(ctx context.Context) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var total int64
	err := q.QueryRow(ctx, `SELECT COALESCE(sum(size_bytes), 0) FROM media_assets`).Scan(&total)
	if err != nil {
		return 0, postgres.MapError(err, "media_asset", uuid.Nil)
	}

	return total, nil
}

// Add records a stored gallery file for a job.
func (r *Repo) Add(ctx context.Context, jobID uuid.UUID, filename string, sizeBytes int64) (*domain.MediaAsset, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var a domain.MediaAsset
	err := q.QueryRow(ctx, `
		INSERT INTO media_assets (job_id, filename, size_bytes)
		VALUES ($1, $2, $3)
		RETURNING id, job_id, filename, size_bytes, created_at`,
		jobID, filename, sizeBytes,
	).Scan(&a.ID, &a.JobID, &a.Filename, &a.SizeBytes, &a.CreatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "media_asset", jobID)
	}

	return &a, nil
}

// ListByJob returns the assets stored for one job, oldest first.
func (r *Repo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.MediaAsset, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, `
		SELECT id, job_id, filename, size_bytes, created_at
		FROM media_assets
		WHERE job_id = $1
		ORDER BY created_at`,
		jobID,
	)
	if err != nil {
		return nil, postgres.MapError(err, "media_asset", jobID)
	}
	defer rows.Close()

	var assets []domain.MediaAsset
	for rows.Next() {
		var a domain.MediaAsset
		if err := rows.Scan(&a.ID, &a.JobID, &a.Filename, &a.SizeBytes, &a.CreatedAt); err != nil {
			return nil, postgres.MapError(err, "media_asset", jobID)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "media_asset", jobID)
	}

	return assets, nil
}
