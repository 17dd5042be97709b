// Package job implements the Job repository using PostgreSQL.
package job

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/apexlens/backoffice/internal/adapter/postgres"
	"github.com/apexlens/backoffice/internal/domain"
)

// jobColumns is the canonical column list; every query that returns a job
// row selects exactly these, in this order, so one scan helper serves all.
const jobColumns = `id, client_name, client_email, address, service, status,
	scheduled_at, photographer, notes, price_cents, stripe_customer_id,
	invoice_id, invoice_status, completed_at, created_at, updated_at`

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repo provides job persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new job repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// GetByID returns a job by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)

	j, err := scanJob(row)
	if err != nil {
		return nil, postgres.MapError(err, "job", id)
	}
	return j, nil
}

// Create inserts a new job row. Only the quote-intake fields are taken from
// the argument; status defaults to requested.
func (r *Repo) Create(ctx context.Context, j *domain.Job) (*domain.Job, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, `
		INSERT INTO jobs (client_name, client_email, address, service, notes, price_cents)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+jobColumns,
		j.ClientName, j.ClientEmail, j.Address, j.Service.String(), j.Notes, j.PriceCents,
	)

	created, err := scanJob(row)
	if err != nil {
		return nil, postgres.MapError(err, "job", uuid.Nil)
	}
	return created, nil
}

// UpdateFields applies the given column/value pairs in a single UPDATE and
// returns the old and new row states. Column names must already be validated
// against the allow-list; this method does not re-check them.
func (r *Repo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (old, updated *domain.Job, err error) {
	if len(fields) == 0 {
		return nil, nil, fmt.Errorf("job %s: no fields: %w", id, domain.ErrValidation)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	upd := psql.Update("jobs").Where(squirrel.Eq{"id": id})
	for col, val := range fields {
		upd = upd.Set(col, val)
	}
	upd = upd.Suffix(`RETURNING ` + jobColumns)

	updSQL, updArgs, err := upd.ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("build update: %w", err)
	}

	// Snapshot-then-update is not atomic on its own; run it inside
	// TxManager.RunInTx when the old/new pair must be consistent.
	old, err = scanJob(q.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		return nil, nil, postgres.MapError(err, "job", id)
	}

	updated, err = scanJob(q.QueryRow(ctx, updSQL, updArgs...))
	if err != nil {
		return nil, nil, postgres.MapError(err, "job", id)
	}

	return old, updated, nil
}

// SetInvoice persists the billing linkage written after a successful invoice
// send: provider customer id, invoice id, and invoice status, in one UPDATE.
func (r *Repo) SetInvoice(ctx context.Context, id uuid.UUID, customerID, invoiceID string, status domain.InvoiceStatus) (*domain.Job, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, `
		UPDATE jobs
		SET stripe_customer_id = $2, invoice_id = $3, invoice_status = $4
		WHERE id = $1
		RETURNING `+jobColumns,
		id, customerID, invoiceID, status.String(),
	)

	j, err := scanJob(row)
	if err != nil {
		return nil, postgres.MapError(err, "job", id)
	}
	return j, nil
}

// MarkPaid records a reconciled payment: job status, invoice status, and the
// completion timestamp are all precomputed by the caller and applied in one
// UPDATE.
func (r *Repo) MarkPaid(ctx context.Context, id uuid.UUID, completedAt time.Time) (*domain.Job, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, `
		UPDATE jobs
		SET status = $2, invoice_status = $3, completed_at = $4
		WHERE id = $1
		RETURNING `+jobColumns,
		id, domain.JobStatusPaid.String(), domain.InvoiceStatusPaid.String(), completedAt,
	)

	j, err := scanJob(row)
	if err != nil {
		return nil, postgres.MapError(err, "job", id)
	}
	return j, nil
}

// ListByStatus returns jobs with the given status, newest first.
func (r *Repo) ListByStatus(ctx context.Context, status domain.JobStatus, limit int) ([]domain.Job, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	query := psql.Select(jobColumns).
		From("jobs").
		Where(squirrel.Eq{"status": status.String()}).
		OrderBy("created_at DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "job", uuid.Nil)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, postgres.MapError(err, "job", uuid.Nil)
		}
		jobs = append(jobs, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "job", uuid.Nil)
	}

	return jobs, nil
}

// WeeklyStats aggregates activity for the half-open interval [start, end):
// requests created, jobs completed, and revenue from jobs completed in it.
func (r *Repo) WeeklyStats(ctx context.Context, start, end time.Time) (*domain.WeeklyJobStats, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE created_at >= $1 AND created_at < $2),
			count(*) FILTER (WHERE completed_at >= $1 AND completed_at < $2),
			COALESCE(sum(price_cents) FILTER (WHERE completed_at >= $1 AND completed_at < $2), 0)
		FROM jobs`,
		start, end,
	)

	stats := domain.WeeklyJobStats{WeekStart: start, WeekEnd: end}
	if err := row.Scan(&stats.NewRequests, &stats.Completed, &stats.RevenueCents); err != nil {
		return nil, postgres.MapError(err, "job", uuid.Nil)
	}

	return &stats, nil
}

// scanJob reads one job row in jobColumns order.
func scanJob(row pgx.Row) (*domain.Job, error) {
	var (
		j             domain.Job
		service       string
		status        string
		invoiceStatus *string
	)

	err := row.Scan(
		&j.ID, &j.ClientName, &j.ClientEmail, &j.Address, &service, &status,
		&j.ScheduledAt, &j.Photographer, &j.Notes, &j.PriceCents, &j.StripeCustomerID,
		&j.InvoiceID, &invoiceStatus, &j.CompletedAt, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	j.Service = domain.ServiceType(service)
	j.Status = domain.JobStatus(status)
	if invoiceStatus != nil {
		s := domain.InvoiceStatus(*invoiceStatus)
		j.InvoiceStatus = &s
	}

	return &j, nil
}
