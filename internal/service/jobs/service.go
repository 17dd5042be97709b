// Package jobs implements admin job mutation and the public quote-request
// intake that seeds the jobs table.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/apexlens/backoffice/internal/domain"
	"github.com/apexlens/backoffice/internal/realtime"
)

// jobRepo defines the job repository interface needed by the jobs service.
type jobRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	Create(ctx context.Context, j *domain.Job) (*domain.Job, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (old, updated *domain.Job, err error)
	ListByStatus(ctx context.Context, status domain.JobStatus, limit int) ([]domain.Job, error)
}

// eventPublisher publishes row-change events to dashboard clients.
type eventPublisher interface {
	Publish(ctx context.Context, ev realtime.Event) error
}

// txRunner runs a function inside one database transaction.
type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements job operations.
type Service struct {
	log    *slog.Logger
	jobs   jobRepo
	events eventPublisher
	tx     txRunner
}

// NewService creates a new jobs service instance.
func NewService(logger *slog.Logger, jobs jobRepo, events eventPublisher, tx txRunner) *Service {
	return &Service{
		log:    logger.With("service", "jobs"),
		jobs:   jobs,
		events: events,
		tx:     tx,
	}
}

// Get returns one job.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("jobs.Get: %w", err)
	}
	return job, nil
}

// Update applies an admin PATCH. Every field name must be on the allow-list;
// a single unknown field rejects the whole request before any SQL is built.
// All changes land in one UPDATE and an update event carries the old and new
// row snapshots.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch map[string]any) (*domain.Job, error) {
	if len(patch) == 0 {
		return nil, domain.NewValidationError("body", "no fields to update")
	}

	columns := make(map[string]any, len(patch))
	for field, value := range patch {
		col, ok := domain.JobUpdateColumn(field)
		if !ok {
			return nil, domain.NewValidationError(field, "field is not updatable")
		}

		v, err := coerceFieldValue(field, value)
		if err != nil {
			return nil, err
		}
		columns[col] = v
	}

	// Moving to a terminal completed state stamps completed_at in the same
	// UPDATE, so the row is never observed half-finished.
	if v, ok := columns["status"]; ok {
		if v == domain.JobStatusPaid.String() || v == domain.JobStatusCancelled.String() {
			columns["completed_at"] = time.Now().UTC()
		}
	}

	// The repo snapshots the old row before updating; the transaction keeps
	// the old/new pair consistent under concurrent writers.
	var old, updated *domain.Job
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var txErr error
		old, updated, txErr = s.jobs.UpdateFields(ctx, id, columns)
		return txErr
	})
	if err != nil {
		return nil, fmt.Errorf("jobs.Update: %w", err)
	}

	if err := s.events.Publish(ctx, realtime.Updated(old, updated)); err != nil {
		s.log.WarnContext(ctx, "publish update event failed",
			slog.String("job_id", id.String()), slog.String("error", err.Error()))
	}

	s.log.InfoContext(ctx, "job updated",
		slog.String("job_id", id.String()), slog.Int("fields", len(patch)))

	return updated, nil
}

// QuoteInput is the public quote-request payload.
type QuoteInput struct {
	ClientName  string
	ClientEmail string
	Address     string
	Service     string
	Notes       *string
}

// Validate checks the quote request.
func (in QuoteInput) Validate() error {
	if in.ClientName == "" {
		return domain.NewValidationError("clientName", "is required")
	}
	if _, err := mail.ParseAddress(in.ClientEmail); err != nil {
		return domain.NewValidationError("clientEmail", "must be a valid email address")
	}
	if in.Address == "" {
		return domain.NewValidationError("address", "is required")
	}
	if !domain.ServiceType(in.Service).IsValid() {
		return domain.NewValidationError("service", "unknown service type")
	}
	return nil
}

// CreateQuote stores a public quote request as a job in the requested state
// and publishes an insert event for the notification center.
func (s *Service) CreateQuote(ctx context.Context, in QuoteInput) (*domain.Job, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	job, err := s.jobs.Create(ctx, &domain.Job{
		ClientName:  in.ClientName,
		ClientEmail: in.ClientEmail,
		Address:     in.Address,
		Service:     domain.ServiceType(in.Service),
		Notes:       in.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("jobs.CreateQuote: %w", err)
	}

	if err := s.events.Publish(ctx, realtime.Inserted(job)); err != nil {
		s.log.WarnContext(ctx, "publish insert event failed",
			slog.String("job_id", job.ID.String()), slog.String("error", err.Error()))
	}

	s.log.InfoContext(ctx, "quote request created",
		slog.String("job_id", job.ID.String()), slog.String("service", in.Service))

	return job, nil
}

// ListQuotes returns pending quote requests, newest first.
func (s *Service) ListQuotes(ctx context.Context, limit int) ([]domain.Job, error) {
	jobs, err := s.jobs.ListByStatus(ctx, domain.JobStatusRequested, limit)
	if err != nil {
		return nil, fmt.Errorf("jobs.ListQuotes: %w", err)
	}
	return jobs, nil
}

// coerceFieldValue normalizes JSON-decoded values for their columns and
// validates enum and timestamp fields.
func coerceFieldValue(field string, value any) (any, error) {
	switch field {
	case "status":
		s, ok := value.(string)
		if !ok || !domain.JobStatus(s).IsValid() {
			return nil, domain.NewValidationError(field, "unknown status")
		}
		return s, nil
	case "service":
		s, ok := value.(string)
		if !ok || !domain.ServiceType(s).IsValid() {
			return nil, domain.NewValidationError(field, "unknown service type")
		}
		return s, nil
	case "scheduledAt":
		if value == nil {
			return nil, nil
		}
		s, ok := value.(string)
		if !ok {
			return nil, domain.NewValidationError(field, "must be an RFC 3339 timestamp")
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, domain.NewValidationError(field, "must be an RFC 3339 timestamp")
		}
		return t.UTC(), nil
	case "priceCents":
		// encoding/json delivers numbers as float64.
		f, ok := value.(float64)
		if !ok || f != float64(int64(f)) || f < 0 {
			return nil, domain.NewValidationError(field, "must be a non-negative integer")
		}
		return int64(f), nil
	case "clientEmail":
		s, ok := value.(string)
		if !ok {
			return nil, domain.NewValidationError(field, "must be a string")
		}
		if _, err := mail.ParseAddress(s); err != nil {
			return nil, domain.NewValidationError(field, "must be a valid email address")
		}
		return s, nil
	default:
		// Remaining allow-listed fields are free-form strings or nullable.
		return value, nil
	}
}
