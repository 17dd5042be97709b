// Package billing creates invoices with the payment provider and reconciles
// their paid state back onto job rows.
package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/apexlens/backoffice/internal/domain"
	"github.com/apexlens/backoffice/internal/provider"
	"github.com/apexlens/backoffice/internal/realtime"
)

// jobRepo defines the job repository interface needed by the billing service.
type jobRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	SetInvoice(ctx context.Context, id uuid.UUID, customerID, invoiceID string, status domain.InvoiceStatus) (*domain.Job, error)
	MarkPaid(ctx context.Context, id uuid.UUID, completedAt time.Time) (*domain.Job, error)
}

// paymentProvider defines the payment API surface the service uses.
type paymentProvider interface {
	CreateCustomer(ctx context.Context, email, name string) (string, error)
	CreateInvoice(ctx context.Context, customerID string) (string, error)
	AddLineItem(ctx context.Context, customerID, invoiceID string, amountCents int64, description string) error
	FinalizeInvoice(ctx context.Context, invoiceID string) (*provider.Invoice, error)
	SendInvoice(ctx context.Context, invoiceID string) (*provider.Invoice, error)
	GetInvoice(ctx context.Context, invoiceID string) (*provider.Invoice, error)
}

// eventPublisher publishes row-change events to dashboard clients.
type eventPublisher interface {
	Publish(ctx context.Context, ev realtime.Event) error
}

// Service implements invoice creation and payment reconciliation.
type Service struct {
	log      *slog.Logger
	jobs     jobRepo
	payments paymentProvider
	events   eventPublisher
}

// NewService creates a new billing service instance.
func NewService(logger *slog.Logger, jobs jobRepo, payments paymentProvider, events eventPublisher) *Service {
	return &Service{
		log:      logger.With("service", "billing"),
		jobs:     jobs,
		payments: payments,
		events:   events,
	}
}

// InvoiceResult is what the handler returns after a successful send.
type InvoiceResult struct {
	JobID       uuid.UUID
	InvoiceID   string
	CustomerID  string
	Status      domain.InvoiceStatus
	AmountCents int64
	HostedURL   string
}

// CreateInvoice performs the full invoice flow for a job: ensure a provider
// customer exists for the client, open a draft, attach one line item in minor
// units, finalize, send, then persist the linkage in a single UPDATE.
// A persistence failure after a successful send is surfaced as an error so
// the operator re-checks the job instead of trusting a silent success.
func (s *Service) CreateInvoice(ctx context.Context, jobID uuid.UUID, amountCents int64) (*InvoiceResult, error) {
	if amountCents <= 0 {
		return nil, domain.NewValidationError("amount", "must be positive")
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("billing.CreateInvoice: %w", err)
	}
	if job.InvoiceID != nil {
		return nil, fmt.Errorf("billing.CreateInvoice: job already invoiced: %w", domain.ErrConflict)
	}

	customerID, err := s.ensureCustomer(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("billing.CreateInvoice: %w", err)
	}

	invoiceID, err := s.payments.CreateInvoice(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("billing.CreateInvoice: create invoice: %w", err)
	}

	description := fmt.Sprintf("%s, %s", job.Service, job.Address)
	if err := s.payments.AddLineItem(ctx, customerID, invoiceID, amountCents, description); err != nil {
		return nil, fmt.Errorf("billing.CreateInvoice: add line item: %w", err)
	}

	if _, err := s.payments.FinalizeInvoice(ctx, invoiceID); err != nil {
		return nil, fmt.Errorf("billing.CreateInvoice: finalize: %w", err)
	}

	sent, err := s.payments.SendInvoice(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("billing.CreateInvoice: send: %w", err)
	}

	if _, err := s.jobs.SetInvoice(ctx, jobID, customerID, invoiceID, domain.InvoiceStatusSent); err != nil {
		// The invoice went out. Do not pretend otherwise.
		s.log.ErrorContext(ctx, "invoice sent but persistence failed",
			slog.String("job_id", jobID.String()),
			slog.String("invoice_id", invoiceID),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("billing.CreateInvoice: invoice %s sent but not recorded: %w", invoiceID, err)
	}

	s.log.InfoContext(ctx, "invoice sent",
		slog.String("job_id", jobID.String()),
		slog.String("invoice_id", invoiceID),
		slog.Int64("amount_cents", amountCents))

	return &InvoiceResult{
		JobID:       jobID,
		InvoiceID:   invoiceID,
		CustomerID:  customerID,
		Status:      domain.InvoiceStatusSent,
		AmountCents: amountCents,
		HostedURL:   sent.HostedURL,
	}, nil
}

// ensureCustomer reuses the stored provider customer or creates one.
func (s *Service) ensureCustomer(ctx context.Context, job *domain.Job) (string, error) {
	if job.StripeCustomerID != nil && *job.StripeCustomerID != "" {
		return *job.StripeCustomerID, nil
	}

	customerID, err := s.payments.CreateCustomer(ctx, job.ClientEmail, job.ClientName)
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	return customerID, nil
}

// StatusResult is the reconciled invoice state for a job.
type StatusResult struct {
	JobID         uuid.UUID
	InvoiceID     string
	InvoiceStatus string
	JobStatus     domain.JobStatus
	AmountCents   int64
	PaidAt        *time.Time
	Reconciled    bool
}

// CheckStatus fetches the provider's view of a job's invoice and reconciles
// local state: when the provider reports paid and the job row does not, one
// precomputed UPDATE marks the job paid and an update event is published.
func (s *Service) CheckStatus(ctx context.Context, jobID uuid.UUID) (*StatusResult, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("billing.CheckStatus: %w", err)
	}
	if job.InvoiceID == nil {
		return nil, fmt.Errorf("billing.CheckStatus: job has no invoice: %w", domain.ErrNotFound)
	}

	inv, err := s.payments.GetInvoice(ctx, *job.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("billing.CheckStatus: %w", err)
	}

	result := &StatusResult{
		JobID:         jobID,
		InvoiceID:     inv.ID,
		InvoiceStatus: inv.Status,
		JobStatus:     job.Status,
		AmountCents:   inv.AmountCents,
		PaidAt:        inv.PaidAt,
	}

	if !inv.Paid() || job.Status == domain.JobStatusPaid {
		return result, nil
	}

	completedAt := time.Now().UTC()
	if inv.PaidAt != nil {
		completedAt = *inv.PaidAt
	}

	updated, err := s.jobs.MarkPaid(ctx, jobID, completedAt)
	if err != nil {
		return nil, fmt.Errorf("billing.CheckStatus: mark paid: %w", err)
	}

	if err := s.events.Publish(ctx, realtime.Updated(job, updated)); err != nil {
		// The reconcile itself succeeded; a lost event only delays the
		// dashboard until its next refresh.
		s.log.WarnContext(ctx, "publish update event failed",
			slog.String("job_id", jobID.String()), slog.String("error", err.Error()))
	}

	s.log.InfoContext(ctx, "payment reconciled",
		slog.String("job_id", jobID.String()),
		slog.String("invoice_id", inv.ID))

	result.JobStatus = updated.Status
	result.Reconciled = true
	return result, nil
}
