package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/apexlens/backoffice/internal/service/billing"
)

// billingService defines the minimal interface needed by BillingHandler.
type billingService interface {
	CreateInvoice(ctx context.Context, jobID uuid.UUID, amountCents int64) (*billing.InvoiceResult, error)
	CheckStatus(ctx context.Context, jobID uuid.UUID) (*billing.StatusResult, error)
}

// BillingHandler serves invoice REST endpoints.
type BillingHandler struct {
	svc billingService
	log *slog.Logger
}

// NewBillingHandler creates a BillingHandler.
func NewBillingHandler(svc billingService, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{svc: svc, log: logger.With("handler", "billing")}
}

type createInvoiceRequest struct {
	JobID  string  `json:"jobId"`
	Amount float64 `json:"amount"` // dollars
}

type invoiceResponse struct {
	JobID       string `json:"jobId"`
	InvoiceID   string `json:"invoiceId"`
	CustomerID  string `json:"customerId"`
	Status      string `json:"status"`
	AmountCents int64  `json:"amountCents"`
	HostedURL   string `json:"hostedUrl,omitempty"`
}

type invoiceStatusResponse struct {
	JobID         string     `json:"jobId"`
	InvoiceID     string     `json:"invoiceId"`
	InvoiceStatus string     `json:"invoiceStatus"`
	JobStatus     string     `json:"jobStatus"`
	AmountCents   int64      `json:"amountCents"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
	Reconciled    bool       `json:"reconciled"`
}

// CreateInvoice handles POST /admin/invoices.
func (h *BillingHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "jobId must be a UUID")
		return
	}

	amountCents := int64(math.Round(req.Amount * 100))

	result, err := h.svc.CreateInvoice(r.Context(), jobID, amountCents)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, invoiceResponse{
		JobID:       result.JobID.String(),
		InvoiceID:   result.InvoiceID,
		CustomerID:  result.CustomerID,
		Status:      result.Status.String(),
		AmountCents: result.AmountCents,
		HostedURL:   result.HostedURL,
	})
}

// InvoiceStatus handles GET /admin/invoices/{jobId}/status. Checking the
// status also reconciles a payment the provider has settled since the last
// look.
func (h *BillingHandler) InvoiceStatus(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("jobId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "jobId must be a UUID")
		return
	}

	result, err := h.svc.CheckStatus(r.Context(), jobID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, invoiceStatusResponse{
		JobID:         result.JobID.String(),
		InvoiceID:     result.InvoiceID,
		InvoiceStatus: result.InvoiceStatus,
		JobStatus:     result.JobStatus.String(),
		AmountCents:   result.AmountCents,
		PaidAt:        result.PaidAt,
		Reconciled:    result.Reconciled,
	})
}
