package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/apexlens/backoffice/internal/domain"
	"github.com/apexlens/backoffice/internal/service/jobs"
)

// jobsService defines the minimal interface needed by JobsHandler.
type jobsService interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	Update(ctx context.Context, id uuid.UUID, patch map[string]any) (*domain.Job, error)
	CreateQuote(ctx context.Context, in jobs.QuoteInput) (*domain.Job, error)
	ListQuotes(ctx context.Context, limit int) ([]domain.Job, error)
}

// JobsHandler serves the admin job endpoints and the public quote intake.
type JobsHandler struct {
	svc jobsService
	log *slog.Logger
}

// NewJobsHandler creates a JobsHandler.
func NewJobsHandler(svc jobsService, logger *slog.Logger) *JobsHandler {
	return &JobsHandler{svc: svc, log: logger.With("handler", "jobs")}
}

type jobResponse struct {
	ID            string     `json:"id"`
	ClientName    string     `json:"clientName"`
	ClientEmail   string     `json:"clientEmail"`
	Address       string     `json:"address"`
	Service       string     `json:"service"`
	Status        string     `json:"status"`
	ScheduledAt   *time.Time `json:"scheduledAt,omitempty"`
	Photographer  *string    `json:"photographer,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	PriceCents    int64      `json:"priceCents"`
	InvoiceID     *string    `json:"invoiceId,omitempty"`
	InvoiceStatus *string    `json:"invoiceStatus,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func toJobResponse(j *domain.Job) jobResponse {
	resp := jobResponse{
		ID:           j.ID.String(),
		ClientName:   j.ClientName,
		ClientEmail:  j.ClientEmail,
		Address:      j.Address,
		Service:      j.Service.String(),
		Status:       j.Status.String(),
		ScheduledAt:  j.ScheduledAt,
		Photographer: j.Photographer,
		Notes:        j.Notes,
		PriceCents:   j.PriceCents,
		InvoiceID:    j.InvoiceID,
		CompletedAt:  j.CompletedAt,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
	}
	if j.InvoiceStatus != nil {
		s := j.InvoiceStatus.String()
		resp.InvoiceStatus = &s
	}
	return resp
}

// Get handles GET /admin/jobs/{id}.
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a UUID")
		return
	}

	job, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toJobResponse(job))
}

// Patch handles PATCH /admin/jobs/{id}. The body is a flat JSON object of
// field-value pairs; any field outside the allow-list rejects the request.
func (h *JobsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a UUID")
		return
	}

	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	job, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toJobResponse(job))
}

type quoteRequest struct {
	ClientName  string  `json:"clientName"`
	ClientEmail string  `json:"clientEmail"`
	Address     string  `json:"address"`
	Service     string  `json:"service"`
	Notes       *string `json:"notes,omitempty"`
}

// CreateQuote handles POST /quotes (public, rate limited).
func (h *JobsHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	job, err := h.svc.CreateQuote(r.Context(), jobs.QuoteInput{
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		Address:     req.Address,
		Service:     req.Service,
		Notes:       req.Notes,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	// The public caller gets a confirmation, not the full back-office row.
	writeJSON(w, http.StatusOK, map[string]string{
		"id":     job.ID.String(),
		"status": job.Status.String(),
	})
}

// ListQuotes handles GET /admin/quotes?limit=50.
func (h *JobsHandler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be an integer in [1,500]")
			return
		}
		limit = n
	}

	quotes, err := h.svc.ListQuotes(r.Context(), limit)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := make([]jobResponse, 0, len(quotes))
	for i := range quotes {
		resp = append(resp, toJobResponse(&quotes[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}
