package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/apexlens/backoffice/internal/service/availability"
)

// availabilityService defines the minimal interface needed by
// AvailabilityHandler.
type availabilityService interface {
	Day(ctx context.Context, date string) (*availability.DayAvailability, error)
}

// AvailabilityHandler serves the public booking availability endpoint.
type AvailabilityHandler struct {
	svc availabilityService
	log *slog.Logger
}

// NewAvailabilityHandler creates an AvailabilityHandler.
func NewAvailabilityHandler(svc availabilityService, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc, log: logger.With("handler", "availability")}
}

type intervalResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type availabilityResponse struct {
	Date string             `json:"date"`
	Busy []intervalResponse `json:"busy"`
}

// Day handles GET /availability?date=YYYY-MM-DD (public, rate limited).
func (h *AvailabilityHandler) Day(w http.ResponseWriter, r *http.Request) {
	day, err := h.svc.Day(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	busy := make([]intervalResponse, 0, len(day.Busy))
	for _, b := range day.Busy {
		busy = append(busy, intervalResponse{Start: b.Start, End: b.End})
	}
	writeJSON(w, http.StatusOK, availabilityResponse{Date: day.Date, Busy: busy})
}
