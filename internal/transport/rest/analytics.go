package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/apexlens/backoffice/internal/provider"
)

// analyticsService defines the minimal interface needed by AnalyticsHandler.
type analyticsService interface {
	Traffic(ctx context.Context, start, end string) ([]provider.ReportRow, error)
}

// AnalyticsHandler serves the admin traffic dashboard endpoint.
type AnalyticsHandler struct {
	svc analyticsService
	log *slog.Logger
}

// NewAnalyticsHandler creates an AnalyticsHandler.
func NewAnalyticsHandler(svc analyticsService, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, log: logger.With("handler", "analytics")}
}

type trafficRow struct {
	Date        string `json:"date"`
	Sessions    int64  `json:"sessions"`
	ActiveUsers int64  `json:"activeUsers"`
	PageViews   int64  `json:"pageViews"`
}

// Traffic handles GET /admin/analytics?start=YYYY-MM-DD&end=YYYY-MM-DD.
func (h *AnalyticsHandler) Traffic(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	rows, err := h.svc.Traffic(r.Context(), q.Get("start"), q.Get("end"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := make([]trafficRow, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, trafficRow{
			Date:        row.Date,
			Sessions:    row.Sessions,
			ActiveUsers: row.ActiveUsers,
			PageViews:   row.PageViews,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
