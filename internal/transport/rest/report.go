package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/apexlens/backoffice/internal/domain"
)

// reportService defines the minimal interface needed by ReportHandler.
type reportService interface {
	SendWeekly(ctx context.Context, now time.Time) (*domain.WeeklyJobStats, error)
}

// ReportHandler serves the on-demand weekly report endpoint. The same
// service backs the scheduled weekly-report binary.
type ReportHandler struct {
	svc reportService
	log *slog.Logger
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(svc reportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{svc: svc, log: logger.With("handler", "report")}
}

type weeklyStatsResponse struct {
	WeekStart    time.Time `json:"weekStart"`
	WeekEnd      time.Time `json:"weekEnd"`
	NewRequests  int       `json:"newRequests"`
	Completed    int       `json:"completed"`
	RevenueCents int64     `json:"revenueCents"`
}

// SendWeekly handles POST /admin/reports/weekly.
func (h *ReportHandler) SendWeekly(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.SendWeekly(r.Context(), time.Now())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, weeklyStatsResponse{
		WeekStart:    stats.WeekStart,
		WeekEnd:      stats.WeekEnd,
		NewRequests:  stats.NewRequests,
		Completed:    stats.Completed,
		RevenueCents: stats.RevenueCents,
	})
}
