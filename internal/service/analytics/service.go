// Package analytics fetches site traffic summaries for the admin dashboard.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/apexlens/backoffice/internal/domain"
	"github.com/apexlens/backoffice/internal/provider"
)

// maxRangeDays caps a single report request.
const maxRangeDays = 366

// reportProvider runs traffic reports against the analytics backend.
type reportProvider interface {
	RunReport(ctx context.Context, start, end time.Time) ([]provider.ReportRow, error)
}

// Service implements analytics lookups.
type Service struct {
	log     *slog.Logger
	reports reportProvider
}

// NewService creates a new analytics service instance.
func NewService(logger *slog.Logger, reports reportProvider) *Service {
	return &Service{
		log:     logger.With("service", "analytics"),
		reports: reports,
	}
}

// Traffic returns daily traffic rows for [start, end], both YYYY-MM-DD.
func (s *Service) Traffic(ctx context.Context, start, end string) ([]provider.ReportRow, error) {
	from, err := time.Parse("2006-01-02", start)
	if err != nil {
		return nil, domain.NewValidationError("start", "must be formatted YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", end)
	if err != nil {
		return nil, domain.NewValidationError("end", "must be formatted YYYY-MM-DD")
	}
	if to.Before(from) {
		return nil, domain.NewValidationError("end", "must not be before start")
	}
	if to.Sub(from) > maxRangeDays*24*time.Hour {
		return nil, domain.NewValidationError("end", "range must not exceed one year")
	}

	rows, err := s.reports.RunReport(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("analytics.Traffic: %w", err)
	}

	s.log.InfoContext(ctx, "traffic report fetched",
		slog.String("start", start), slog.String("end", end), slog.Int("rows", len(rows)))

	return rows, nil
}
