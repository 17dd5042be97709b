// Package report builds and mails the weekly activity summary.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/apexlens/backoffice/internal/domain"
)

// statsRepo aggregates job activity over a date range.
type statsRepo interface {
	WeeklyStats(ctx context.Context, start, end time.Time) (*domain.WeeklyJobStats, error)
}

// emailSender delivers a single email.
type emailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Service implements the weekly summary report.
type Service struct {
	log        *slog.Logger
	stats      statsRepo
	mailer     emailSender
	recipients []string
	location   *time.Location
}

// NewService creates a new report service instance. The recipient list comes
// from configuration and the location anchors the week boundary.
func NewService(logger *slog.Logger, stats statsRepo, mailer emailSender, recipients []string, location *time.Location) *Service {
	return &Service{
		log:        logger.With("service", "report"),
		stats:      stats,
		mailer:     mailer,
		recipients: recipients,
		location:   location,
	}
}

// SendWeekly aggregates the most recent complete Monday-to-Monday week
// relative to now and mails the summary to every configured recipient.
func (s *Service) SendWeekly(ctx context.Context, now time.Time) (*domain.WeeklyJobStats, error) {
	if len(s.recipients) == 0 {
		return nil, domain.NewValidationError("recipients", "no report recipients configured")
	}

	start, end := lastWeek(now.In(s.location))

	stats, err := s.stats.WeeklyStats(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("report.SendWeekly: %w", err)
	}
	stats.WeekStart = start
	stats.WeekEnd = end

	subject := fmt.Sprintf("Weekly summary %s to %s",
		start.Format("Jan 2"), end.AddDate(0, 0, -1).Format("Jan 2, 2006"))
	body := renderHTML(stats)

	var failed []string
	for _, to := range s.recipients {
		if err := s.mailer.Send(ctx, to, subject, body); err != nil {
			failed = append(failed, to)
			s.log.WarnContext(ctx, "report delivery failed",
				slog.String("to", to), slog.String("error", err.Error()))
		}
	}
	if len(failed) == len(s.recipients) {
		return nil, fmt.Errorf("report.SendWeekly: all %d deliveries failed", len(failed))
	}

	s.log.InfoContext(ctx, "weekly report sent",
		slog.Time("week_start", start),
		slog.Int("recipients", len(s.recipients)), slog.Int("failed", len(failed)))

	return stats, nil
}

// lastWeek returns the [start, end) bounds of the most recent complete week,
// Monday 00:00 to the following Monday 00:00 in now's location.
func lastWeek(now time.Time) (time.Time, time.Time) {
	daysSinceMonday := (int(now.Weekday()) + 6) % 7
	thisMonday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -daysSinceMonday)
	return thisMonday.AddDate(0, 0, -7), thisMonday
}

func renderHTML(stats *domain.WeeklyJobStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Week of %s</h2>", stats.WeekStart.Format("January 2, 2006"))
	b.WriteString("<ul>")
	fmt.Fprintf(&b, "<li>New requests: %d</li>", stats.NewRequests)
	fmt.Fprintf(&b, "<li>Jobs completed: %d</li>", stats.Completed)
	fmt.Fprintf(&b, "<li>Revenue: $%.2f</li>", float64(stats.RevenueCents)/100)
	b.WriteString("</ul>")
	return b.String()
}
