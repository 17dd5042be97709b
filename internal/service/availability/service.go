// Package availability exposes the team calendar's busy intervals for a day
// so the public booking form can grey out taken times.
package availability

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/apexlens/backoffice/internal/config"
	"github.com/apexlens/backoffice/internal/domain"
	"github.com/apexlens/backoffice/internal/provider"
)

// calendarProvider reports busy intervals from the shared calendar.
type calendarProvider interface {
	FreeBusy(ctx context.Context, min, max time.Time) ([]provider.BusyRange, error)
}

// Interval is one busy {start,end} pair within business hours.
type Interval struct {
	Start time.Time
	End   time.Time
}

// DayAvailability lists the busy intervals for a single day. Only the time
// pairs are exposed; event details never leave the server.
type DayAvailability struct {
	Date string
	Busy []Interval
}

// Service implements the public availability lookup.
type Service struct {
	log      *slog.Logger
	calendar calendarProvider
	booking  config.BookingConfig
}

// NewService creates a new availability service instance.
func NewService(logger *slog.Logger, calendar calendarProvider, booking config.BookingConfig) *Service {
	return &Service{
		log:      logger.With("service", "availability"),
		calendar: calendar,
		booking:  booking,
	}
}

// Day returns the busy intervals for the given date (YYYY-MM-DD), interpreted
// in the business timezone and clipped to business hours. Dates entirely in
// the past yield an empty list without hitting the calendar.
func (s *Service) Day(ctx context.Context, date string) (*DayAvailability, error) {
	loc := s.booking.Location()

	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, domain.NewValidationError("date", "must be formatted YYYY-MM-DD")
	}

	dayStart := day.Add(time.Duration(s.booking.DayStartHour) * time.Hour)
	dayEnd := day.Add(time.Duration(s.booking.DayEndHour) * time.Hour)

	if !dayEnd.After(time.Now().In(loc)) {
		return &DayAvailability{Date: date, Busy: []Interval{}}, nil
	}

	ranges, err := s.calendar.FreeBusy(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("availability.Day: %w", err)
	}

	busy := clipBusy(dayStart, dayEnd, ranges)

	s.log.InfoContext(ctx, "availability computed",
		slog.String("date", date), slog.Int("busy", len(busy)))

	return &DayAvailability{Date: date, Busy: busy}, nil
}

// clipBusy merges overlapping busy ranges and clips them to [start,end),
// dropping anything fully outside business hours.
func clipBusy(start, end time.Time, busy []provider.BusyRange) []Interval {
	merged := mergeRanges(busy)

	out := []Interval{}
	for _, b := range merged {
		if !b.End.After(start) || !b.Start.Before(end) {
			continue
		}
		out = append(out, Interval{
			Start: maxTime(b.Start, start),
			End:   minTime(b.End, end),
		})
	}
	return out
}

func mergeRanges(busy []provider.BusyRange) []provider.BusyRange {
	if len(busy) == 0 {
		return nil
	}
	ranges := make([]provider.BusyRange, len(busy))
	copy(ranges, busy)
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start.Before(ranges[j].Start) })

	merged := ranges[:1]
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if !r.Start.After(last.End) {
			if r.End.After(last.End) {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
