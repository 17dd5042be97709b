package availability

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexlens/backoffice/internal/config"
	"github.com/apexlens/backoffice/internal/domain"
	"github.com/apexlens/backoffice/internal/provider"
)

type calendarMock struct {
	FreeBusyFunc func(ctx context.Context, min, max time.Time) ([]provider.BusyRange, error)

	calls int
}

var _ calendarProvider = &calendarMock{}

func (m *calendarMock) FreeBusy(ctx context.Context, min, max time.Time) ([]provider.BusyRange, error) {
	m.calls++
	return m.FreeBusyFunc(ctx, min, max)
}

func newTestService(cal *calendarMock) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(log, cal, config.BookingConfig{
		DayStartHour: 9,
		DayEndHour:   18,
		Timezone:     "UTC",
	})
}

func at(hour, minute int) time.Time {
	return time.Date(2030, 6, 10, hour, minute, 0, 0, time.UTC)
}

func TestDay_ReturnsBusyPairs(t *testing.T) {
	cal := &calendarMock{
		FreeBusyFunc: func(ctx context.Context, min, max time.Time) ([]provider.BusyRange, error) {
			assert.Equal(t, at(9, 0), min)
			assert.Equal(t, at(18, 0), max)
			return []provider.BusyRange{
				{Start: at(10, 0), End: at(11, 30)},
				{Start: at(14, 0), End: at(15, 0)},
			}, nil
		},
	}
	svc := newTestService(cal)

	day, err := svc.Day(context.Background(), "2030-06-10")
	require.NoError(t, err)

	require.Len(t, day.Busy, 2)
	assert.Equal(t, Interval{Start: at(10, 0), End: at(11, 30)}, day.Busy[0])
	assert.Equal(t, Interval{Start: at(14, 0), End: at(15, 0)}, day.Busy[1])
}

func TestDay_FreeDayHasNoBusyPairs(t *testing.T) {
	cal := &calendarMock{
		FreeBusyFunc: func(ctx context.Context, min, max time.Time) ([]provider.BusyRange, error) {
			return nil, nil
		},
	}
	svc := newTestService(cal)

	day, err := svc.Day(context.Background(), "2030-06-10")
	require.NoError(t, err)
	assert.Empty(t, day.Busy)
}

func TestDay_MergesOverlappingBusyRanges(t *testing.T) {
	cal := &calendarMock{
		FreeBusyFunc: func(ctx context.Context, min, max time.Time) ([]provider.BusyRange, error) {
			return []provider.BusyRange{
				{Start: at(12, 0), End: at(14, 0)},
				{Start: at(13, 0), End: at(15, 0)},
				{Start: at(10, 0), End: at(11, 0)},
			}, nil
		},
	}
	svc := newTestService(cal)

	day, err := svc.Day(context.Background(), "2030-06-10")
	require.NoError(t, err)

	require.Len(t, day.Busy, 2)
	assert.Equal(t, Interval{Start: at(10, 0), End: at(11, 0)}, day.Busy[0])
	assert.Equal(t, Interval{Start: at(12, 0), End: at(15, 0)}, day.Busy[1])
}

func TestDay_ClipsBusyRangesToBusinessHours(t *testing.T) {
	cal := &calendarMock{
		FreeBusyFunc: func(ctx context.Context, min, max time.Time) ([]provider.BusyRange, error) {
			return []provider.BusyRange{
				{Start: at(8, 0), End: at(10, 0)},
				{Start: at(17, 0), End: at(20, 0)},
				{Start: at(6, 0), End: at(7, 0)}, // fully outside, dropped
			}, nil
		},
	}
	svc := newTestService(cal)

	day, err := svc.Day(context.Background(), "2030-06-10")
	require.NoError(t, err)

	require.Len(t, day.Busy, 2)
	assert.Equal(t, Interval{Start: at(9, 0), End: at(10, 0)}, day.Busy[0])
	assert.Equal(t, Interval{Start: at(17, 0), End: at(18, 0)}, day.Busy[1])
}

func TestDay_FullyBookedDayIsOnePair(t *testing.T) {
	cal := &calendarMock{
		FreeBusyFunc: func(ctx context.Context, min, max time.Time) ([]provider.BusyRange, error) {
			return []provider.BusyRange{{Start: at(8, 0), End: at(19, 0)}}, nil
		},
	}
	svc := newTestService(cal)

	day, err := svc.Day(context.Background(), "2030-06-10")
	require.NoError(t, err)

	require.Len(t, day.Busy, 1)
	assert.Equal(t, Interval{Start: at(9, 0), End: at(18, 0)}, day.Busy[0])
}

func TestDay_PastDateSkipsCalendar(t *testing.T) {
	cal := &calendarMock{
		FreeBusyFunc: func(ctx context.Context, min, max time.Time) ([]provider.BusyRange, error) {
			t.Fatal("calendar should not be queried for past dates")
			return nil, nil
		},
	}
	svc := newTestService(cal)

	day, err := svc.Day(context.Background(), "2020-01-15")
	require.NoError(t, err)
	assert.Empty(t, day.Busy)
	assert.Equal(t, 0, cal.calls)
}

func TestDay_BadDate(t *testing.T) {
	svc := newTestService(&calendarMock{})

	_, err := svc.Day(context.Background(), "June 10th")
	require.ErrorIs(t, err, domain.ErrValidation)
}
