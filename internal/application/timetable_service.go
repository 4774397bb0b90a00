package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/hyperapi/internal/logging"
	"github.com/example/hyperapi/internal/persistence"
	"github.com/example/hyperapi/internal/timetable"
)

// TimetableService answers lesson queries by translating a period request
// into a cache window.
type TimetableService struct {
	repo persistence.TimetableRepository
	// clockOffset shifts the wall clock before resolving "today", matching
	// the civil time the feed is displayed in.
	clockOffset time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

// NewTimetableService constructs the query service. A nil now defaults to
// time.Now.
func NewTimetableService(repo persistence.TimetableRepository, clockOffset time.Duration, now func() time.Time, logger *slog.Logger) *TimetableService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &TimetableService{repo: repo, clockOffset: clockOffset, now: now, logger: logger}
}

// Lessons resolves the period request to a window, queries the cache and
// returns the serializable lesson rows. The bounds argument is ignored for
// "today", a YYYY-MM-DD date for "day" and an ISO YYYY-Www string for
// "week".
func (s *TimetableService) Lessons(ctx context.Context, group, period, bounds string) ([]timetable.JSON, error) {
	logger := logging.Or(ctx, s.logger)

	var (
		win timetable.Window
		err error
	)
	switch period {
	case "today":
		win = timetable.DayWindow(s.now().UTC().Add(s.clockOffset))
	case "day":
		var day time.Time
		day, err = timetable.ParseDay(bounds)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBounds, err)
		}
		win = timetable.DayWindow(day)
	case "week":
		win, err = timetable.WeekWindow(bounds)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBounds, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	lessons, err := s.repo.Window(ctx, group, win)
	if err != nil {
		logger.ErrorContext(ctx, "window query failed", "group", group, "error", err)
		return nil, err
	}

	out := make([]timetable.JSON, 0, len(lessons))
	for _, lesson := range lessons {
		out = append(out, lesson.ToJSON())
	}

	logger.InfoContext(ctx, "lessons served",
		"group", group, "period", period,
		"from", win.FromKey(), "to", win.ToKey(),
		"count", len(out))
	return out, nil
}
