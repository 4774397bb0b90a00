package timetable

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

// Window is a half-open civil-date interval: a session whose start falls on
// From is included, one starting exactly on To is excluded.
type Window struct {
	From time.Time
	To   time.Time
}

// FromKey and ToKey render the bounds in the cache's sortable form.
func (w Window) FromKey() string { return w.From.Format(dayLayout) }
func (w Window) ToKey() string   { return w.To.Format(dayLayout) }

// DayWindow returns the window covering the civil day of t.
func DayWindow(t time.Time) Window {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Window{From: day, To: day.AddDate(0, 0, 1)}
}

// ParseDay parses a YYYY-MM-DD bound.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return t, nil
}

// WeekWindow resolves an ISO-8601 week string (YYYY-Www) to the window
// spanning its Monday through the end of its Sunday.
func WeekWindow(iso string) (Window, error) {
	year, week, err := parseISOWeek(iso)
	if err != nil {
		return Window{}, err
	}
	monday := isoWeekMonday(year, week)
	if y, w := monday.ISOWeek(); y != year || w != week {
		return Window{}, fmt.Errorf("week %q does not exist", iso)
	}
	return Window{From: monday, To: monday.AddDate(0, 0, 7)}, nil
}

func parseISOWeek(iso string) (year, week int, err error) {
	parts := strings.SplitN(iso, "-W", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("parse week %q: expected YYYY-Www", iso)
	}
	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("parse week %q: %w", iso, err)
	}
	week, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("parse week %q: %w", iso, err)
	}
	if week < 1 || week > 53 {
		return 0, 0, fmt.Errorf("parse week %q: week out of range", iso)
	}
	return year, week, nil
}

// isoWeekMonday returns the Monday of the requested ISO week. January 4th is
// always inside week 1, which anchors the calculation.
func isoWeekMonday(year, week int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := (int(jan4.Weekday()) + 6) % 7 // Monday == 0
	firstMonday := jan4.AddDate(0, 0, -weekday)
	return firstMonday.AddDate(0, 0, (week-1)*7)
}
