package feed

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

// RawEvent is one VEVENT from the feed, reduced to the fields the extractor
// consumes.
type RawEvent struct {
	Summary  string
	Location string
	Start    time.Time
	End      time.Time
	// AllDay is true for date-only events, whose hours stay unset.
	AllDay bool
}

// Fetcher downloads a group's ICS feed and decodes it into raw events.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

// NewFetcher returns a fetcher with a bounded request timeout.
func NewFetcher(logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

// Fetch retrieves the feed at url and returns its events. A non-200 response
// or an unparsable calendar is an error; an individual event without a
// summary is logged and skipped.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]RawEvent, error) {
	if url == "" {
		return nil, errors.New("feed: source URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("feed: unexpected status " + resp.Status)
	}

	cal, err := ical.ParseCalendar(resp.Body)
	if err != nil {
		return nil, err
	}

	events := make([]RawEvent, 0)
	for _, ve := range cal.Events() {
		ev, derr := decodeEvent(ve)
		if derr != nil {
			f.logger.WarnContext(ctx, "skipping feed event", "error", derr)
			continue
		}
		events = append(events, ev)
	}

	f.logger.InfoContext(ctx, "feed decoded", "event_count", len(events))
	return events, nil
}

func decodeEvent(ve *ical.VEvent) (RawEvent, error) {
	var out RawEvent

	summary := ve.GetProperty(ical.ComponentPropertySummary)
	if summary == nil || summary.Value == "" {
		return out, errors.New("event has no summary")
	}
	out.Summary = summary.Value

	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	out.AllDay = isAllDay(ve)

	var err error
	if out.AllDay {
		if out.Start, err = ve.GetAllDayStartAt(); err != nil {
			return out, err
		}
		if out.End, err = ve.GetAllDayEndAt(); err != nil {
			return out, err
		}
		return out, nil
	}

	if out.Start, err = ve.GetStartAt(); err != nil {
		return out, err
	}
	if out.End, err = ve.GetEndAt(); err != nil {
		return out, err
	}
	return out, nil
}

// isAllDay reports whether DTSTART is a date-only value, either via an
// explicit VALUE=DATE parameter or a value without a time component.
func isAllDay(ve *ical.VEvent) bool {
	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return false
	}
	if params := dtStart.ICalParameters; params != nil {
		if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			return true
		}
	}
	return !strings.Contains(dtStart.Value, "T")
}
