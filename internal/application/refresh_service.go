package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/hyperapi/internal/feed"
	"github.com/example/hyperapi/internal/logging"
	"github.com/example/hyperapi/internal/persistence"
	"github.com/example/hyperapi/internal/timetable"
)

// FeedSource names one group's calendar feed.
type FeedSource struct {
	Group string
	URL   string
}

// Fetcher retrieves and decodes a feed. Satisfied by feed.Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]feed.RawEvent, error)
}

// RefreshService drives one full fetch→extract→rebuild cycle over every
// configured feed source. It is called from a single scheduler goroutine;
// there are no concurrent writers.
type RefreshService struct {
	sources []FeedSource
	fetcher Fetcher
	repo    persistence.TimetableRepository
	logger  *slog.Logger

	// lastGood retains the previous successful scrape per group so a
	// transient transport failure does not evict that group from the
	// rebuilt cache.
	lastGood map[string][]timetable.Lesson
}

// NewRefreshService constructs the refresh pipeline.
func NewRefreshService(sources []FeedSource, fetcher Fetcher, repo persistence.TimetableRepository, logger *slog.Logger) *RefreshService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &RefreshService{
		sources:  sources,
		fetcher:  fetcher,
		repo:     repo,
		logger:   logger,
		lastGood: make(map[string][]timetable.Lesson),
	}
}

// RunCycle scrapes every source and rebuilds the cache in one atomic
// replacement. A failing source is logged and either served from its last
// successful snapshot or left absent for the cycle; it never aborts the
// other groups.
func (s *RefreshService) RunCycle(ctx context.Context) error {
	logger := logging.Or(ctx, s.logger)

	batches := make([]persistence.GroupLessons, 0, len(s.sources))
	for _, src := range s.sources {
		events, err := s.fetcher.Fetch(ctx, src.URL)
		if err != nil {
			if previous, ok := s.lastGood[src.Group]; ok {
				logger.WarnContext(ctx, "feed fetch failed, reusing previous snapshot",
					"group", src.Group, "error", err)
				batches = append(batches, persistence.GroupLessons{Group: src.Group, Lessons: previous})
			} else {
				logger.ErrorContext(ctx, "feed fetch failed, group absent this cycle",
					"group", src.Group, "error", err)
			}
			continue
		}

		lessons := make([]timetable.Lesson, 0, len(events))
		for _, ev := range events {
			lessons = append(lessons, feed.Extract(ev))
		}
		s.lastGood[src.Group] = lessons
		batches = append(batches, persistence.GroupLessons{Group: src.Group, Lessons: lessons})

		logger.InfoContext(ctx, "feed scraped", "group", src.Group, "lessons", len(lessons))
	}

	if err := s.repo.ReplaceAll(ctx, batches); err != nil {
		return fmt.Errorf("rebuild cache: %w", err)
	}

	logger.InfoContext(ctx, "cache rebuilt", "groups", len(batches))
	return nil
}
