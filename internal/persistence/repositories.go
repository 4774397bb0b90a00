package persistence

import (
	"context"

	"github.com/example/hyperapi/internal/timetable"
)

// GroupLessons pairs a timetable group with the lessons scraped from its
// feed during one refresh cycle.
type GroupLessons struct {
	Group   string
	Lessons []timetable.Lesson
}

// TimetableRepository owns the lesson cache.
type TimetableRepository interface {
	// ReplaceAll atomically discards the whole cache and repopulates it
	// from the given batches. Concurrent readers observe either the
	// previous or the fully rebuilt state, never an intermediate one.
	// A lesson that fails to insert is logged and skipped; it does not
	// abort the rest of the rebuild.
	ReplaceAll(ctx context.Context, batches []GroupLessons) error

	// Window returns the lessons of one group whose start falls inside the
	// half-open window, ordered by start ascending. An unknown group or an
	// empty window yields an empty slice, not an error.
	Window(ctx context.Context, group string, win timetable.Window) ([]timetable.Lesson, error)
}
