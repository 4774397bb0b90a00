package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/hyperapi/internal/application"
	"github.com/example/hyperapi/internal/timetable"
)

// LessonProvider is the query surface the handler depends on. Satisfied by
// application.TimetableService.
type LessonProvider interface {
	Lessons(ctx context.Context, group, period, bounds string) ([]timetable.JSON, error)
}

// TimetableHandler serves the lesson query API.
type TimetableHandler struct {
	service   LessonProvider
	responder responder
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(service LessonProvider, logger *slog.Logger) *TimetableHandler {
	return &TimetableHandler{service: service, responder: newResponder(logger)}
}

// Lessons answers one query. Invalid period or bounds yield the historical
// plain-text error string; everything else is a JSON array, empty included.
func (h *TimetableHandler) Lessons(w http.ResponseWriter, r *http.Request, group, period, bounds string) {
	ctx := r.Context()

	lessons, err := h.service.Lessons(ctx, group, period, bounds)
	if err != nil {
		if errors.Is(err, application.ErrInvalidPeriod) || errors.Is(err, application.ErrInvalidBounds) {
			h.responder.writeText(ctx, w, http.StatusBadRequest, requestSyntaxError)
			return
		}
		h.responder.writeText(ctx, w, http.StatusInternalServerError, "internal error")
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, lessons)
}
