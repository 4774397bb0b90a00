package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/hyperapi/internal/logging"
)

// requestSyntaxError is the historical plain-text response for a malformed
// period request. Callers distinguish it from the JSON array by shape.
const requestSyntaxError = "Error while parsing request, check request syntax"

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Or(ctx, r.logger).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeText(ctx context.Context, w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(message)); err != nil {
		logging.Or(ctx, r.logger).ErrorContext(ctx, "failed to write response", "error", err)
	}
}
