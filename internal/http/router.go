package http

import (
	"net/http"
	"strings"
)

// RouterConfig wires the handlers and middleware chain.
type RouterConfig struct {
	Timetable  *TimetableHandler
	Middleware []func(http.Handler) http.Handler
}

// NewRouter assembles the HTTP surface:
//
//	GET /                         welcome text
//	GET /healthz                  liveness probe
//	GET /api/s2/{group}/{period}[/{bounds}]  lesson query
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("HyperPlanning timetable API\n"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.Timetable != nil {
		mux.HandleFunc("/api/s2/", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/s2/"), "/")
			parts := strings.Split(rest, "/")
			if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
				http.NotFound(w, r)
				return
			}
			bounds := ""
			if len(parts) == 3 {
				bounds = parts[2]
			}
			cfg.Timetable.Lessons(w, r, parts[0], parts[1], bounds)
		})
	}

	handler := http.Handler(mux)
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		handler = cfg.Middleware[i](handler)
	}
	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
