package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/hyperapi/internal/application"
	internalhttp "github.com/example/hyperapi/internal/http"
	"github.com/example/hyperapi/internal/timetable"
)

type lessonProviderStub struct {
	lessons []timetable.JSON
	err     error

	group, period, bounds string
}

func (s *lessonProviderStub) Lessons(ctx context.Context, group, period, bounds string) ([]timetable.JSON, error) {
	s.group, s.period, s.bounds = group, period, bounds
	if s.err != nil {
		return nil, s.err
	}
	return s.lessons, nil
}

func newTestRouter(provider *lessonProviderStub, middleware ...func(stdhttp.Handler) stdhttp.Handler) stdhttp.Handler {
	return internalhttp.NewRouter(internalhttp.RouterConfig{
		Timetable:  internalhttp.NewTimetableHandler(provider, nil),
		Middleware: middleware,
	})
}

func doRequest(t *testing.T, h stdhttp.Handler, method, target string) *stdhttp.Response {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec.Result()
}

func TestTimetableRoutes(t *testing.T) {
	t.Run("serves the lesson array as JSON", func(t *testing.T) {
		provider := &lessonProviderStub{lessons: []timetable.JSON{{
			StartDate:  "2021-02-01",
			StartHour:  "10h00",
			EndHour:    "12h00",
			CourseID:   "M1234",
			CourseName: "Algorithms",
			Teacher:    "M. Dupont",
			Type:       "TD",
			Room:       "B201",
		}}}
		res := doRequest(t, newTestRouter(provider), stdhttp.MethodGet, "/api/s2/INFO1/day/2021-02-01")

		if res.StatusCode != stdhttp.StatusOK {
			t.Fatalf("status = %d, want 200", res.StatusCode)
		}
		if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Errorf("Content-Type = %q", ct)
		}
		if provider.group != "INFO1" || provider.period != "day" || provider.bounds != "2021-02-01" {
			t.Errorf("provider saw %q/%q/%q", provider.group, provider.period, provider.bounds)
		}

		var rows []map[string]string
		if err := json.NewDecoder(res.Body).Decode(&rows); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("got %d rows, want 1", len(rows))
		}
		if rows[0]["idMatiere"] != "M1234" || rows[0]["nomProf"] != "M. Dupont" {
			t.Errorf("row = %v", rows[0])
		}
	})

	t.Run("two segment path omits bounds", func(t *testing.T) {
		provider := &lessonProviderStub{lessons: []timetable.JSON{}}
		res := doRequest(t, newTestRouter(provider), stdhttp.MethodGet, "/api/s2/INFO1/today")

		if res.StatusCode != stdhttp.StatusOK {
			t.Fatalf("status = %d, want 200", res.StatusCode)
		}
		if provider.period != "today" || provider.bounds != "" {
			t.Errorf("provider saw period %q bounds %q", provider.period, provider.bounds)
		}
	})

	t.Run("empty result encodes as an empty array", func(t *testing.T) {
		provider := &lessonProviderStub{lessons: []timetable.JSON{}}
		res := doRequest(t, newTestRouter(provider), stdhttp.MethodGet, "/api/s2/INFO1/today")

		body, _ := io.ReadAll(res.Body)
		if got := strings.TrimSpace(string(body)); got != "[]" {
			t.Errorf("body = %q, want []", got)
		}
	})

	t.Run("invalid period answers the historical error text", func(t *testing.T) {
		provider := &lessonProviderStub{err: application.ErrInvalidPeriod}
		res := doRequest(t, newTestRouter(provider), stdhttp.MethodGet, "/api/s2/INFO1/month")

		if res.StatusCode != stdhttp.StatusBadRequest {
			t.Fatalf("status = %d, want 400", res.StatusCode)
		}
		body, _ := io.ReadAll(res.Body)
		if got := strings.TrimSpace(string(body)); got != "Error while parsing request, check request syntax" {
			t.Errorf("body = %q", got)
		}
	})

	t.Run("invalid bounds answers the historical error text", func(t *testing.T) {
		provider := &lessonProviderStub{err: application.ErrInvalidBounds}
		res := doRequest(t, newTestRouter(provider), stdhttp.MethodGet, "/api/s2/INFO1/week/2021-99")

		if res.StatusCode != stdhttp.StatusBadRequest {
			t.Errorf("status = %d, want 400", res.StatusCode)
		}
	})

	t.Run("service failures answer 500", func(t *testing.T) {
		provider := &lessonProviderStub{err: errors.New("database gone")}
		res := doRequest(t, newTestRouter(provider), stdhttp.MethodGet, "/api/s2/INFO1/today")

		if res.StatusCode != stdhttp.StatusInternalServerError {
			t.Errorf("status = %d, want 500", res.StatusCode)
		}
	})

	t.Run("wrong arity is not found", func(t *testing.T) {
		provider := &lessonProviderStub{}
		for _, target := range []string{
			"/api/s2/INFO1",
			"/api/s2/INFO1/day/2021-02-01/extra",
		} {
			res := doRequest(t, newTestRouter(provider), stdhttp.MethodGet, target)
			if res.StatusCode != stdhttp.StatusNotFound {
				t.Errorf("%s: status = %d, want 404", target, res.StatusCode)
			}
		}
	})

	t.Run("only GET is served", func(t *testing.T) {
		provider := &lessonProviderStub{}
		res := doRequest(t, newTestRouter(provider), stdhttp.MethodPost, "/api/s2/INFO1/today")

		if res.StatusCode != stdhttp.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", res.StatusCode)
		}
	})
}

func TestServiceRoutes(t *testing.T) {
	t.Run("welcome", func(t *testing.T) {
		res := doRequest(t, newTestRouter(&lessonProviderStub{}), stdhttp.MethodGet, "/")
		if res.StatusCode != stdhttp.StatusOK {
			t.Fatalf("status = %d, want 200", res.StatusCode)
		}
		body, _ := io.ReadAll(res.Body)
		if !strings.Contains(string(body), "timetable") {
			t.Errorf("body = %q", body)
		}
	})

	t.Run("healthz", func(t *testing.T) {
		res := doRequest(t, newTestRouter(&lessonProviderStub{}), stdhttp.MethodGet, "/healthz")
		if res.StatusCode != stdhttp.StatusOK {
			t.Errorf("status = %d, want 200", res.StatusCode)
		}
	})

	t.Run("unknown path", func(t *testing.T) {
		res := doRequest(t, newTestRouter(&lessonProviderStub{}), stdhttp.MethodGet, "/nope")
		if res.StatusCode != stdhttp.StatusNotFound {
			t.Errorf("status = %d, want 404", res.StatusCode)
		}
	})
}

func TestCORSMiddleware(t *testing.T) {
	router := newTestRouter(&lessonProviderStub{lessons: []timetable.JSON{}}, internalhttp.CORS())

	t.Run("annotates responses", func(t *testing.T) {
		res := doRequest(t, router, stdhttp.MethodGet, "/api/s2/INFO1/today")
		if got := res.Header.Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
		}
	})

	t.Run("answers preflight directly", func(t *testing.T) {
		res := doRequest(t, router, stdhttp.MethodOptions, "/api/s2/INFO1/today")
		if res.StatusCode != stdhttp.StatusNoContent {
			t.Errorf("status = %d, want 204", res.StatusCode)
		}
	})
}

func TestBasicAuthMiddleware(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	router := newTestRouter(
		&lessonProviderStub{lessons: []timetable.JSON{}},
		internalhttp.BasicAuth("admin", string(hash), nil),
	)

	authed := func(user, pass string) *stdhttp.Response {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(stdhttp.MethodGet, "/api/s2/INFO1/today", nil)
		req.SetBasicAuth(user, pass)
		router.ServeHTTP(rec, req)
		return rec.Result()
	}

	t.Run("missing credentials are challenged", func(t *testing.T) {
		res := doRequest(t, router, stdhttp.MethodGet, "/api/s2/INFO1/today")
		if res.StatusCode != stdhttp.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", res.StatusCode)
		}
		if got := res.Header.Get("WWW-Authenticate"); !strings.HasPrefix(got, "Basic") {
			t.Errorf("WWW-Authenticate = %q", got)
		}
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		if res := authed("admin", "wrong"); res.StatusCode != stdhttp.StatusUnauthorized {
			t.Errorf("status = %d, want 401", res.StatusCode)
		}
	})

	t.Run("wrong username is rejected", func(t *testing.T) {
		if res := authed("root", "s3cret"); res.StatusCode != stdhttp.StatusUnauthorized {
			t.Errorf("status = %d, want 401", res.StatusCode)
		}
	})

	t.Run("valid credentials pass", func(t *testing.T) {
		if res := authed("admin", "s3cret"); res.StatusCode != stdhttp.StatusOK {
			t.Errorf("status = %d, want 200", res.StatusCode)
		}
	})

	t.Run("liveness probe bypasses authentication", func(t *testing.T) {
		if res := doRequest(t, router, stdhttp.MethodGet, "/healthz"); res.StatusCode != stdhttp.StatusOK {
			t.Errorf("status = %d, want 200", res.StatusCode)
		}
	})
}
