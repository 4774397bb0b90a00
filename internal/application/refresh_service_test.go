package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/hyperapi/internal/application"
	"github.com/example/hyperapi/internal/feed"
	"github.com/example/hyperapi/internal/persistence"
	"github.com/example/hyperapi/internal/timetable"
)

type fetcherStub struct {
	feeds map[string][]feed.RawEvent
	errs  map[string]error
}

func (f *fetcherStub) Fetch(ctx context.Context, url string) ([]feed.RawEvent, error) {
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	return f.feeds[url], nil
}

type replaceRecorder struct {
	batches []persistence.GroupLessons
	calls   int
	err     error
}

func (r *replaceRecorder) ReplaceAll(ctx context.Context, batches []persistence.GroupLessons) error {
	r.batches = batches
	r.calls++
	return r.err
}

func (r *replaceRecorder) Window(ctx context.Context, group string, win timetable.Window) ([]timetable.Lesson, error) {
	return nil, nil
}

func (r *replaceRecorder) group(name string) (persistence.GroupLessons, bool) {
	for _, b := range r.batches {
		if b.Group == name {
			return b, true
		}
	}
	return persistence.GroupLessons{}, false
}

func rawLesson(summary string) feed.RawEvent {
	return feed.RawEvent{
		Summary: summary,
		Start:   time.Date(2021, time.February, 1, 8, 0, 0, 0, time.UTC),
		End:     time.Date(2021, time.February, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestRefreshServiceRunCycle(t *testing.T) {
	ctx := context.Background()

	t.Run("extracts every event and rebuilds the cache", func(t *testing.T) {
		fetcher := &fetcherStub{feeds: map[string][]feed.RawEvent{
			"https://feeds/info1": {rawLesson("M1234 Algorithms - M. Dupont - TD")},
		}}
		repo := &replaceRecorder{}
		svc := application.NewRefreshService(
			[]application.FeedSource{{Group: "INFO1", URL: "https://feeds/info1"}},
			fetcher, repo, nil)

		if err := svc.RunCycle(ctx); err != nil {
			t.Fatalf("RunCycle: %v", err)
		}
		if repo.calls != 1 {
			t.Fatalf("ReplaceAll called %d times, want 1", repo.calls)
		}

		batch, ok := repo.group("INFO1")
		if !ok {
			t.Fatal("INFO1 missing from rebuild batch")
		}
		if len(batch.Lessons) != 1 {
			t.Fatalf("got %d lessons, want 1", len(batch.Lessons))
		}
		l := batch.Lessons[0]
		if l.CourseID != "M1234" || l.Teacher != "M. Dupont" || l.Type != "TD" {
			t.Errorf("lesson = %+v", l)
		}
	})

	t.Run("failed source keeps its previous snapshot", func(t *testing.T) {
		fetcher := &fetcherStub{feeds: map[string][]feed.RawEvent{
			"https://feeds/info1": {rawLesson("M1234 Algorithms - M. Dupont - TD")},
		}}
		repo := &replaceRecorder{}
		svc := application.NewRefreshService(
			[]application.FeedSource{{Group: "INFO1", URL: "https://feeds/info1"}},
			fetcher, repo, nil)

		if err := svc.RunCycle(ctx); err != nil {
			t.Fatalf("first RunCycle: %v", err)
		}

		fetcher.errs = map[string]error{"https://feeds/info1": errors.New("upstream down")}
		if err := svc.RunCycle(ctx); err != nil {
			t.Fatalf("second RunCycle: %v", err)
		}

		batch, ok := repo.group("INFO1")
		if !ok {
			t.Fatal("INFO1 dropped despite a previous snapshot")
		}
		if len(batch.Lessons) != 1 || batch.Lessons[0].CourseID != "M1234" {
			t.Errorf("snapshot lessons = %+v", batch.Lessons)
		}
	})

	t.Run("failed source with no snapshot is absent for the cycle", func(t *testing.T) {
		fetcher := &fetcherStub{
			feeds: map[string][]feed.RawEvent{
				"https://feeds/info2": {rawLesson("M5678 Databases - Mme Martin - TP")},
			},
			errs: map[string]error{"https://feeds/info1": errors.New("upstream down")},
		}
		repo := &replaceRecorder{}
		svc := application.NewRefreshService(
			[]application.FeedSource{
				{Group: "INFO1", URL: "https://feeds/info1"},
				{Group: "INFO2", URL: "https://feeds/info2"},
			},
			fetcher, repo, nil)

		if err := svc.RunCycle(ctx); err != nil {
			t.Fatalf("RunCycle: %v", err)
		}
		if _, ok := repo.group("INFO1"); ok {
			t.Error("INFO1 present despite a failed fetch and no snapshot")
		}
		if _, ok := repo.group("INFO2"); !ok {
			t.Error("INFO2 missing; one failed source must not abort the others")
		}
	})

	t.Run("rebuild failure is surfaced", func(t *testing.T) {
		fetcher := &fetcherStub{feeds: map[string][]feed.RawEvent{}}
		repo := &replaceRecorder{err: errors.New("database locked")}
		svc := application.NewRefreshService(nil, fetcher, repo, nil)

		if err := svc.RunCycle(ctx); err == nil {
			t.Error("RunCycle returned nil, want the rebuild error")
		}
	})
}
