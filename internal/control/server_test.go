package control

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"ainews/app"
	"ainews/domain"
)

type fakeScheduler struct {
	mu       sync.Mutex
	interval time.Duration
	busy     bool
	triggers int
	last     *domain.RunSummary
}

func (f *fakeScheduler) Trigger() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggers++
	return !f.busy
}

func (f *fakeScheduler) SetInterval(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interval = d
}

func (f *fakeScheduler) CurrentInterval() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.interval
}

func (f *fakeScheduler) Status() app.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return app.Status{
		Started:  true,
		Running:  f.busy,
		Interval: f.interval,
		NextRun:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		LastRun:  f.last,
	}
}

func newTestServer(t *testing.T, sched *fakeScheduler) *Client {
	t.Helper()
	srv := httptest.NewServer(NewServer(sched, nil))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestCrawlEndpoint(t *testing.T) {
	sched := &fakeScheduler{interval: time.Hour}
	srv := httptest.NewServer(NewServer(sched, nil))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/crawl", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	client := NewClient(srv.URL)
	started, err := client.Crawl(context.Background())
	if err != nil || !started {
		t.Fatalf("crawl = %v, %v", started, err)
	}

	sched.mu.Lock()
	sched.busy = true
	sched.mu.Unlock()
	started, err = client.Crawl(context.Background())
	if err != nil || started {
		t.Fatalf("crawl while busy = %v, %v", started, err)
	}
	if sched.triggers != 3 {
		t.Fatalf("triggers = %d", sched.triggers)
	}
}

func TestSetIntervalEndpoint(t *testing.T) {
	sched := &fakeScheduler{interval: 12 * time.Hour}
	client := newTestServer(t, sched)

	old, err := client.SetInterval(context.Background(), 6*time.Hour)
	if err != nil {
		t.Fatalf("set interval: %v", err)
	}
	if old != 12*time.Hour || sched.CurrentInterval() != 6*time.Hour {
		t.Fatalf("old = %v, current = %v", old, sched.CurrentInterval())
	}

	if _, err := client.SetInterval(context.Background(), -time.Hour); err == nil {
		t.Fatal("negative interval accepted")
	}
	if sched.CurrentInterval() != 6*time.Hour {
		t.Fatal("rejected interval was applied")
	}
}

func TestSetIntervalRejectsGarbage(t *testing.T) {
	srv := httptest.NewServer(NewServer(&fakeScheduler{}, nil))
	defer srv.Close()

	for _, body := range []string{"not json", `{"duration":"soon"}`} {
		resp, err := http.Post(srv.URL+"/set-interval", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, resp.StatusCode)
		}
	}
}

func TestStatusEndpoint(t *testing.T) {
	sched := &fakeScheduler{interval: 12 * time.Hour, last: &domain.RunSummary{
		ID:      "abc",
		Trigger: app.TriggerSchedule,
		Sources: []domain.SourceResult{
			{Name: "Hacker News", Fetched: 3, Created: 2, Skipped: 1},
			{Name: "Reddit r/openai", Err: context.DeadlineExceeded},
		},
	}}
	client := newTestServer(t, sched)

	st, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !st.Started || st.Running || st.Interval != "12h0m0s" {
		t.Fatalf("status = %+v", st)
	}
	if st.NextRun == nil || st.NextRun.Hour() != 12 {
		t.Fatalf("next run = %v", st.NextRun)
	}
	if st.LastRun == nil || st.LastRun.ID != "abc" || st.LastRun.Created != 2 || st.LastRun.Fetched != 3 {
		t.Fatalf("last run = %+v", st.LastRun)
	}
	if len(st.LastRun.Failed) != 1 || st.LastRun.Failed[0] != "Reddit r/openai" {
		t.Fatalf("failed = %v", st.LastRun.Failed)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := httptest.NewServer(NewServer(&fakeScheduler{}, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/set-workers")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestTryListenDetectsRunningInstance(t *testing.T) {
	ln, err := TryListen("127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	if _, err := TryListen(ln.Addr().String()); err != ErrAlreadyRunning {
		t.Fatalf("err = %v, want ErrAlreadyRunning", err)
	}
}
