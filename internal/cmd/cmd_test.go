package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"ainews/adapter/hackernews"
	"ainews/app"
	"ainews/domain"
	"ainews/internal/config"
	"ainews/internal/control"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// newFixture serves one Hacker News hit whose article page carries an image.
func newFixture(t *testing.T) (configPath, dir string) {
	t.Helper()
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><meta property="og:image" content="https://img.example/p.png"><meta name="description" content="about agents"></head></html>`)
	}))
	t.Cleanup(page.Close)

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"hits":[{"url":%q,"title":"Agents are here","created_at":"2024-05-01T12:00:00Z","points":7,"_tags":["story"]}]}`, page.URL+"/post")
	}))
	t.Cleanup(api.Close)

	dir = t.TempDir()
	configPath = filepath.Join(dir, "ainews.toml")
	content := fmt.Sprintf(`lock_path = %q

[hackernews]
base_url = %q

[reddit]
enabled = false

[store]
sqlite_path = %q

[logging]
level = "error"
`, filepath.Join(dir, "run.lock"), api.URL, filepath.Join(dir, "news.db"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath, dir
}

func TestCrawlThenList(t *testing.T) {
	cfgPath, _ := newFixture(t)

	out, err := runCLI(t, "crawl", "--config", cfgPath)
	if err != nil {
		t.Fatalf("crawl: %v\n%s", err, out)
	}
	if !strings.Contains(out, hackernews.SourceLabel) || !strings.Contains(out, "0 failed") {
		t.Fatalf("crawl output:\n%s", out)
	}

	out, err = runCLI(t, "list", "-c", cfgPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Agents are here") || !strings.Contains(out, "yes") {
		t.Fatalf("list output:\n%s", out)
	}

	out, err = runCLI(t, "list", "-c", cfgPath, "--source", "Reddit r/openai")
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if !strings.Contains(out, "No items stored yet") {
		t.Fatalf("filtered list output:\n%s", out)
	}
}

func TestCrawlRefusesWhenLocked(t *testing.T) {
	cfgPath, dir := newFixture(t)
	held := flock.New(filepath.Join(dir, "run.lock"))
	if ok, err := held.TryLock(); err != nil || !ok {
		t.Fatalf("hold lock: %v %v", ok, err)
	}
	defer held.Unlock()

	if _, err := runCLI(t, "crawl", "-c", cfgPath); !errors.Is(err, errCrawlInProgress) {
		t.Fatalf("err = %v, want errCrawlInProgress", err)
	}
}

func TestConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "ainews.toml")

	out, err := runCLI(t, "config", "init", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("output = %q", out)
	}
	if _, err := config.Load(target); err != nil {
		t.Fatalf("sample does not load: %v", err)
	}
	if _, err := runCLI(t, "config", "init", target); err == nil {
		t.Fatal("existing file overwritten without --overwrite")
	}
	if _, err := runCLI(t, "config", "init", target, "--overwrite"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestInvalidConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[schedule]\ninterval = \"soon\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "list", "-c", path); !errors.Is(err, config.ErrInvalidInterval) {
		t.Fatalf("err = %v, want ErrInvalidInterval", err)
	}
}

type noopRunner struct{}

func (noopRunner) Run(_ context.Context, trigger string) domain.RunSummary {
	return domain.RunSummary{ID: "r1", Trigger: trigger}
}

func TestDaemonCommands(t *testing.T) {
	sched := app.NewScheduler(noopRunner{}, 12*time.Hour)
	if err := sched.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer sched.Stop()
	srv := httptest.NewServer(control.NewServer(sched, nil))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "ainews.yaml")
	if err := os.WriteFile(path, []byte(fmt.Sprintf("control:\n  addr: %q\n", srv.URL)), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "set-interval", "6h", "-c", path)
	if err != nil {
		t.Fatalf("set-interval: %v", err)
	}
	if !strings.Contains(out, "from 12h0m0s to 6h0m0s") {
		t.Fatalf("set-interval output = %q", out)
	}

	if _, err := runCLI(t, "trigger", "-c", path); err != nil {
		t.Fatalf("trigger: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for sched.Status().LastRun == nil && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	out, err = runCLI(t, "status", "-c", path)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Interval: 6h0m0s") || !strings.Contains(out, "r1 (manual)") {
		t.Fatalf("status output:\n%s", out)
	}

	if _, err := runCLI(t, "set-interval", "later", "-c", path); err == nil {
		t.Fatal("bad duration accepted")
	}
}

func TestBuildSourcesOrder(t *testing.T) {
	cfg := config.Default()
	cfg.Feeds = []config.Feed{{Name: "The Batch", URL: "https://example.com/feed.xml"}}

	var names []string
	for _, s := range buildSources(&cfg, nil) {
		names = append(names, s.Name())
	}
	want := []string{"Hacker News", "Reddit r/LocalLLaMA", "Reddit r/ArtificialInteligence", "Reddit r/openai", "The Batch"}
	if strings.Join(names, "|") != strings.Join(want, "|") {
		t.Fatalf("sources = %v, want %v", names, want)
	}

	cfg.HackerNews.Enabled = false
	cfg.Reddit.Enabled = false
	if got := buildSources(&cfg, nil); len(got) != 1 {
		t.Fatalf("got %d sources, want 1", len(got))
	}
}

func TestTruncateCountsWideRunes(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("日本語のニュースタイトル", 10); len([]rune(got)) > 5 {
		t.Fatalf("truncate = %q exceeds width", got)
	}
}

func TestRenderSummaryKeepsFooterCase(t *testing.T) {
	out := renderSummary(domain.RunSummary{
		ID:      "r1",
		Sources: []domain.SourceResult{{Name: "Hacker News", Fetched: 2, Created: 1, Skipped: 1}},
	}, false)
	if !strings.Contains(out, "Total") || !strings.Contains(out, "0 failed") {
		t.Fatalf("footer case not preserved:\n%s", out)
	}
}
