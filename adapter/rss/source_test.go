package rss_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ainews/adapter/rss"
	"ainews/domain"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Example</title>
  <link>https://example.com</link>
  <description>d</description>
  <item>
    <title>With enclosure</title>
    <link>https://example.com/a</link>
    <description>&lt;p&gt;Hello &lt;b&gt;world&lt;/b&gt;&lt;/p&gt;</description>
    <pubDate>Mon, 01 Jan 2024 10:00:00 +0000</pubDate>
    <category>ml</category>
    <category> </category>
    <enclosure url="https://example.com/a.jpg" length="10" type="image/jpeg"/>
  </item>
  <item>
    <title>No link</title>
    <description>skipped</description>
  </item>
  <item>
    <title>Plain</title>
    <link>https://example.com/b</link>
  </item>
</channel>
</rss>`

type stubFetcher struct{ calls int }

func (s *stubFetcher) Fetch(context.Context, string) domain.Metadata {
	s.calls++
	return domain.Metadata{ImageURL: "https://example.com/og.png", Description: "og"}
}

func TestFetchCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feedXML))
	}))
	defer srv.Close()

	src := rss.New(rss.Options{Name: "Example Blog", URL: srv.URL, Timeout: time.Second, UserAgent: "ua"}, nil)
	if src.Name() != "Example Blog" {
		t.Fatalf("unexpected name %q", src.Name())
	}
	items, err := src.FetchCandidates(context.Background())
	if err != nil {
		t.Fatalf("FetchCandidates: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d: %+v", len(items), items)
	}

	a := items[0]
	if a.URL != "https://example.com/a" || a.Source != "Example Blog" || a.Score != 0 {
		t.Fatalf("unexpected item %+v", a)
	}
	if a.ImageURL != "https://example.com/a.jpg" {
		t.Fatalf("expected enclosure image, got %q", a.ImageURL)
	}
	if a.Summary != "Hello world" {
		t.Fatalf("expected stripped summary, got %q", a.Summary)
	}
	if len(a.Tags) != 1 || a.Tags[0] != "ml" {
		t.Fatalf("unexpected tags %v", a.Tags)
	}
	if !a.PublishedAt.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected published %s", a.PublishedAt)
	}

	b := items[1]
	if b.ImageURL != "" || b.Summary != "" {
		t.Fatalf("plain item should have no metadata yet: %+v", b)
	}
}

func TestFetchCandidatesRejectsGarbage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("definitely not a feed"))
	}))
	defer srv.Close()

	src := rss.New(rss.Options{Name: "bad", URL: srv.URL, Timeout: time.Second}, nil)
	if _, err := src.FetchCandidates(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnrich(t *testing.T) {
	f := &stubFetcher{}
	src := rss.New(rss.Options{Name: "x"}, f)

	c := domain.Candidate{URL: "https://example.com/b", Summary: "from feed"}
	src.Enrich(context.Background(), &c)
	if c.ImageURL != "https://example.com/og.png" || c.Summary != "from feed" {
		t.Fatalf("unexpected enrichment %+v", c)
	}

	imaged := domain.Candidate{URL: "https://example.com/a", ImageURL: "https://example.com/a.jpg"}
	src.Enrich(context.Background(), &imaged)
	if f.calls != 1 {
		t.Fatalf("expected one fetch, got %d", f.calls)
	}
}
