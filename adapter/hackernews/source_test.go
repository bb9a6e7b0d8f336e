package hackernews_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ainews/adapter/hackernews"
	"ainews/domain"
)

type stubFetcher struct {
	md    domain.Metadata
	calls []string
}

func (s *stubFetcher) Fetch(_ context.Context, url string) domain.Metadata {
	s.calls = append(s.calls, url)
	return s.md
}

const searchBody = `{"hits":[
 {"url":"http://a.com/x","title":"T","created_at":"2024-01-01T00:00:00Z","points":5,"_tags":["ai"]},
 {"url":"","title":"Ask HN: no link","created_at":"2024-01-01T00:00:00Z","points":9,"_tags":["story","ask_hn"]},
 {"title":"missing url","created_at":"2024-01-01T00:00:00Z"},
 {"url":"http://c.com/z","title":"No points","created_at":"garbage","points":null}
]}`

func newServer(t *testing.T, status int, body string, check func(*http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchCandidatesMapsHits(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	srv := newServer(t, http.StatusOK, searchBody, func(r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
	})

	src := hackernews.New(hackernews.Options{
		BaseURL:     srv.URL + "/api/v1/",
		Query:       "AI",
		HitsPerPage: 20,
		Timeout:     time.Second,
	}, nil)

	items, err := src.FetchCandidates(context.Background())
	if err != nil {
		t.Fatalf("FetchCandidates: %v", err)
	}
	if gotPath != "/api/v1/search_by_date" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotQuery["query"][0] != "AI" || gotQuery["tags"][0] != "story" || gotQuery["hitsPerPage"][0] != "20" {
		t.Fatalf("unexpected query %v", gotQuery)
	}

	if len(items) != 2 {
		t.Fatalf("expected hits without url to be skipped, got %d items: %+v", len(items), items)
	}

	first := items[0]
	if first.URL != "http://a.com/x" || first.Title != "T" || first.Score != 5 {
		t.Fatalf("unexpected first candidate %+v", first)
	}
	if first.Source != "Hacker News" {
		t.Fatalf("unexpected source %q", first.Source)
	}
	if !first.PublishedAt.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected published time %s", first.PublishedAt)
	}
	if len(first.Tags) != 1 || first.Tags[0] != "ai" {
		t.Fatalf("tags should be verbatim, got %v", first.Tags)
	}
	if first.ImageURL != "" || first.Summary != "" {
		t.Fatalf("candidates should not be enriched during fetch: %+v", first)
	}

	second := items[1]
	if second.Score != 0 {
		t.Fatalf("null points should map to 0, got %d", second.Score)
	}
	if second.PublishedAt.IsZero() {
		t.Fatal("unparsable created_at should fall back to now")
	}
	if second.Tags == nil {
		t.Fatal("tags should be empty, not nil")
	}
}

func TestFetchCandidatesStatusError(t *testing.T) {
	srv := newServer(t, http.StatusServiceUnavailable, "", nil)
	src := hackernews.New(hackernews.Options{BaseURL: srv.URL, Query: "AI", HitsPerPage: 20, Timeout: time.Second}, nil)
	if _, err := src.FetchCandidates(context.Background()); err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestFetchCandidatesBadJSON(t *testing.T) {
	srv := newServer(t, http.StatusOK, "{not json", nil)
	src := hackernews.New(hackernews.Options{BaseURL: srv.URL, Query: "AI", HitsPerPage: 20, Timeout: time.Second}, nil)
	if _, err := src.FetchCandidates(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestEnrichUsesMetadataFetcher(t *testing.T) {
	fetcher := &stubFetcher{md: domain.Metadata{ImageURL: "https://img/x.png", Description: "desc"}}
	src := hackernews.New(hackernews.Options{}, fetcher)

	c := domain.Candidate{URL: "http://a.com/x"}
	src.Enrich(context.Background(), &c)
	if c.ImageURL != "https://img/x.png" || c.Summary != "desc" {
		t.Fatalf("unexpected enrichment %+v", c)
	}
	if len(fetcher.calls) != 1 || fetcher.calls[0] != "http://a.com/x" {
		t.Fatalf("unexpected fetcher calls %v", fetcher.calls)
	}

	already := domain.Candidate{URL: "http://a.com/y", ImageURL: "https://img/y.png"}
	src.Enrich(context.Background(), &already)
	if len(fetcher.calls) != 1 {
		t.Fatal("candidate with an image should not trigger a fetch")
	}
}
