// Package hackernews pulls stories from the Hacker News Algolia search API.
package hackernews

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ainews/domain"
)

// SourceLabel is stored as the source of every Hacker News item.
const SourceLabel = "Hacker News"

// Options configures the search request.
type Options struct {
	BaseURL     string
	Query       string
	HitsPerPage int
	Timeout     time.Duration
	UserAgent   string
}

// Source implements domain.Source for the Algolia search endpoint.
type Source struct {
	opts    Options
	client  *http.Client
	fetcher domain.MetadataFetcher
	now     func() time.Time
}

// New builds the adapter. fetcher may be nil to disable enrichment.
func New(opts Options, fetcher domain.MetadataFetcher) *Source {
	return &Source{
		opts:    opts,
		client:  &http.Client{Timeout: opts.Timeout},
		fetcher: fetcher,
		now:     time.Now,
	}
}

func (s *Source) Name() string { return SourceLabel }

type searchResponse struct {
	Hits []hit `json:"hits"`
}

type hit struct {
	URL       string   `json:"url"`
	Title     string   `json:"title"`
	CreatedAt string   `json:"created_at"`
	Points    *int     `json:"points"`
	Tags      []string `json:"_tags"`
}

// FetchCandidates issues one search request and maps every identifiable hit.
func (s *Source) FetchCandidates(ctx context.Context) ([]domain.Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.searchURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("build hacker news request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.opts.UserAgent != "" {
		req.Header.Set("User-Agent", s.opts.UserAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch hacker news: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch hacker news: status %s", resp.Status)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode hacker news response: %w", err)
	}

	out := make([]domain.Candidate, 0, len(body.Hits))
	for _, h := range body.Hits {
		if c, ok := s.candidate(h); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Source) candidate(h hit) (domain.Candidate, bool) {
	link := strings.TrimSpace(h.URL)
	title := strings.TrimSpace(h.Title)
	if link == "" || title == "" {
		return domain.Candidate{}, false
	}

	published, err := time.Parse(time.RFC3339, h.CreatedAt)
	if err != nil {
		published = s.now()
	}
	score := 0
	if h.Points != nil {
		score = *h.Points
	}
	tags := h.Tags
	if tags == nil {
		tags = []string{}
	}

	return domain.Candidate{
		Title:       title,
		URL:         link,
		Source:      SourceLabel,
		PublishedAt: published.UTC(),
		Score:       score,
		Tags:        tags,
	}, true
}

// Enrich takes both image and description from the page when no image is set.
// Hacker News hits never carry either.
func (s *Source) Enrich(ctx context.Context, c *domain.Candidate) {
	if s.fetcher == nil || c.ImageURL != "" {
		return
	}
	md := s.fetcher.Fetch(ctx, c.URL)
	c.ImageURL = md.ImageURL
	if md.Description != "" {
		c.Summary = md.Description
	}
}

func (s *Source) searchURL() string {
	q := url.Values{}
	q.Set("query", s.opts.Query)
	q.Set("tags", "story")
	q.Set("hitsPerPage", strconv.Itoa(s.opts.HitsPerPage))
	return strings.TrimRight(s.opts.BaseURL, "/") + "/search_by_date?" + q.Encode()
}
