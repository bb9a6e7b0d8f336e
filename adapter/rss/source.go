// Package rss ingests items from plain RSS, Atom and JSON feeds.
package rss

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"ainews/domain"
	"ainews/internal/helper"
)

// Options configures one feed.
type Options struct {
	Name      string
	URL       string
	Timeout   time.Duration
	UserAgent string
}

// Source implements domain.Source for a single feed URL.
type Source struct {
	opts    Options
	client  *http.Client
	parser  *gofeed.Parser
	fetcher domain.MetadataFetcher
	now     func() time.Time
}

// New builds the adapter. fetcher may be nil to disable the page fallback.
func New(opts Options, fetcher domain.MetadataFetcher) *Source {
	return &Source{
		opts:    opts,
		client:  &http.Client{Timeout: opts.Timeout},
		parser:  gofeed.NewParser(),
		fetcher: fetcher,
		now:     time.Now,
	}
}

func (s *Source) Name() string { return s.opts.Name }

func (s *Source) FetchCandidates(ctx context.Context) ([]domain.Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("User-Agent", s.opts.UserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.1")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", s.opts.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch feed %s: status %s", s.opts.Name, resp.Status)
	}

	feed, err := s.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", s.opts.Name, err)
	}

	out := make([]domain.Candidate, 0, len(feed.Items))
	for _, it := range feed.Items {
		if c, ok := s.candidate(it); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Source) candidate(it *gofeed.Item) (domain.Candidate, bool) {
	if it == nil {
		return domain.Candidate{}, false
	}
	link := strings.TrimSpace(it.Link)
	title := strings.TrimSpace(it.Title)
	if link == "" || title == "" {
		return domain.Candidate{}, false
	}

	published := s.now()
	if it.PublishedParsed != nil {
		published = *it.PublishedParsed
	} else if it.UpdatedParsed != nil {
		published = *it.UpdatedParsed
	}

	tags := make([]string, 0, len(it.Categories))
	for _, cat := range it.Categories {
		if cat = strings.TrimSpace(cat); cat != "" {
			tags = append(tags, cat)
		}
	}

	return domain.Candidate{
		Title:       title,
		URL:         link,
		Source:      s.opts.Name,
		PublishedAt: published.UTC(),
		Tags:        tags,
		ImageURL:    itemImage(it),
		Summary:     plainText(it.Description),
	}, true
}

func itemImage(it *gofeed.Item) string {
	if it.Image != nil && helper.IsHTTPURL(it.Image.URL) {
		return strings.TrimSpace(it.Image.URL)
	}
	for _, enc := range it.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") && helper.IsHTTPURL(enc.URL) {
			return strings.TrimSpace(enc.URL)
		}
	}
	return ""
}

// plainText flattens an HTML description to whitespace-normalized text.
func plainText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Enrich fetches the page when the feed item had no image.
func (s *Source) Enrich(ctx context.Context, c *domain.Candidate) {
	if s.fetcher == nil || c.ImageURL != "" {
		return
	}
	md := s.fetcher.Fetch(ctx, c.URL)
	c.ImageURL = md.ImageURL
	if c.Summary == "" {
		c.Summary = md.Description
	}
}
