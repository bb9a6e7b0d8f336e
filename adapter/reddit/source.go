// Package reddit pulls link posts from a subreddit's hot listing.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ainews/domain"
	"ainews/internal/helper"
)

// Platform prefixes every source label, e.g. "Reddit r/openai".
const Platform = "Reddit"

// Options configures the listing request for one subreddit.
type Options struct {
	BaseURL   string
	Subreddit string
	Limit     int
	Timeout   time.Duration
	UserAgent string
}

// Source implements domain.Source for one subreddit.
type Source struct {
	opts    Options
	client  *http.Client
	fetcher domain.MetadataFetcher
}

// New builds the adapter. fetcher may be nil to disable the page fallback.
func New(opts Options, fetcher domain.MetadataFetcher) *Source {
	return &Source{
		opts:    opts,
		client:  &http.Client{Timeout: opts.Timeout},
		fetcher: fetcher,
	}
}

func (s *Source) Name() string { return Platform + " r/" + s.opts.Subreddit }

type listing struct {
	Data struct {
		Children []struct {
			Data post `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type post struct {
	URL        string  `json:"url"`
	Title      string  `json:"title"`
	CreatedUTC float64 `json:"created_utc"`
	Score      int     `json:"score"`
	Stickied   bool    `json:"stickied"`
	IsSelf     bool    `json:"is_self"`
	Selftext   string  `json:"selftext"`
	Thumbnail  string  `json:"thumbnail"`
	Flair      *string `json:"link_flair_text"`
	Preview    *struct {
		Images []struct {
			Source struct {
				URL string `json:"url"`
			} `json:"source"`
		} `json:"images"`
	} `json:"preview"`
}

// FetchCandidates issues one hot-listing request. Pinned posts and self posts
// are dropped since they have no external URL to ingest.
func (s *Source) FetchCandidates(ctx context.Context) ([]domain.Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.listingURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("build reddit request: %w", err)
	}
	helper.SetBrowserHeaders(req, s.opts.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.Name(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: status %s", s.Name(), resp.Status)
	}

	var body listing
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode %s listing: %w", s.Name(), err)
	}

	out := make([]domain.Candidate, 0, len(body.Data.Children))
	for _, child := range body.Data.Children {
		if c, ok := s.candidate(child.Data); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Source) candidate(p post) (domain.Candidate, bool) {
	if p.Stickied || p.IsSelf {
		return domain.Candidate{}, false
	}
	link := strings.TrimSpace(p.URL)
	title := strings.TrimSpace(p.Title)
	if link == "" || title == "" {
		return domain.Candidate{}, false
	}

	tags := make([]string, 0, 2)
	for _, t := range []string{s.opts.Subreddit, deref(p.Flair)} {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	return domain.Candidate{
		Title:       title,
		URL:         link,
		Source:      s.Name(),
		PublishedAt: fromUnix(p.CreatedUTC),
		Score:       p.Score,
		Tags:        tags,
		ImageURL:    previewImage(p),
		Summary:     strings.TrimSpace(p.Selftext),
	}, true
}

// previewImage applies the listing-level part of the image chain: the preview
// source image first, then an absolute thumbnail.
func previewImage(p post) string {
	if p.Preview != nil && len(p.Preview.Images) > 0 {
		if u := strings.ReplaceAll(p.Preview.Images[0].Source.URL, "&amp;", "&"); strings.TrimSpace(u) != "" {
			return strings.TrimSpace(u)
		}
	}
	if helper.IsHTTPURL(p.Thumbnail) {
		return strings.TrimSpace(p.Thumbnail)
	}
	return ""
}

// Enrich falls back to the linked page when the listing had no image. The
// page description is only used when the post carried no text of its own.
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

func (s *Source) listingURL() string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(s.opts.Limit))
	return fmt.Sprintf("%s/r/%s/hot.json?%s",
		strings.TrimRight(s.opts.BaseURL, "/"), url.PathEscape(s.opts.Subreddit), q.Encode())
}

func fromUnix(sec float64) time.Time {
	if sec <= 0 {
		return time.Now().UTC()
	}
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
