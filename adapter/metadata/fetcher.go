// Package metadata scrapes preview images and descriptions from article pages.
package metadata

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"ainews/domain"
	"ainews/internal/helper"
	"ainews/internal/logging"
)

const maxBody = 2 << 20

// HTTPFetcher implements domain.MetadataFetcher over plain HTTP.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// NewHTTPFetcher builds a fetcher with a bounded per-request timeout.
func NewHTTPFetcher(timeout time.Duration, userAgent string, logger *slog.Logger) *HTTPFetcher {
	if logger == nil {
		logger = logging.Nop()
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    logger.With("component", "metadata"),
	}
}

// Fetch never fails: any error yields empty Metadata.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) domain.Metadata {
	md, err := f.fetch(ctx, pageURL)
	if err != nil {
		f.logger.Debug("metadata unavailable", "url", pageURL, logging.Err(err))
		return domain.Metadata{}
	}
	return md
}

func (f *HTTPFetcher) fetch(ctx context.Context, pageURL string) (domain.Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return domain.Metadata{}, err
	}
	helper.SetBrowserHeaders(req, f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Metadata{}, &statusError{code: resp.StatusCode}
	}
	if !isHTML(resp.Header.Get("Content-Type")) {
		return domain.Metadata{}, errNotHTML
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxBody), resp.Header.Get("Content-Type"))
	if err != nil {
		return domain.Metadata{}, err
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return domain.Metadata{}, err
	}

	md := Extract(doc)
	md.ImageURL = helper.ResolveURL(resp.Request.URL, md.ImageURL)
	return md, nil
}

// Extract reads preview metadata from an already-parsed document. Relative
// image URLs are left unresolved.
func Extract(doc *goquery.Document) domain.Metadata {
	return domain.Metadata{
		ImageURL:    firstContent(doc, `meta[property="og:image"]`, `meta[name="twitter:image"]`),
		Description: firstContent(doc, `meta[property="og:description"]`, `meta[name="description"]`),
	}
}

func firstContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		v, ok := doc.Find(sel).First().Attr("content")
		if ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// Missing content types are treated as HTML; plenty of small sites omit them.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "text/html" || mt == "application/xhtml+xml"
}
