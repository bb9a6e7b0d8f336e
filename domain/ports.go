package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrConflict is returned by Create when the URL is already stored.
	ErrConflict = errors.New("news item already exists")
	// ErrNotUpdated is returned by UpdateMetadata when the record is missing
	// or already has an image.
	ErrNotUpdated = errors.New("news item not updated")
)

// NewsRepository is the persistence port for news items.
type NewsRepository interface {
	Ensure(ctx context.Context) error
	FindByURL(ctx context.Context, url string) (*NewsItem, error)
	Create(ctx context.Context, item NewsItem) (*NewsItem, error)
	UpdateMetadata(ctx context.Context, url string, patch MetadataPatch) (*NewsItem, error)
	List(ctx context.Context, f ListFilter) ([]NewsItem, error)
}

// MetadataFetcher scrapes preview metadata from a page. It never fails; an
// unreachable or unparsable page yields empty Metadata.
type MetadataFetcher interface {
	Fetch(ctx context.Context, url string) Metadata
}

// Enricher fills in missing image and summary fields on a candidate using
// source-specific fallbacks.
type Enricher interface {
	Enrich(ctx context.Context, c *Candidate)
}

// Source fetches candidates from one external feed.
type Source interface {
	Enricher
	Name() string
	FetchCandidates(ctx context.Context) ([]Candidate, error)
}

// Trigger starts a run without waiting for it.
type Trigger interface {
	Trigger() bool
}

// Scheduler exposes application-level controls for background crawling.
type Scheduler interface {
	Trigger
	Start(ctx context.Context) error
	Stop() error

	SetInterval(d time.Duration)
	CurrentInterval() time.Duration
}
