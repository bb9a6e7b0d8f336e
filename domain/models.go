package domain

import "time"

// NewsItem is a persisted news record. URL is unique across the store.
type NewsItem struct {
	ID          string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Title       string
	URL         string
	Source      string
	PublishedAt time.Time
	Score       int
	Tags        []string
	ImageURL    string
	Summary     string
}

// HasImage reports whether the record is metadata-complete.
func (n NewsItem) HasImage() bool { return n.ImageURL != "" }

// Candidate is a normalized item produced by a Source on one pass. It never
// persists on its own.
type Candidate struct {
	Title       string
	URL         string
	Source      string
	PublishedAt time.Time
	Score       int
	Tags        []string
	ImageURL    string
	Summary     string
}

// NewsItem converts the candidate into a record ready for creation.
func (c Candidate) NewsItem() NewsItem {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return NewsItem{
		Title:       c.Title,
		URL:         c.URL,
		Source:      c.Source,
		PublishedAt: c.PublishedAt,
		Score:       c.Score,
		Tags:        tags,
		ImageURL:    c.ImageURL,
		Summary:     c.Summary,
	}
}

// Metadata is the result of a best-effort page scrape. Empty fields mean absent.
type Metadata struct {
	ImageURL    string
	Description string
}

// MetadataPatch carries the fields to backfill on an existing record. Empty
// fields leave the stored value untouched.
type MetadataPatch struct {
	ImageURL string
	Summary  string
}

// Empty reports whether the patch would change nothing.
func (p MetadataPatch) Empty() bool { return p.ImageURL == "" && p.Summary == "" }

// ListFilter narrows List results.
type ListFilter struct {
	Source string
	Limit  int
}

// Action is the outcome of reconciling one candidate.
type Action int

const (
	Skipped Action = iota
	Created
	MetadataUpdated
)

func (a Action) String() string {
	switch a {
	case Created:
		return "created"
	case MetadataUpdated:
		return "metadata_updated"
	default:
		return "skipped"
	}
}

// SourceResult counts what happened to one source during a run.
type SourceResult struct {
	Name    string
	Fetched int
	Created int
	Updated int
	Skipped int
	Err     error
}

// Record adds one reconcile outcome to the counters.
func (r *SourceResult) Record(a Action) {
	switch a {
	case Created:
		r.Created++
	case MetadataUpdated:
		r.Updated++
	default:
		r.Skipped++
	}
}

// RunSummary describes one complete pass over all sources.
type RunSummary struct {
	ID         string
	Trigger    string
	StartedAt  time.Time
	FinishedAt time.Time
	Sources    []SourceResult
}

// Totals sums the per-source counters.
func (s RunSummary) Totals() SourceResult {
	var t SourceResult
	for _, r := range s.Sources {
		t.Fetched += r.Fetched
		t.Created += r.Created
		t.Updated += r.Updated
		t.Skipped += r.Skipped
	}
	return t
}

// Failed lists the names of sources whose listing fetch failed.
func (s RunSummary) Failed() []string {
	var out []string
	for _, r := range s.Sources {
		if r.Err != nil {
			out = append(out, r.Name)
		}
	}
	return out
}
