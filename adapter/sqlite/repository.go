// Package sqlite is a single-file NewsRepository backed by modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"ainews/domain"
)

// Fixed-width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Repository implements domain.NewsRepository.
type Repository struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database at path.
func Open(path string) (*Repository, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	return &Repository{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Path returns the database file location.
func (r *Repository) Path() string { return r.path }

func (r *Repository) Ensure(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS ai_news_items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    title TEXT NOT NULL,
    url TEXT NOT NULL UNIQUE,
    source TEXT NOT NULL,
    image_url TEXT,
    summary TEXT,
    published_at TEXT NOT NULL,
    tags TEXT NOT NULL DEFAULT '[]',
    score INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS ai_news_items_published_at_idx ON ai_news_items (published_at);
CREATE INDEX IF NOT EXISTS ai_news_items_source_idx ON ai_news_items (source);
`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const itemColumns = "id, created_at, updated_at, title, url, source, image_url, summary, published_at, tags, score"

func (r *Repository) FindByURL(ctx context.Context, url string) (*domain.NewsItem, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM ai_news_items WHERE url = ?", url)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return item, err
}

func (r *Repository) Create(ctx context.Context, n domain.NewsItem) (*domain.NewsItem, error) {
	tags, err := json.Marshal(tagsOrEmpty(n.Tags))
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	now := formatTime(time.Now())

	res, err := r.db.ExecContext(ctx, `
INSERT INTO ai_news_items (created_at, updated_at, title, url, source, image_url, summary, published_at, tags, score)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(url) DO NOTHING`,
		now, now, n.Title, n.URL, n.Source, nullable(n.ImageURL), nullable(n.Summary),
		formatTime(n.PublishedAt), string(tags), n.Score)
	if err != nil {
		return nil, fmt.Errorf("insert news item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrConflict
	}
	return r.FindByURL(ctx, n.URL)
}

func (r *Repository) UpdateMetadata(ctx context.Context, url string, p domain.MetadataPatch) (*domain.NewsItem, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE ai_news_items
SET image_url = COALESCE(NULLIF(?, ''), image_url),
    summary = COALESCE(NULLIF(?, ''), summary),
    updated_at = ?
WHERE url = ? AND (image_url IS NULL OR image_url = '')`,
		p.ImageURL, p.Summary, formatTime(time.Now()), url)
	if err != nil {
		return nil, fmt.Errorf("update metadata: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrNotUpdated
	}
	return r.FindByURL(ctx, url)
}

func (r *Repository) List(ctx context.Context, f domain.ListFilter) ([]domain.NewsItem, error) {
	q := "SELECT " + itemColumns + " FROM ai_news_items"
	var args []any
	if f.Source != "" {
		q += " WHERE source = ?"
		args = append(args, f.Source)
	}
	q += " ORDER BY published_at DESC, id DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list news items: %w", err)
	}
	defer rows.Close()

	var out []domain.NewsItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func scanItem(scanner interface{ Scan(dest ...any) error }) (*domain.NewsItem, error) {
	var (
		id           int64
		createdRaw   string
		updatedRaw   string
		publishedRaw string
		imageURL     sql.NullString
		summary      sql.NullString
		tagsRaw      string
		n            domain.NewsItem
	)
	if err := scanner.Scan(&id, &createdRaw, &updatedRaw, &n.Title, &n.URL, &n.Source,
		&imageURL, &summary, &publishedRaw, &tagsRaw, &n.Score); err != nil {
		return nil, err
	}

	n.ID = strconv.FormatInt(id, 10)
	n.ImageURL = imageURL.String
	n.Summary = summary.String
	n.CreatedAt = parseTime(createdRaw)
	n.UpdatedAt = parseTime(updatedRaw)
	n.PublishedAt = parseTime(publishedRaw)
	if err := json.Unmarshal([]byte(tagsRaw), &n.Tags); err != nil || n.Tags == nil {
		n.Tags = []string{}
	}
	return &n, nil
}

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(raw string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, raw)
	}
	return t
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
