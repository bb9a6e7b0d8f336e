package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"ainews/domain"
)

const uniqueViolation = "23505"

type Repository struct{ db *sql.DB }

func New(db *sql.DB) *Repository { return &Repository{db: db} }

// Open connects with lib/pq and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	dbConn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	dbConn.SetMaxOpenConns(10)
	dbConn.SetMaxIdleConns(10)
	dbConn.SetConnMaxLifetime(30 * time.Minute)
	if err := dbConn.PingContext(ctx); err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	return dbConn, nil
}

func (r *Repository) Ensure(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS ai_news_items (
    id BIGSERIAL PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    title TEXT NOT NULL,
    url TEXT NOT NULL UNIQUE,
    source TEXT NOT NULL,
    image_url TEXT,
    summary TEXT,
    published_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    tags TEXT[] NOT NULL DEFAULT '{}',
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

const selectColumns = `id, created_at, updated_at, title, url, source, COALESCE(image_url, ''), COALESCE(summary, ''), published_at, tags, score`

func (r *Repository) FindByURL(ctx context.Context, url string) (*domain.NewsItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM ai_news_items WHERE url = $1`, url)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *Repository) Create(ctx context.Context, n domain.NewsItem) (*domain.NewsItem, error) {
	row := r.db.QueryRowContext(ctx, `
INSERT INTO ai_news_items (title, url, source, image_url, summary, published_at, tags, score)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8)
RETURNING `+selectColumns,
		n.Title, n.URL, n.Source, n.ImageURL, n.Summary, n.PublishedAt, pq.Array(tagsOrEmpty(n.Tags)), n.Score)
	item, err := scanItem(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, domain.ErrConflict
		}
		return nil, err
	}
	return item, nil
}

// UpdateMetadata is a single conditional statement, so it can never overwrite
// a record that another writer has already imaged.
func (r *Repository) UpdateMetadata(ctx context.Context, url string, p domain.MetadataPatch) (*domain.NewsItem, error) {
	row := r.db.QueryRowContext(ctx, `
UPDATE ai_news_items
SET image_url = COALESCE(NULLIF($2, ''), image_url),
    summary = COALESCE(NULLIF($3, ''), summary),
    updated_at = now()
WHERE url = $1 AND (image_url IS NULL OR image_url = '')
RETURNING `+selectColumns, url, p.ImageURL, p.Summary)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotUpdated
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *Repository) List(ctx context.Context, f domain.ListFilter) ([]domain.NewsItem, error) {
	q := `SELECT ` + selectColumns + ` FROM ai_news_items`
	var args []any
	if f.Source != "" {
		args = append(args, f.Source)
		q += ` WHERE source = $1`
	}
	q += ` ORDER BY published_at DESC, id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
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

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*domain.NewsItem, error) {
	var (
		n  domain.NewsItem
		id int64
	)
	if err := s.Scan(&id, &n.CreatedAt, &n.UpdatedAt, &n.Title, &n.URL, &n.Source,
		&n.ImageURL, &n.Summary, &n.PublishedAt, pq.Array(&n.Tags), &n.Score); err != nil {
		return nil, err
	}
	n.ID = fmt.Sprint(id)
	if n.Tags == nil {
		n.Tags = []string{}
	}
	return &n, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
