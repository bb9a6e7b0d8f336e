package testsupport

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ainews/domain"
)

// RunRepositoryContract exercises the behaviour every NewsRepository must
// share. newRepo must return an empty, ensured repository.
func RunRepositoryContract(t *testing.T, newRepo func(t *testing.T) domain.NewsRepository) {
	t.Helper()
	ctx := context.Background()
	published := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("create and find", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.Create(ctx, domain.NewsItem{
			Title: "T", URL: "http://a.com/x", Source: "Hacker News",
			PublishedAt: published, Score: 5, Tags: []string{"ai", "story"},
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if created.ID == "" || created.CreatedAt.IsZero() {
			t.Fatalf("expected id and timestamps, got %+v", created)
		}

		got, err := repo.FindByURL(ctx, "http://a.com/x")
		if err != nil || got == nil {
			t.Fatalf("FindByURL: %v %v", got, err)
		}
		if got.Title != "T" || got.Source != "Hacker News" || got.Score != 5 {
			t.Fatalf("unexpected record %+v", got)
		}
		if !got.PublishedAt.Equal(published) {
			t.Fatalf("published = %s, want %s", got.PublishedAt, published)
		}
		if len(got.Tags) != 2 || got.Tags[0] != "ai" || got.Tags[1] != "story" {
			t.Fatalf("tags not preserved in order: %v", got.Tags)
		}
		if got.ImageURL != "" || got.Summary != "" {
			t.Fatalf("absent metadata should read back empty: %+v", got)
		}
	})

	t.Run("long values round trip", func(t *testing.T) {
		repo := newRepo(t)
		title := strings.Repeat("t", 300)
		link := "http://a.com/" + strings.Repeat("p", 600)
		image := "https://cdn.example/" + strings.Repeat("i", 900)
		source := "Reddit r/" + strings.Repeat("s", 80)
		if _, err := repo.Create(ctx, domain.NewsItem{
			Title: title, URL: link, Source: source, PublishedAt: published, ImageURL: image,
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
		got, err := repo.FindByURL(ctx, link)
		if err != nil || got == nil {
			t.Fatalf("FindByURL: %v %v", got, err)
		}
		if got.Title != title || got.ImageURL != image || got.Source != source {
			t.Fatal("long values were altered on the way through the store")
		}
	})

	t.Run("find missing", func(t *testing.T) {
		repo := newRepo(t)
		got, err := repo.FindByURL(ctx, "http://nowhere")
		if err != nil || got != nil {
			t.Fatalf("expected nil,nil got %v,%v", got, err)
		}
	})

	t.Run("duplicate create conflicts", func(t *testing.T) {
		repo := newRepo(t)
		item := domain.NewsItem{Title: "T", URL: "http://dup", Source: "s", PublishedAt: published}
		if _, err := repo.Create(ctx, item); err != nil {
			t.Fatalf("Create: %v", err)
		}
		item.Title = "other"
		if _, err := repo.Create(ctx, item); !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
		got, _ := repo.FindByURL(ctx, "http://dup")
		if got.Title != "T" {
			t.Fatalf("conflicting create must not overwrite, got %q", got.Title)
		}
	})

	t.Run("update preserves omitted fields", func(t *testing.T) {
		repo := newRepo(t)
		if _, err := repo.Create(ctx, domain.NewsItem{
			Title: "T", URL: "http://p", Source: "s", PublishedAt: published, Summary: "old summary",
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
		updated, err := repo.UpdateMetadata(ctx, "http://p", domain.MetadataPatch{ImageURL: "http://img"})
		if err != nil {
			t.Fatalf("UpdateMetadata: %v", err)
		}
		if updated.ImageURL != "http://img" || updated.Summary != "old summary" {
			t.Fatalf("unexpected update result %+v", updated)
		}
		if updated.Title != "T" || !updated.PublishedAt.Equal(published) {
			t.Fatalf("non-metadata fields must not change: %+v", updated)
		}
	})

	t.Run("update summary only", func(t *testing.T) {
		repo := newRepo(t)
		if _, err := repo.Create(ctx, domain.NewsItem{Title: "T", URL: "http://s", Source: "s", PublishedAt: published}); err != nil {
			t.Fatalf("Create: %v", err)
		}
		updated, err := repo.UpdateMetadata(ctx, "http://s", domain.MetadataPatch{Summary: "new"})
		if err != nil {
			t.Fatalf("UpdateMetadata: %v", err)
		}
		if updated.Summary != "new" || updated.ImageURL != "" {
			t.Fatalf("unexpected update result %+v", updated)
		}
	})

	t.Run("update refuses imaged or missing records", func(t *testing.T) {
		repo := newRepo(t)
		if _, err := repo.Create(ctx, domain.NewsItem{
			Title: "T", URL: "http://imaged", Source: "s", PublishedAt: published, ImageURL: "http://first",
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if _, err := repo.UpdateMetadata(ctx, "http://imaged", domain.MetadataPatch{ImageURL: "http://second"}); !errors.Is(err, domain.ErrNotUpdated) {
			t.Fatalf("expected ErrNotUpdated for imaged record, got %v", err)
		}
		got, _ := repo.FindByURL(ctx, "http://imaged")
		if got.ImageURL != "http://first" {
			t.Fatalf("imaged record was modified: %+v", got)
		}
		if _, err := repo.UpdateMetadata(ctx, "http://missing", domain.MetadataPatch{ImageURL: "x"}); !errors.Is(err, domain.ErrNotUpdated) {
			t.Fatalf("expected ErrNotUpdated for missing record, got %v", err)
		}
	})

	t.Run("list newest first with filters", func(t *testing.T) {
		repo := newRepo(t)
		for i, src := range []string{"Hacker News", "Reddit r/openai", "Hacker News"} {
			if _, err := repo.Create(ctx, domain.NewsItem{
				Title: "T", URL: "http://l/" + string(rune('a'+i)), Source: src,
				PublishedAt: published.Add(time.Duration(i) * time.Hour),
			}); err != nil {
				t.Fatalf("Create: %v", err)
			}
		}
		all, err := repo.List(ctx, domain.ListFilter{})
		if err != nil || len(all) != 3 {
			t.Fatalf("List: %v (%d)", err, len(all))
		}
		if all[0].URL != "http://l/c" || all[2].URL != "http://l/a" {
			t.Fatalf("expected newest first, got %s..%s", all[0].URL, all[2].URL)
		}
		hn, err := repo.List(ctx, domain.ListFilter{Source: "Hacker News", Limit: 1})
		if err != nil || len(hn) != 1 || hn[0].URL != "http://l/c" {
			t.Fatalf("filtered list = %+v, %v", hn, err)
		}
	})
}
