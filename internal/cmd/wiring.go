package cmd

import (
	"log/slog"

	"github.com/gofrs/flock"

	"ainews/adapter/hackernews"
	"ainews/adapter/metadata"
	"ainews/adapter/reddit"
	"ainews/adapter/rss"
	"ainews/app"
	"ainews/domain"
	"ainews/internal/config"
)

// buildSources returns the enabled sources in crawl order: Hacker News, each
// subreddit as configured, then RSS feeds. All share one metadata fetcher.
func buildSources(cfg *config.Config, logger *slog.Logger) []domain.Source {
	timeout := cfg.HTTPTimeout()
	fetcher := metadata.NewHTTPFetcher(timeout, cfg.HTTP.MetadataUserAgent, logger)

	var sources []domain.Source
	if cfg.HackerNews.Enabled {
		sources = append(sources, hackernews.New(hackernews.Options{
			BaseURL:     cfg.HackerNews.BaseURL,
			Query:       cfg.HackerNews.Query,
			HitsPerPage: cfg.HackerNews.HitsPerPage,
			Timeout:     timeout,
			UserAgent:   cfg.HTTP.UserAgent,
		}, fetcher))
	}
	if cfg.Reddit.Enabled {
		for _, sub := range cfg.Reddit.Subreddits {
			sources = append(sources, reddit.New(reddit.Options{
				BaseURL:   cfg.Reddit.BaseURL,
				Subreddit: sub,
				Limit:     cfg.Reddit.Limit,
				Timeout:   timeout,
				UserAgent: cfg.HTTP.UserAgent,
			}, fetcher))
		}
	}
	for _, f := range cfg.Feeds {
		sources = append(sources, rss.New(rss.Options{
			Name:      f.Name,
			URL:       f.URL,
			Timeout:   timeout,
			UserAgent: cfg.HTTP.UserAgent,
		}, fetcher))
	}
	return sources
}

func newRunner(cfg *config.Config, repo domain.NewsRepository, logger *slog.Logger) *app.Runner {
	return app.NewRunner(buildSources(cfg, logger), app.NewReconciler(repo, logger), cfg.RunTimeout(), logger)
}

func newRunLock(cfg *config.Config) *flock.Flock {
	return flock.New(cfg.LockPath)
}
