package config

const (
	defaultInterval          = "12h"
	defaultRunTimeout        = "10m"
	defaultHTTPTimeout       = "5s"
	defaultUserAgent         = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
	defaultMetadataUserAgent = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
	defaultHNBaseURL         = "https://hn.algolia.com/api/v1"
	defaultHNQuery           = "AI"
	defaultPageSize          = 20
	defaultRedditBaseURL     = "https://www.reddit.com"
	defaultSQLitePath        = "ainews.db"
	defaultLogLevel          = "info"
	defaultLogFormat         = "console"
	defaultControlAddr       = "127.0.0.1:8089"
	defaultLockPath          = "ainews.run.lock"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Schedule: Schedule{
			Interval:   defaultInterval,
			RunTimeout: defaultRunTimeout,
		},
		HTTP: HTTP{
			Timeout:           defaultHTTPTimeout,
			UserAgent:         defaultUserAgent,
			MetadataUserAgent: defaultMetadataUserAgent,
		},
		HackerNews: HackerNews{
			Enabled:     true,
			BaseURL:     defaultHNBaseURL,
			Query:       defaultHNQuery,
			HitsPerPage: defaultPageSize,
		},
		Reddit: Reddit{
			Enabled:    true,
			BaseURL:    defaultRedditBaseURL,
			Subreddits: []string{"LocalLLaMA", "ArtificialInteligence", "openai"},
			Limit:      defaultPageSize,
		},
		Store: Store{
			Driver:     DriverSQLite,
			SQLitePath: defaultSQLitePath,
		},
		Postgres: Postgres{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "changeme",
			Database: "ainews",
			SSLMode:  "disable",
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Control:  Control{Addr: defaultControlAddr},
		LockPath: defaultLockPath,
	}
}
