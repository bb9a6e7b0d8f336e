// Package config loads ainews settings from defaults, an optional TOML or
// YAML file, and environment overrides, in that order.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"ainews/internal/helper"
)

//go:embed sample_config.toml
var sampleConfig string

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "ainews.toml"

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Configuration validation errors.
var (
	ErrInvalidInterval    = errors.New("schedule.interval must be a positive duration")
	ErrInvalidRunTimeout  = errors.New("schedule.run_timeout must be a non-negative duration")
	ErrInvalidHTTPTimeout = errors.New("http.timeout must be a positive duration")
	ErrInvalidDriver      = errors.New("store.driver must be 'sqlite' or 'postgres'")
	ErrMissingSQLitePath  = errors.New("store.sqlite_path is required for the sqlite driver")
	ErrInvalidLogLevel    = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat   = errors.New("logging.format must be 'console' or 'json'")
	ErrEmptySubreddit     = errors.New("reddit.subreddits entries must be non-empty")
	ErrInvalidFeed        = errors.New("feeds entries need a name and an absolute http(s) url")
	ErrNoSources          = errors.New("at least one source must be enabled")
	ErrInvalidPageSize    = errors.New("page sizes must be between 1 and 100")
)

// Schedule controls the crawl cadence.
type Schedule struct {
	Interval   string `toml:"interval" yaml:"interval"`
	RunOnStart bool   `toml:"run_on_start" yaml:"run_on_start"`
	RunTimeout string `toml:"run_timeout" yaml:"run_timeout"`
}

// HTTP holds outbound request settings shared by all sources.
type HTTP struct {
	Timeout           string `toml:"timeout" yaml:"timeout"`
	UserAgent         string `toml:"user_agent" yaml:"user_agent"`
	MetadataUserAgent string `toml:"metadata_user_agent" yaml:"metadata_user_agent"`
}

// HackerNews configures the Algolia search source.
type HackerNews struct {
	Enabled     bool   `toml:"enabled" yaml:"enabled"`
	BaseURL     string `toml:"base_url" yaml:"base_url"`
	Query       string `toml:"query" yaml:"query"`
	HitsPerPage int    `toml:"hits_per_page" yaml:"hits_per_page"`
}

// Reddit configures the subreddit hot-listing sources.
type Reddit struct {
	Enabled    bool     `toml:"enabled" yaml:"enabled"`
	BaseURL    string   `toml:"base_url" yaml:"base_url"`
	Subreddits []string `toml:"subreddits" yaml:"subreddits"`
	Limit      int      `toml:"limit" yaml:"limit"`
}

// Feed is one RSS or Atom source.
type Feed struct {
	Name string `toml:"name" yaml:"name"`
	URL  string `toml:"url" yaml:"url"`
}

// Store selects the persistence backend.
type Store struct {
	Driver     string `toml:"driver" yaml:"driver"`
	SQLitePath string `toml:"sqlite_path" yaml:"sqlite_path"`
}

// Postgres holds connection settings for the postgres driver.
type Postgres struct {
	Host     string `toml:"host" yaml:"host"`
	Port     int    `toml:"port" yaml:"port"`
	User     string `toml:"user" yaml:"user"`
	Password string `toml:"password" yaml:"password"`
	Database string `toml:"database" yaml:"database"`
	SSLMode  string `toml:"sslmode" yaml:"sslmode"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Control configures the daemon control server.
type Control struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// Config is the complete application configuration.
type Config struct {
	Schedule   Schedule   `toml:"schedule" yaml:"schedule"`
	HTTP       HTTP       `toml:"http" yaml:"http"`
	HackerNews HackerNews `toml:"hackernews" yaml:"hackernews"`
	Reddit     Reddit     `toml:"reddit" yaml:"reddit"`
	Feeds      []Feed     `toml:"feeds" yaml:"feeds"`
	Store      Store      `toml:"store" yaml:"store"`
	Postgres   Postgres   `toml:"postgres" yaml:"postgres"`
	Logging    Logging    `toml:"logging" yaml:"logging"`
	Control    Control    `toml:"control" yaml:"control"`
	LockPath   string     `toml:"lock_path" yaml:"lock_path"`
}

// Load builds the configuration. An empty path falls back to DefaultFile in
// the working directory when it exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	resolved, exists, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	if exists {
		if err := decodeFile(resolved, &cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(&cfg)
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func resolvePath(path string) (string, bool, error) {
	if path == "" {
		info, err := os.Stat(DefaultFile)
		if err == nil && !info.IsDir() {
			return DefaultFile, true, nil
		}
		return "", false, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, fmt.Errorf("config file %s does not exist", path)
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return path, true, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse TOML: %w", err)
		}
	}
	return nil
}

func (c *Config) normalize() {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.HackerNews.BaseURL = strings.TrimRight(strings.TrimSpace(c.HackerNews.BaseURL), "/")
	c.Reddit.BaseURL = strings.TrimRight(strings.TrimSpace(c.Reddit.BaseURL), "/")
	for i, sub := range c.Reddit.Subreddits {
		c.Reddit.Subreddits[i] = strings.TrimPrefix(strings.TrimSpace(sub), "r/")
	}
	for i := range c.Feeds {
		c.Feeds[i].Name = strings.TrimSpace(c.Feeds[i].Name)
		c.Feeds[i].URL = strings.TrimSpace(c.Feeds[i].URL)
	}
}

// Validate checks the configuration for values the daemon cannot run with.
func (c *Config) Validate() error {
	if d, err := time.ParseDuration(c.Schedule.Interval); err != nil || d <= 0 {
		return ErrInvalidInterval
	}
	if c.Schedule.RunTimeout != "" {
		if d, err := time.ParseDuration(c.Schedule.RunTimeout); err != nil || d < 0 {
			return ErrInvalidRunTimeout
		}
	}
	if d, err := time.ParseDuration(c.HTTP.Timeout); err != nil || d <= 0 {
		return ErrInvalidHTTPTimeout
	}

	switch c.Store.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Store.SQLitePath) == "" {
			return ErrMissingSQLitePath
		}
	case DriverPostgres:
	default:
		return ErrInvalidDriver
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return ErrInvalidLogFormat
	}

	if c.HackerNews.Enabled && (c.HackerNews.HitsPerPage < 1 || c.HackerNews.HitsPerPage > 100) {
		return fmt.Errorf("%w: hackernews.hits_per_page=%d", ErrInvalidPageSize, c.HackerNews.HitsPerPage)
	}
	if c.Reddit.Enabled {
		if c.Reddit.Limit < 1 || c.Reddit.Limit > 100 {
			return fmt.Errorf("%w: reddit.limit=%d", ErrInvalidPageSize, c.Reddit.Limit)
		}
		for i, sub := range c.Reddit.Subreddits {
			if sub == "" {
				return fmt.Errorf("%w: subreddits[%d]", ErrEmptySubreddit, i)
			}
		}
	}
	for i, f := range c.Feeds {
		if f.Name == "" || !helper.IsHTTPURL(f.URL) {
			return fmt.Errorf("%w: feeds[%d]", ErrInvalidFeed, i)
		}
	}

	if !c.HackerNews.Enabled && (!c.Reddit.Enabled || len(c.Reddit.Subreddits) == 0) && len(c.Feeds) == 0 {
		return ErrNoSources
	}
	return nil
}

// Interval returns the parsed crawl cadence.
func (c *Config) Interval() time.Duration {
	d, _ := time.ParseDuration(c.Schedule.Interval)
	return d
}

// RunTimeout returns the run-level deadline; zero disables it.
func (c *Config) RunTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Schedule.RunTimeout)
	return d
}

// HTTPTimeout returns the per-request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	d, _ := time.ParseDuration(c.HTTP.Timeout)
	return d
}

// PostgresDSN renders the connection URL for lib/pq.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Postgres.User, c.Postgres.Password),
		Host:     fmt.Sprintf("%s:%d", c.Postgres.Host, c.Postgres.Port),
		Path:     "/" + c.Postgres.Database,
		RawQuery: "sslmode=" + url.QueryEscape(c.Postgres.SSLMode),
	}
	return u.String()
}

// CreateSample writes a sample configuration file to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

