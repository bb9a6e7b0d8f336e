package config

import (
	"os"
	"strconv"
	"strings"
)

func applyEnv(c *Config) {
	c.Schedule.Interval = getenv("AINEWS_INTERVAL", c.Schedule.Interval)
	c.Schedule.RunOnStart = parseBoolEnv("AINEWS_RUN_ON_START", c.Schedule.RunOnStart)
	c.Store.Driver = getenv("AINEWS_STORE_DRIVER", c.Store.Driver)
	c.Store.SQLitePath = getenv("AINEWS_SQLITE_PATH", c.Store.SQLitePath)
	c.Logging.Level = getenv("AINEWS_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getenv("AINEWS_LOG_FORMAT", c.Logging.Format)
	c.Control.Addr = getenv("CONTROL_ADDR", c.Control.Addr)

	c.Postgres.Host = getenv("POSTGRES_HOST", c.Postgres.Host)
	c.Postgres.Port = parseIntEnv("POSTGRES_PORT", c.Postgres.Port)
	c.Postgres.User = getenv("POSTGRES_USER", c.Postgres.User)
	c.Postgres.Password = getenv("POSTGRES_PASSWORD", c.Postgres.Password)
	c.Postgres.Database = getenv("POSTGRES_DBNAME", c.Postgres.Database)
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseIntEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func parseBoolEnv(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
