package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"ainews/adapter/postgres"
	"ainews/adapter/sqlite"
	"ainews/domain"
	"ainews/internal/config"
	"ainews/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logOutput io.Writer
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag, logOutput: os.Stderr}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(cfg.Logging.Level, cfg.Logging.Format, c.logOutput)
}

// openStore opens the configured backend and makes sure its schema exists.
func (c *commandContext) openStore(ctx context.Context) (domain.NewsRepository, func() error, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		repo := postgres.New(db)
		if err := repo.Ensure(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("db ensure failed: %w", err)
		}
		return repo, db.Close, nil
	default:
		repo, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := repo.Ensure(ctx); err != nil {
			_ = repo.Close()
			return nil, nil, fmt.Errorf("db ensure failed: %w", err)
		}
		return repo, repo.Close, nil
	}
}
