package cmd

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ainews/app"
)

var errCrawlInProgress = errors.New("another crawl is in progress")

func newCrawlCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Run one crawl in the foreground and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			lock := newRunLock(cfg)
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return errCrawlInProgress
			}
			defer lock.Unlock()

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			repo, closeStore, err := ctx.openStore(runCtx)
			if err != nil {
				return err
			}
			defer closeStore()

			summary := newRunner(cfg, repo, logger).Run(runCtx, app.TriggerCLI)
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary, shouldColorize(cmd.OutOrStdout())))
			return nil
		},
	}
}
