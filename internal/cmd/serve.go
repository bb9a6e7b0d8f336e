package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ainews/app"
	"ainews/internal/control"
	"ainews/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler and control server until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			listener, err := control.TryListen(cfg.Control.Addr)
			if err != nil {
				if errors.Is(err, control.ErrAlreadyRunning) {
					fmt.Fprintln(cmd.OutOrStdout(), "Background process is already running")
				}
				return err
			}
			defer listener.Close()

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			repo, closeStore, err := ctx.openStore(runCtx)
			if err != nil {
				return err
			}
			defer closeStore()

			sched := app.NewScheduler(
				newRunner(cfg, repo, logger),
				cfg.Interval(),
				app.WithRunLock(newRunLock(cfg)),
				app.WithRunOnStart(cfg.Schedule.RunOnStart),
				app.WithLogger(logger),
			)

			srv := &http.Server{Handler: control.NewServer(sched, logger), ReadHeaderTimeout: 5 * time.Second}
			go func() {
				if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("control server error", logging.Err(err))
				}
			}()

			if err := sched.Start(runCtx); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "The background crawler has started (interval = %s, control = %s)\n", cfg.Interval(), cfg.Control.Addr)

			<-runCtx.Done()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = srv.Shutdown(shutdownCtx)

			if err := sched.Stop(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error during shutdown: %v\n", err)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Graceful shutdown: scheduler stopped")
			}
			return nil
		},
	}
}
