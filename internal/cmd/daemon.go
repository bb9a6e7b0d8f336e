package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ainews/internal/control"
)

func newTriggerCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "trigger",
		Short: "Ask the running daemon to crawl now",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			started, err := control.NewClient(cfg.Control.Addr).Crawl(cmd.Context())
			if err != nil {
				return fmt.Errorf("could not trigger crawl: %w", err)
			}
			if started {
				fmt.Fprintln(cmd.OutOrStdout(), "Crawl started")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "A crawl is already running; request ignored")
			}
			return nil
		},
	}
}

func newSetIntervalCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "set-interval DURATION",
		Short:   "Change the running daemon's crawl interval",
		Example: "  ainews set-interval 6h",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := time.ParseDuration(args[0])
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			if d <= 0 {
				return fmt.Errorf("invalid duration: %s must be positive", d)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			old, err := control.NewClient(cfg.Control.Addr).SetInterval(cmd.Context(), d)
			if err != nil {
				return fmt.Errorf("could not set interval: %w", err)
			}
			out := cmd.OutOrStdout()
			if old == d {
				fmt.Fprintf(out, "Interval is already set to %s (no change)\n", d)
				return nil
			}
			fmt.Fprintf(out, "Crawl interval changed from %s to %s\n", old, d)
			return nil
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running daemon's schedule and last run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := control.NewClient(cfg.Control.Addr).Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("could not fetch status: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStatus(st, time.Now()))
			return nil
		},
	}
}
