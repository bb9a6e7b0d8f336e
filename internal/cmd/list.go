package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ainews/domain"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var source string
	var num int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the latest stored items",
		RunE: func(cmd *cobra.Command, args []string) error {
			if num < 0 {
				return fmt.Errorf("--num must not be negative")
			}
			repo, closeStore, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			items, err := repo.List(cmd.Context(), domain.ListFilter{Source: strings.TrimSpace(source), Limit: num})
			if err != nil {
				return fmt.Errorf("could not list items: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No items stored yet")
				return nil
			}
			fmt.Fprintln(out, renderItems(items, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", `Only show items from this source (e.g. "Hacker News")`)
	cmd.Flags().IntVarP(&num, "num", "n", 20, "Number of items to show (0 = all)")
	return cmd
}
