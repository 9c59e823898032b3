package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codr1/mailthemes/internal/rpcclient"
)

func newMarketplaceCmd(a *app) *cobra.Command {
	var (
		limit, offset int
		query         string
	)
	cmd := &cobra.Command{
		Use:   "marketplace",
		Short: "Browse public themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := rpcclient.MarketplaceInput{Query: query}
			if cmd.Flags().Changed("limit") {
				input.Limit = &limit
			}
			if cmd.Flags().Changed("offset") {
				input.Offset = &offset
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout())
			defer cancel()

			list, err := a.client().Marketplace(ctx, input)
			if err != nil {
				return err
			}
			return printThemes(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "page size (1-100)")
	cmd.Flags().IntVar(&offset, "offset", 0, "themes to skip")
	cmd.Flags().StringVar(&query, "q", "", "search theme names")

	cmd.AddCommand(newMarketplaceCopyCmd(a))
	return cmd
}

func newMarketplaceCopyCmd(a *app) *cobra.Command {
	var connection string
	cmd := &cobra.Command{
		Use:   "copy <id>",
		Short: "Copy a public theme into your themes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout())
			defer cancel()

			theme, err := a.client().CopyPublicTheme(ctx, args[0], optional(connection))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Copied to %s (%s)\n", theme.ID, theme.Name)
			return err
		},
	}
	cmd.Flags().StringVar(&connection, "connection", "", "bind the copy to a connection")
	return cmd
}
