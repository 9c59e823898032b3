package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newConnectionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connections",
		Short: "List your mail connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout())
			defer cancel()

			connections, err := a.client().ListConnections(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tEMAIL\tPROVIDER\tDEFAULT")
			for _, c := range connections {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", c.ID, c.Email, c.ProviderID, c.IsDefault)
			}
			return tw.Flush()
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "use <id>",
		Short: "Make a connection your active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout())
			defer cancel()

			if err := a.client().SetDefaultConnection(ctx, args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Active connection is now %s\n", args[0])
			return err
		},
	})
	return cmd
}
