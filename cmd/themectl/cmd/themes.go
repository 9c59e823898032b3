package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codr1/mailthemes/internal/rpcclient"
)

func newThemesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "themes",
		Short: "Manage your themes",
	}
	cmd.AddCommand(
		newThemesListCmd(a),
		newThemesConnectionCmd(a),
		newThemesGetCmd(a),
		newThemesCreateCmd(a),
		newThemesUpdateCmd(a),
		newThemesDeleteCmd(a),
		newThemesTogglePublicCmd(a),
	)
	return cmd
}

func newThemesListCmd(a *app) *cobra.Command {
	var connection string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your themes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout())
			defer cancel()

			list, err := a.client().ListThemes(ctx, optional(connection))
			if err != nil {
				return err
			}
			return printThemes(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().StringVar(&connection, "connection", "", "only themes bound to this connection")
	return cmd
}

func newThemesConnectionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "connection",
		Short: "List themes bound to your active connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout())
			defer cancel()

			list, err := a.client().ConnectionThemes(ctx)
			if err != nil {
				return err
			}
			return printThemes(cmd.OutOrStdout(), list)
		},
	}
}

func newThemesGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one of your themes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout())
			defer cancel()

			theme, err := a.client().GetTheme(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), theme)
		},
	}
}

func newThemesCreateCmd(a *app) *cobra.Command {
	var (
		name, description, palettePath, connection string
		public                                     bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a theme from a palette file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			palette, err := readPalette(palettePath)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout())
			defer cancel()

			theme, err := a.client().CreateTheme(ctx, rpcclient.CreateThemeInput{
				Name:         name,
				Description:  optional(description),
				ThemeData:    palette,
				IsPublic:     public,
				ConnectionID: optional(connection),
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created theme %s (%s)\n", theme.ID, theme.Name)
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "theme name")
	cmd.Flags().StringVar(&description, "description", "", "theme description")
	cmd.Flags().StringVar(&palettePath, "palette", "", "JSON file with rootColors and darkColors")
	cmd.Flags().StringVar(&connection, "connection", "", "bind the theme to a connection")
	cmd.Flags().BoolVar(&public, "public", false, "publish the theme to the marketplace")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("palette")
	return cmd
}

func newThemesUpdateCmd(a *app) *cobra.Command {
	var (
		name, description, palettePath string
		public                         bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of one of your themes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := rpcclient.UpdateThemeInput{ID: args[0]}
			flags := cmd.Flags()
			if flags.Changed("name") {
				input.Name = &name
			}
			if flags.Changed("description") {
				input.Description = &description
			}
			if flags.Changed("public") {
				input.IsPublic = &public
			}
			if flags.Changed("palette") {
				palette, err := readPalette(palettePath)
				if err != nil {
					return err
				}
				input.ThemeData = &palette
			}
			if input.Name == nil && input.Description == nil && input.IsPublic == nil && input.ThemeData == nil {
				return fmt.Errorf("nothing to update: pass --name, --description, --palette or --public")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout())
			defer cancel()

			theme, err := a.client().UpdateTheme(ctx, input)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated theme %s (%s)\n", theme.ID, theme.Name)
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&palettePath, "palette", "", "JSON file with the new palette")
	cmd.Flags().BoolVar(&public, "public", false, "marketplace visibility")
	return cmd
}

func newThemesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your themes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout())
			defer cancel()

			deleted, err := a.client().DeleteTheme(ctx, args[0])
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("theme %s not found", args[0])
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted theme %s\n", args[0])
			return err
		},
	}
}

func newThemesTogglePublicCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-public <id>",
		Short: "Publish or unpublish one of your themes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout())
			defer cancel()

			theme, err := a.client().TogglePublic(ctx, args[0])
			if err != nil {
				return err
			}
			state := "private"
			if theme.IsPublic {
				state = "public"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Theme %s is now %s\n", theme.ID, state)
			return err
		},
	}
}
