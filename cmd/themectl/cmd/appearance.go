package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/codr1/mailthemes/internal/appearance"
	"github.com/codr1/mailthemes/internal/colorspace"
	"github.com/codr1/mailthemes/internal/models"
)

const (
	profileDocument = "index.html"
	profileStorage  = "storage.yaml"
)

// profile is the local preview page and its persisted theme selection.
type profile struct {
	docPath string
	doc     *appearance.HTMLDocument
	engine  *appearance.Engine
}

// openProfile loads the profile and restores the persisted selection.
func (a *app) openProfile() (*profile, error) {
	dir, err := a.profileDir()
	if err != nil {
		return nil, err
	}

	store, err := appearance.OpenFileStorage(filepath.Join(dir, profileStorage))
	if err != nil {
		return nil, err
	}

	docPath := filepath.Join(dir, profileDocument)
	var doc *appearance.HTMLDocument
	data, err := os.ReadFile(docPath)
	switch {
	case err == nil:
		doc, err = appearance.ParseHTMLDocument(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
		doc = appearance.NewHTMLDocument()
	default:
		return nil, fmt.Errorf("read profile document: %w", err)
	}

	engine := appearance.NewEngine(doc, store, appearance.WithLogger(log.Logger))
	engine.Init()
	return &profile{docPath: docPath, doc: doc, engine: engine}, nil
}

func (p *profile) save() error {
	var buf bytes.Buffer
	if err := p.doc.Render(&buf); err != nil {
		return fmt.Errorf("render profile document: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.docPath), 0o755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	tmp := p.docPath + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write profile document: %w", err)
	}
	return os.Rename(tmp, p.docPath)
}

func (p *profile) describe(cmd *cobra.Command) error {
	scheme := appearance.VariantLight
	if p.engine.IsDark() {
		scheme = appearance.VariantDark
	}
	token := p.engine.ActiveToken()
	if token == "" {
		token = "-"
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "state: %s\ntoken: %s\n", p.engine.State(), token); err != nil {
		return err
	}
	if p.engine.State() == appearance.StateCustom {
		if _, err := fmt.Fprintf(out, "theme: %s\n", appearance.ThemeIDFromToken(token)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(out, "scheme: %s\ndocument: %s\n", scheme, p.docPath)
	return err
}

func newApplyCmd(a *app) *cobra.Command {
	var dark, public bool
	cmd := &cobra.Command{
		Use:   "apply <id>",
		Short: "Apply a theme to the preview profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout())
			defer cancel()

			var (
				theme *models.Theme
				err   error
			)
			if public {
				theme, err = a.client().GetPublicTheme(ctx, args[0])
			} else {
				theme, err = a.client().GetTheme(ctx, args[0])
			}
			if err != nil {
				return err
			}

			p, err := a.openProfile()
			if err != nil {
				return err
			}
			p.engine.ApplyTheme(theme.ThemeData, dark, appearance.CustomToken(theme.ID, dark))
			if err := p.save(); err != nil {
				return err
			}
			return p.describe(cmd)
		},
	}
	cmd.Flags().BoolVar(&dark, "dark", false, "use the dark variant")
	cmd.Flags().BoolVar(&public, "public", false, "fetch from the marketplace instead of your themes")
	return cmd
}

func newDefaultCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "default [light|dark]",
		Short:     "Switch the preview profile back to the default theme",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{appearance.VariantLight, appearance.VariantDark},
		RunE: func(cmd *cobra.Command, args []string) error {
			variant := ""
			if len(args) == 1 {
				variant = args[0]
			}
			p, err := a.openProfile()
			if err != nil {
				return err
			}
			p.engine.RevertToDefault(variant)
			if err := p.save(); err != nil {
				return err
			}
			return p.describe(cmd)
		},
	}
}

func newResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Remove every theme from the preview profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.openProfile()
			if err != nil {
				return err
			}
			p.engine.RemoveTheme()
			if err := p.save(); err != nil {
				return err
			}
			return p.describe(cmd)
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the preview profile's active theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.openProfile()
			if err != nil {
				return err
			}
			if err := p.save(); err != nil {
				return err
			}
			return p.describe(cmd)
		},
	}
}

func newColorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "color",
		Short: "Convert colors between hex and HSL",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "hex2hsl <hex>",
			Short: "Convert #rrggbb to an HSL triplet",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), colorspace.HexToHSL(args[0]))
				return err
			},
		},
		&cobra.Command{
			Use:   "hsl2hex <hsl>",
			Short: `Convert an HSL triplet such as "217 91% 60%" to #rrggbb`,
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), colorspace.HSLToHex(strings.Join(args, " ")))
				return err
			},
		},
	)
	return cmd
}
