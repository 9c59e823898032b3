package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/codr1/mailthemes/internal/models"
)

func printThemes(w io.Writer, list []models.Theme) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No themes.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPUBLIC\tCONNECTION\tUPDATED")
	for _, theme := range list {
		connection := "-"
		if theme.ConnectionID != nil {
			connection = *theme.ConnectionID
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\n",
			theme.ID, theme.Name, theme.IsPublic, connection, theme.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readPalette(path string) (models.ThemePalette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ThemePalette{}, fmt.Errorf("read palette: %w", err)
	}
	palette, err := models.DecodePalette(data)
	if err != nil {
		return models.ThemePalette{}, fmt.Errorf("palette %s: %w", path, err)
	}
	return palette, nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
