package layouts

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codr1/mailthemes/internal/models"
)

func renderPreview(t *testing.T, theme models.Theme, dark bool, checks []models.ContrastCheck) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, ThemePreview(theme, ":root { --primary: 0 100% 50%; }", dark, checks).Render(context.Background(), &buf))
	return buf.String()
}

func TestThemePreviewLight(t *testing.T) {
	description := `Warm & "bright"`
	theme := models.Theme{
		Name:        "Sunset",
		Description: &description,
		ThemeData: models.ThemePalette{RootColors: models.ColorMap{
			models.ColorPrimary:    "#ff0000",
			models.ColorBackground: "0 0% 100%",
		}},
	}
	checks := []models.ContrastCheck{
		{Surface: models.ColorBackground, Text: models.ColorForeground, Ratio: 12.5, Passes: true},
		{Surface: models.ColorPrimary, Text: models.ColorPrimaryForeground, Ratio: 2.5},
	}

	page := renderPreview(t, theme, false, checks)

	assert.Contains(t, page, `<!doctype html><html lang="en"><head>`)
	assert.Contains(t, page, `<style id="custom-theme-styles">:root { --primary: 0 100% 50%; }</style>`)
	assert.Contains(t, page, `<p>Warm &amp; &#34;bright&#34;</p>`)
	assert.Contains(t, page, `<div class="swatch" style="background:hsl(var(--primary));">primary</div>`)
	assert.Contains(t, page, `<tr data-status="pass"><td>background</td><td>foreground</td><td>12.50</td><td>pass</td></tr>`)
	assert.Contains(t, page, `<tr data-status="fail">`)
	assert.NotContains(t, page, `--secondary`)
}

func TestThemePreviewDarkWithoutChecks(t *testing.T) {
	page := renderPreview(t, models.Theme{Name: "Night"}, true, nil)

	assert.Contains(t, page, `<html lang="en" class="dark">`)
	assert.NotContains(t, page, `class="contrast"`)
	assert.NotContains(t, page, `<p>`)
}
