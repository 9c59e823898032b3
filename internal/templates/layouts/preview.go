package layouts

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/codr1/mailthemes/internal/models"
)

// PreviewStyleID matches the style id the appearance engine injects, so the
// preview page and an applied theme style the same selectors.
const PreviewStyleID = "custom-theme-styles"

// themeStyle wraps generated theme css in the injected style element.
func themeStyle(css string) string {
	return `<style id="` + PreviewStyleID + `">` + css + `</style>`
}

// paletteKeys returns the light palette roles in stylesheet order.
func paletteKeys(palette models.ThemePalette) []models.ColorKey {
	keys := make([]models.ColorKey, 0, len(palette.RootColors))
	for _, key := range models.ColorKeys {
		if _, ok := palette.RootColors[key]; ok {
			keys = append(keys, key)
		}
	}
	return keys
}

func swatchStyle(key models.ColorKey) templ.SafeCSS {
	return templ.SafeCSS("background:hsl(var(--" + string(key) + "))")
}

func contrastStatus(check models.ContrastCheck) string {
	if check.Passes {
		return "pass"
	}
	return "fail"
}

func formatRatio(ratio float64) string {
	return strconv.FormatFloat(ratio, 'f', 2, 64)
}
