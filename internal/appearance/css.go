package appearance

import (
	"strings"

	"github.com/codr1/mailthemes/internal/colorspace"
	"github.com/codr1/mailthemes/internal/models"
)

// unsafeCSSChars would let a color value escape its declaration or the style element.
const unsafeCSSChars = ";{}<>\\\n\r"

// GenerateCSS renders a palette as custom property blocks: rootColors under
// :root and darkColors under .dark. Keys are written in models.ColorKeys order
// and hex values are converted to HSL triplets so every property uses the same
// encoding. Values that could break out of a declaration are omitted.
func GenerateCSS(palette models.ThemePalette) string {
	var b strings.Builder
	writeBlock(&b, ":root", palette.RootColors)
	writeBlock(&b, ".dark", palette.DarkColors)
	return b.String()
}

func writeBlock(b *strings.Builder, selector string, colors models.ColorMap) {
	if len(colors) == 0 {
		return
	}
	b.WriteString(selector)
	b.WriteString(" {\n")
	for _, key := range models.ColorKeys {
		value, ok := colors[key]
		if !ok {
			continue
		}
		value = normalizeValue(value)
		if value == "" {
			continue
		}
		b.WriteString("  --")
		b.WriteString(string(key))
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString(";\n")
	}
	b.WriteString("}\n")
}

func normalizeValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.ContainsAny(value, unsafeCSSChars) {
		return ""
	}
	if colorspace.IsHex(value) {
		return colorspace.HexToHSL(value)
	}
	return value
}
