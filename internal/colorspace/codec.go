// Package colorspace converts theme colors between the hex and HSL string
// encodings used by stored palettes and generated stylesheets.
package colorspace

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	fallbackHSL = "0 0% 0%"
	fallbackHex = "#000000"
	hexDigits   = 6
)

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// IsHex reports whether value is a #rrggbb color.
func IsHex(value string) bool {
	return hexColorRegex.MatchString(strings.TrimSpace(value))
}

// HexToHSL converts a hex color into an "H S% L%" triplet.
// Input shorter than six digits is zero-padded on the right and longer input is
// truncated. Malformed input yields "0 0% 0%".
func HexToHSL(hex string) string {
	digits := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(digits) < hexDigits {
		digits += strings.Repeat("0", hexDigits-len(digits))
	}
	digits = digits[:hexDigits]

	value, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return fallbackHSL
	}
	return rgbTriplet(uint8(value>>16), uint8(value>>8), uint8(value)).String()
}

// HSLToHex converts an "H S% L%" triplet into a #rrggbb color.
// The percent signs are optional. Hue wraps into [0,360) and saturation and
// lightness are clamped into [0,100]. Malformed input yields "#000000".
//
// For a triplet in the form HexToHSL produces, the result is a color that
// HexToHSL maps back to the same triplet, so conversions settle after one
// round trip.
func HSLToHex(hsl string) string {
	h, s, l, inRange, ok := parseHSLValues(hsl)
	if !ok {
		return fallbackHex
	}
	c := colorful.Hsl(h, s/100, l/100).Clamped()
	r, g, b := toByte(c.R), toByte(c.G), toByte(c.B)

	if want, canonical := canonicalTriplet(h, s, l); canonical && inRange {
		if pr, pg, pb, found := nearestPreimage(r, g, b, want); found {
			r, g, b = pr, pg, pb
		}
	}
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// Parse reads a color stored in either encoding. It reports false when the
// value is neither a #rrggbb color nor a three-part HSL triplet.
func Parse(value string) (colorful.Color, bool) {
	value = strings.TrimSpace(value)
	if IsHex(value) {
		c, err := colorful.Hex(strings.ToLower(value))
		return c, err == nil
	}
	h, s, l, _, ok := parseHSLValues(value)
	if !ok {
		return colorful.Color{}, false
	}
	return colorful.Hsl(h, s/100, l/100).Clamped(), true
}

// triplet is an HSL color with integer components, as written in the string form.
type triplet struct {
	h, s, l int
}

func (t triplet) String() string {
	return fmt.Sprintf("%d %d%% %d%%", t.h, t.s, t.l)
}

func rgbTriplet(r, g, b uint8) triplet {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	h, s, l := c.Hsl()
	return triplet{
		h: int(math.Round(h)) % 360,
		s: int(math.Round(s * 100)),
		l: int(math.Round(l * 100)),
	}
}

// canonicalTriplet reports whether h, s and l are whole numbers, the only
// form HexToHSL emits.
func canonicalTriplet(h, s, l float64) (triplet, bool) {
	for _, v := range []float64{h, s, l} {
		if v != math.Trunc(v) {
			return triplet{}, false
		}
	}
	return triplet{h: int(h), s: int(s), l: int(l)}, true
}

// preimageRadius bounds the per-channel distance searched around the direct
// conversion. Every triplet HexToHSL can return has a preimage within 3.
const preimageRadius = 4

// nearestPreimage looks for the color closest to (r, g, b), by largest channel
// difference, whose triplet is want.
func nearestPreimage(r, g, b uint8, want triplet) (uint8, uint8, uint8, bool) {
	for d := 0; d <= preimageRadius; d++ {
		for dr := -d; dr <= d; dr++ {
			for dg := -d; dg <= d; dg++ {
				for db := -d; db <= d; db++ {
					if max(abs(dr), abs(dg), abs(db)) != d {
						continue
					}
					cr, okR := offset(r, dr)
					cg, okG := offset(g, dg)
					cb, okB := offset(b, db)
					if okR && okG && okB && rgbTriplet(cr, cg, cb) == want {
						return cr, cg, cb, true
					}
				}
			}
		}
	}
	return 0, 0, 0, false
}

func offset(channel uint8, delta int) (uint8, bool) {
	v := int(channel) + delta
	if v < 0 || v > 255 {
		return 0, false
	}
	return uint8(v), true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// parseHSLValues returns hue in [0,360) and saturation and lightness in
// [0,100]. inRange is false when any component had to be wrapped or clamped.
func parseHSLValues(hsl string) (h, s, l float64, inRange, ok bool) {
	fields := strings.Fields(hsl)
	if len(fields) != 3 {
		return 0, 0, 0, false, false
	}

	values := make([]float64, 3)
	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSuffix(field, "%"), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, 0, false, false
		}
		values[i] = v
	}

	hue := math.Mod(values[0], 360)
	if hue < 0 {
		hue += 360
	}
	h, s, l = hue, clampPercent(values[1]), clampPercent(values[2])
	inRange = h == values[0] && s == values[1] && l == values[2]
	return h, s, l, inRange, true
}

func clampPercent(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func toByte(channel float64) uint8 {
	return uint8(math.Round(channel * 255))
}
