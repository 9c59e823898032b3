// internal/models/themes.go
package models

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/codr1/mailthemes/internal/api/apiutil"
	"github.com/codr1/mailthemes/internal/colorspace"
	dbgen "github.com/codr1/mailthemes/internal/db/generated"
)

const (
	MaxThemeNameLength        = 100
	MaxThemeDescriptionLength = 500
	MaxColorValueLength       = 64
)

// Theme colors often back larger UI elements, not body text, so we use the AA large-text threshold.
const wcagAAMinContrastRatio = 3.0

// ColorKey names one semantic color role of a palette.
type ColorKey string

const (
	ColorBackground               ColorKey = "background"
	ColorForeground               ColorKey = "foreground"
	ColorCard                     ColorKey = "card"
	ColorCardForeground           ColorKey = "card-foreground"
	ColorPopover                  ColorKey = "popover"
	ColorPopoverForeground        ColorKey = "popover-foreground"
	ColorPrimary                  ColorKey = "primary"
	ColorPrimaryForeground        ColorKey = "primary-foreground"
	ColorSecondary                ColorKey = "secondary"
	ColorSecondaryForeground      ColorKey = "secondary-foreground"
	ColorMuted                    ColorKey = "muted"
	ColorMutedForeground          ColorKey = "muted-foreground"
	ColorAccent                   ColorKey = "accent"
	ColorAccentForeground         ColorKey = "accent-foreground"
	ColorDestructive              ColorKey = "destructive"
	ColorDestructiveForeground    ColorKey = "destructive-foreground"
	ColorBorder                   ColorKey = "border"
	ColorInput                    ColorKey = "input"
	ColorRing                     ColorKey = "ring"
	ColorSidebarBackground        ColorKey = "sidebar-background"
	ColorSidebarForeground        ColorKey = "sidebar-foreground"
	ColorSidebarPrimary           ColorKey = "sidebar-primary"
	ColorSidebarPrimaryForeground ColorKey = "sidebar-primary-foreground"
	ColorSidebarAccent            ColorKey = "sidebar-accent"
	ColorSidebarAccentForeground  ColorKey = "sidebar-accent-foreground"
	ColorSidebarBorder            ColorKey = "sidebar-border"
	ColorSidebarRing              ColorKey = "sidebar-ring"
)

// ColorKeys lists every known role in stylesheet order.
var ColorKeys = []ColorKey{
	ColorBackground, ColorForeground,
	ColorCard, ColorCardForeground,
	ColorPopover, ColorPopoverForeground,
	ColorPrimary, ColorPrimaryForeground,
	ColorSecondary, ColorSecondaryForeground,
	ColorMuted, ColorMutedForeground,
	ColorAccent, ColorAccentForeground,
	ColorDestructive, ColorDestructiveForeground,
	ColorBorder, ColorInput, ColorRing,
	ColorSidebarBackground, ColorSidebarForeground,
	ColorSidebarPrimary, ColorSidebarPrimaryForeground,
	ColorSidebarAccent, ColorSidebarAccentForeground,
	ColorSidebarBorder, ColorSidebarRing,
}

var knownColorKeys = func() map[ColorKey]struct{} {
	keys := make(map[ColorKey]struct{}, len(ColorKeys))
	for _, key := range ColorKeys {
		keys[key] = struct{}{}
	}
	return keys
}()

// IsKnownColorKey reports whether key is one of the semantic roles.
func IsKnownColorKey(key ColorKey) bool {
	_, ok := knownColorKeys[key]
	return ok
}

// ColorMap maps semantic roles to color values. Values are either HSL
// triplets or hex colors and are not format checked.
type ColorMap map[ColorKey]string

func (m ColorMap) validate(field string) error {
	for key, value := range m {
		if !IsKnownColorKey(key) {
			return apiutil.FieldError{Field: field + "." + string(key), Reason: "is not a known color key"}
		}
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return apiutil.FieldError{Field: field + "." + string(key), Reason: "must not be empty"}
		}
		if utf8.RuneCountInString(trimmed) > MaxColorValueLength {
			return apiutil.FieldError{
				Field:  field + "." + string(key),
				Reason: fmt.Sprintf("must be %d characters or fewer", MaxColorValueLength),
			}
		}
	}
	return nil
}

// Clone returns an independent copy. A nil map stays nil.
func (m ColorMap) Clone() ColorMap {
	if m == nil {
		return nil
	}
	out := make(ColorMap, len(m))
	for key, value := range m {
		out[key] = value
	}
	return out
}

// ThemePalette holds the light (root) and dark color maps. Either may be absent.
type ThemePalette struct {
	RootColors ColorMap `json:"rootColors,omitempty"`
	DarkColors ColorMap `json:"darkColors,omitempty"`
}

func (p ThemePalette) Validate() error {
	if err := p.RootColors.validate("themeData.rootColors"); err != nil {
		return err
	}
	return p.DarkColors.validate("themeData.darkColors")
}

func (p ThemePalette) Clone() ThemePalette {
	return ThemePalette{
		RootColors: p.RootColors.Clone(),
		DarkColors: p.DarkColors.Clone(),
	}
}

func (p ThemePalette) IsEmpty() bool {
	return len(p.RootColors) == 0 && len(p.DarkColors) == 0
}

// Encode returns the canonical JSON form stored in the database.
func (p ThemePalette) Encode() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode palette: %w", err)
	}
	return string(data), nil
}

// DecodePalette parses palette JSON. It accepts either an object or a JSON
// string whose content is an object, so double-encoded payloads decode the
// same way as plain ones. The decoded palette is validated.
func DecodePalette(raw []byte) (ThemePalette, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ThemePalette{}, apiutil.FieldError{Field: "themeData", Reason: "is required"}
	}

	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return ThemePalette{}, apiutil.FieldError{Field: "themeData", Reason: "must be a JSON object"}
		}
		raw = bytes.TrimSpace([]byte(inner))
	}
	if len(raw) == 0 || raw[0] != '{' {
		return ThemePalette{}, apiutil.FieldError{Field: "themeData", Reason: "must be a JSON object"}
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()

	var fields plainPalette
	if err := decoder.Decode(&fields); err != nil {
		return ThemePalette{}, apiutil.FieldError{Field: "themeData", Reason: fmt.Sprintf("is invalid: %v", err)}
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return ThemePalette{}, apiutil.FieldError{Field: "themeData", Reason: "must contain a single JSON object"}
	}
	palette := ThemePalette(fields)
	if err := palette.Validate(); err != nil {
		return ThemePalette{}, err
	}
	return palette, nil
}

type plainPalette ThemePalette

// UnmarshalJSON routes every JSON palette through DecodePalette. A null
// palette leaves the receiver unchanged.
func (p *ThemePalette) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	decoded, err := DecodePalette(data)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}

type Theme struct {
	ID           string       `json:"id"`
	UserID       string       `json:"userId"`
	ConnectionID *string      `json:"connectionId"`
	Name         string       `json:"name"`
	Description  *string      `json:"description"`
	ThemeData    ThemePalette `json:"themeData"`
	IsPublic     bool         `json:"isPublic"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// ValidateName trims and bounds a theme name.
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", apiutil.FieldError{Field: "name", Reason: "is required"}
	}
	if utf8.RuneCountInString(trimmed) > MaxThemeNameLength {
		return "", apiutil.FieldError{Field: "name", Reason: fmt.Sprintf("must be %d characters or fewer", MaxThemeNameLength)}
	}
	return trimmed, nil
}

// ValidateDescription bounds an optional description. Empty input clears it.
func ValidateDescription(description *string) (*string, error) {
	if description == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*description)
	if utf8.RuneCountInString(trimmed) > MaxThemeDescriptionLength {
		return nil, apiutil.FieldError{
			Field:  "description",
			Reason: fmt.Sprintf("must be %d characters or fewer", MaxThemeDescriptionLength),
		}
	}
	return &trimmed, nil
}

func (t Theme) Validate() error {
	if _, err := ValidateName(t.Name); err != nil {
		return err
	}
	if _, err := ValidateDescription(t.Description); err != nil {
		return err
	}
	return t.ThemeData.Validate()
}

// CopyName derives the name of a copied theme, keeping it within the name limit.
func CopyName(name string) string {
	const suffix = " (Copy)"
	base := []rune(strings.TrimSpace(name))
	if max := MaxThemeNameLength - utf8.RuneCountInString(suffix); len(base) > max {
		base = []rune(strings.TrimSpace(string(base[:max])))
	}
	return string(base) + suffix
}

// ThemeFromDB converts a stored row. Palette JSON that no longer parses
// yields an empty palette rather than failing the whole read.
func ThemeFromDB(row dbgen.Theme) Theme {
	var connectionID *string
	if row.ConnectionID.Valid {
		id := row.ConnectionID.String
		connectionID = &id
	}
	var description *string
	if row.Description.Valid {
		value := row.Description.String
		description = &value
	}

	palette, err := DecodePalette([]byte(row.ThemeData))
	if err != nil {
		palette = ThemePalette{}
	}

	return Theme{
		ID:           row.ID,
		UserID:       row.UserID,
		ConnectionID: connectionID,
		Name:         row.Name,
		Description:  description,
		ThemeData:    palette,
		IsPublic:     row.IsPublic,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func ThemesFromDB(rows []dbgen.Theme) []Theme {
	results := make([]Theme, 0, len(rows))
	for _, row := range rows {
		results = append(results, ThemeFromDB(row))
	}
	return results
}

// NullString maps an optional value onto a nullable column.
func NullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

// ContrastCheck is the contrast between a surface role and the text role drawn on it.
type ContrastCheck struct {
	Surface ColorKey
	Text    ColorKey
	Ratio   float64
	Passes  bool
}

var contrastPairs = [][2]ColorKey{
	{ColorBackground, ColorForeground},
	{ColorCard, ColorCardForeground},
	{ColorPopover, ColorPopoverForeground},
	{ColorPrimary, ColorPrimaryForeground},
	{ColorSecondary, ColorSecondaryForeground},
	{ColorMuted, ColorMutedForeground},
	{ColorAccent, ColorAccentForeground},
	{ColorDestructive, ColorDestructiveForeground},
	{ColorSidebarBackground, ColorSidebarForeground},
	{ColorSidebarPrimary, ColorSidebarPrimaryForeground},
	{ColorSidebarAccent, ColorSidebarAccentForeground},
}

// ContrastReport computes WCAG contrast for every surface/text pair present
// in colors. Pairs with a missing or unparseable color are skipped.
func ContrastReport(colors ColorMap) []ContrastCheck {
	var checks []ContrastCheck
	for _, pair := range contrastPairs {
		surface, ok := relativeLuminance(colors[pair[0]])
		if !ok {
			continue
		}
		text, ok := relativeLuminance(colors[pair[1]])
		if !ok {
			continue
		}
		lightest := math.Max(surface, text)
		darkest := math.Min(surface, text)
		ratio := (lightest + 0.05) / (darkest + 0.05)
		checks = append(checks, ContrastCheck{
			Surface: pair[0],
			Text:    pair[1],
			Ratio:   ratio,
			Passes:  ratio >= wcagAAMinContrastRatio,
		})
	}
	return checks
}

func relativeLuminance(value string) (float64, bool) {
	if value == "" {
		return 0, false
	}
	c, ok := colorspace.Parse(value)
	if !ok {
		return 0, false
	}
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b, true
}
