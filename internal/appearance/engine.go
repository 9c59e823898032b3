// Package appearance applies theme palettes to a document and remembers the
// active selection in client storage.
package appearance

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/mailthemes/internal/models"
)

// StyleElementID is the id of the single injected custom theme stylesheet.
const StyleElementID = "custom-theme-styles"

const (
	VariantLight = "light"
	VariantDark  = "dark"

	defaultTokenPrefix = "default-"
)

type State int

const (
	StateNone State = iota
	StateDefault
	StateCustom
)

func (s State) String() string {
	switch s {
	case StateDefault:
		return "default"
	case StateCustom:
		return "custom"
	default:
		return "none"
	}
}

// CustomToken builds the selection token for a saved theme.
func CustomToken(themeID string, dark bool) string {
	return themeID + "-" + variantName(dark)
}

// DefaultToken builds the selection token for the built-in theme.
func DefaultToken(variant string) string {
	return defaultTokenPrefix + normalizeVariant(variant)
}

// VariantFromToken returns dark for tokens ending in -dark and light otherwise.
func VariantFromToken(token string) string {
	if strings.HasSuffix(token, "-"+VariantDark) {
		return VariantDark
	}
	return VariantLight
}

// ThemeIDFromToken strips the variant suffix from a custom token.
func ThemeIDFromToken(token string) string {
	for _, suffix := range []string{"-" + VariantDark, "-" + VariantLight} {
		if strings.HasSuffix(token, suffix) {
			return strings.TrimSuffix(token, suffix)
		}
	}
	return token
}

func variantName(dark bool) string {
	if dark {
		return VariantDark
	}
	return VariantLight
}

func normalizeVariant(variant string) string {
	if strings.EqualFold(strings.TrimSpace(variant), VariantDark) {
		return VariantDark
	}
	return VariantLight
}

// Engine moves a document between no theme, the default theme and a custom
// palette. Each transition removes the previous stylesheet before adding a new
// one, so the document never holds more than one. Storage and document
// failures are logged and do not abort a transition.
type Engine struct {
	doc    Document
	store  Storage
	logger zerolog.Logger

	mu     sync.Mutex
	state  State
	token  string
	isDark bool
}

type EngineOption func(*Engine)

func WithLogger(logger zerolog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

func NewEngine(doc Document, store Storage, opts ...EngineOption) *Engine {
	e := &Engine{
		doc:    doc,
		store:  store,
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// ActiveToken returns the token of the applied selection, empty in StateNone.
func (e *Engine) ActiveToken() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.token
}

// IsDark reports the color scheme last set on the document.
func (e *Engine) IsDark() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isDark
}

// ApplyTheme replaces any custom stylesheet with one generated from palette
// and records token as the active custom selection.
func (e *Engine) ApplyTheme(palette models.ThemePalette, isDark bool, token string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applyLocked(palette, isDark, token)
}

// ApplyThemeJSON decodes palette JSON (an object or a JSON-encoded string of
// one) and applies it. Nothing changes when decoding fails.
func (e *Engine) ApplyThemeJSON(raw []byte, isDark bool, token string) error {
	palette, err := models.DecodePalette(raw)
	if err != nil {
		return err
	}
	e.ApplyTheme(palette, isDark, token)
	return nil
}

// RevertToDefault drops the custom stylesheet and selects the default theme.
// An empty variant keeps the variant of the active selection.
func (e *Engine) RevertToDefault(variant string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.revertLocked(variant)
}

// RemoveTheme clears the stylesheet and every stored selection key.
func (e *Engine) RemoveTheme() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.doc.RemoveElement(StyleElementID)
	for _, key := range []string{KeyCustomTheme, KeyDefaultTheme, KeyCustomPalette} {
		e.remove(key)
	}
	e.setScheme(false)
	e.state = StateNone
	e.token = ""
}

// Init restores the persisted selection. A default marker wins over a custom
// one. A custom marker whose cached palette is missing or unreadable falls
// back to the default theme. With no marker the light default is selected.
func (e *Engine) Init() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if marker, ok := e.store.Get(KeyDefaultTheme); ok && marker != "" {
		e.revertLocked(VariantFromToken(marker))
		return
	}

	if marker, ok := e.store.Get(KeyCustomTheme); ok && marker != "" {
		e.token = marker
		raw, ok := e.store.Get(KeyCustomPalette)
		if !ok || raw == "" {
			e.logger.Warn().Str("token", marker).Msg("Custom theme selected without cached palette, reverting to default")
			e.revertLocked("")
			return
		}
		palette, err := models.DecodePalette([]byte(raw))
		if err != nil {
			e.logger.Warn().Err(err).Str("token", marker).Msg("Cached custom theme palette is unreadable, reverting to default")
			e.revertLocked("")
			return
		}
		e.applyLocked(palette, VariantFromToken(marker) == VariantDark, marker)
		return
	}

	e.revertLocked(VariantLight)
}

func (e *Engine) applyLocked(palette models.ThemePalette, isDark bool, token string) {
	e.doc.RemoveElement(StyleElementID)
	e.setScheme(isDark)
	if err := e.doc.InjectStyle(StyleElementID, GenerateCSS(palette)); err != nil {
		e.logger.Error().Err(err).Str("token", token).Msg("Failed to inject custom theme styles")
	}

	e.state = StateCustom
	e.token = token

	if encoded, err := palette.Encode(); err != nil {
		e.logger.Error().Err(err).Str("token", token).Msg("Failed to encode custom theme palette")
	} else {
		e.set(KeyCustomPalette, encoded)
	}
	e.set(KeyCustomTheme, token)
	e.remove(KeyDefaultTheme)
}

func (e *Engine) revertLocked(variant string) {
	if strings.TrimSpace(variant) == "" {
		variant = VariantFromToken(e.token)
	}
	variant = normalizeVariant(variant)

	e.doc.RemoveElement(StyleElementID)
	e.setScheme(variant == VariantDark)

	token := DefaultToken(variant)
	e.set(KeyDefaultTheme, token)
	e.remove(KeyCustomTheme)
	e.remove(KeyCustomPalette)

	e.state = StateDefault
	e.token = token
}

func (e *Engine) setScheme(dark bool) {
	e.doc.SetColorScheme(dark)
	e.isDark = dark
}

func (e *Engine) set(key, value string) {
	if err := e.store.Set(key, value); err != nil {
		e.logger.Warn().Err(err).Str("key", key).Msg("Failed to persist theme selection")
	}
}

func (e *Engine) remove(key string) {
	if err := e.store.Remove(key); err != nil {
		e.logger.Warn().Err(err).Str("key", key).Msg("Failed to clear theme selection")
	}
}
