package appearance

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codr1/mailthemes/internal/models"
)

func samplePalette() models.ThemePalette {
	return models.ThemePalette{
		RootColors: models.ColorMap{
			models.ColorPrimary:    "#ff0000",
			models.ColorBackground: "0 0% 100%",
		},
		DarkColors: models.ColorMap{
			models.ColorBackground: "#000000",
		},
	}
}

func TestGenerateCSS(t *testing.T) {
	css := GenerateCSS(samplePalette())

	want := ":root {\n  --background: 0 0% 100%;\n  --primary: 0 100% 50%;\n}\n.dark {\n  --background: 0 0% 0%;\n}\n"
	assert.Equal(t, want, css)
}

func TestGenerateCSSOmitsEmptyBlocksAndUnsafeValues(t *testing.T) {
	palette := models.ThemePalette{
		RootColors: models.ColorMap{
			models.ColorPrimary: "red; } body { display:none",
			models.ColorBorder:  "214 32% 91%",
		},
	}

	css := GenerateCSS(palette)
	assert.Equal(t, ":root {\n  --border: 214 32% 91%;\n}\n", css)
	assert.NotContains(t, css, ".dark")
	assert.Empty(t, GenerateCSS(models.ThemePalette{}))
}

func TestHTMLDocument(t *testing.T) {
	doc := NewHTMLDocument()

	require.NoError(t, doc.InjectStyle("a", "body{}"))
	require.NoError(t, doc.InjectStyle("a", "p{}"))
	assert.Equal(t, []string{"body{}", "p{}"}, doc.Styles("a"))

	assert.True(t, doc.RemoveElement("a"))
	assert.Empty(t, doc.Styles("a"))
	assert.False(t, doc.RemoveElement("a"))

	assert.Error(t, doc.InjectStyle("b", "</style><script>"))
}

func TestHTMLDocumentColorScheme(t *testing.T) {
	doc, err := ParseHTMLDocument(strings.NewReader(`<html class="font-sans"><head></head><body></body></html>`))
	require.NoError(t, err)

	doc.SetColorScheme(true)
	doc.SetColorScheme(true)
	assert.True(t, doc.IsDark())
	assert.Contains(t, doc.String(), `class="font-sans dark"`)

	doc.SetColorScheme(false)
	assert.False(t, doc.IsDark())
	assert.Contains(t, doc.String(), `class="font-sans"`)
}

func TestFileStoragePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile", "storage.yaml")

	store, err := OpenFileStorage(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyCustomTheme, "theme-1-dark"))
	require.NoError(t, store.Set(KeyDefaultTheme, "default-light"))
	require.NoError(t, store.Remove(KeyDefaultTheme))

	reopened, err := OpenFileStorage(path)
	require.NoError(t, err)
	value, ok := reopened.Get(KeyCustomTheme)
	assert.True(t, ok)
	assert.Equal(t, "theme-1-dark", value)
	_, ok = reopened.Get(KeyDefaultTheme)
	assert.False(t, ok)
}

func TestTokens(t *testing.T) {
	assert.Equal(t, "abc-dark", CustomToken("abc", true))
	assert.Equal(t, "abc-light", CustomToken("abc", false))
	assert.Equal(t, "default-dark", DefaultToken("DARK"))
	assert.Equal(t, "default-light", DefaultToken("sepia"))
	assert.Equal(t, VariantDark, VariantFromToken("abc-dark"))
	assert.Equal(t, VariantLight, VariantFromToken("abc"))
	assert.Equal(t, "abc", ThemeIDFromToken("abc-light"))
}

func newEngine(t *testing.T, store Storage) (*Engine, *HTMLDocument) {
	t.Helper()
	doc := NewHTMLDocument()
	return NewEngine(doc, store, WithLogger(zerolog.Nop())), doc
}

func TestEngineApplyTheme(t *testing.T) {
	store := NewMemoryStorage()
	engine, doc := newEngine(t, store)
	assert.Equal(t, StateNone, engine.State())

	engine.ApplyTheme(samplePalette(), true, "t1-dark")
	engine.ApplyTheme(samplePalette(), true, "t1-dark")

	assert.Equal(t, StateCustom, engine.State())
	assert.Equal(t, "t1-dark", engine.ActiveToken())
	assert.True(t, doc.IsDark())
	assert.Len(t, doc.Styles(StyleElementID), 1)

	token, _ := store.Get(KeyCustomTheme)
	assert.Equal(t, "t1-dark", token)
	raw, ok := store.Get(KeyCustomPalette)
	require.True(t, ok)
	cached, err := models.DecodePalette([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, samplePalette(), cached)
	_, ok = store.Get(KeyDefaultTheme)
	assert.False(t, ok)
}

func TestEngineApplyThemeJSON(t *testing.T) {
	engine, doc := newEngine(t, NewMemoryStorage())

	err := engine.ApplyThemeJSON([]byte(`"{\"rootColors\":{\"primary\":\"#00ff00\"}}"`), false, "t2-light")
	require.NoError(t, err)
	assert.Equal(t, []string{":root {\n  --primary: 120 100% 50%;\n}\n"}, doc.Styles(StyleElementID))

	err = engine.ApplyThemeJSON([]byte(`{"rootColors":`), true, "t3-dark")
	assert.Error(t, err)
	assert.Equal(t, "t2-light", engine.ActiveToken())
	assert.False(t, doc.IsDark())
}

func TestEngineRevertToDefault(t *testing.T) {
	store := NewMemoryStorage()
	engine, doc := newEngine(t, store)

	engine.ApplyTheme(samplePalette(), true, "t1-dark")
	engine.RevertToDefault("")

	assert.Equal(t, StateDefault, engine.State())
	assert.Equal(t, "default-dark", engine.ActiveToken())
	assert.Empty(t, doc.Styles(StyleElementID))
	assert.True(t, doc.IsDark())

	marker, _ := store.Get(KeyDefaultTheme)
	assert.Equal(t, "default-dark", marker)
	_, ok := store.Get(KeyCustomTheme)
	assert.False(t, ok)
	_, ok = store.Get(KeyCustomPalette)
	assert.False(t, ok)

	engine.RevertToDefault("light")
	assert.False(t, doc.IsDark())
	assert.Equal(t, "default-light", engine.ActiveToken())
}

func TestEngineRemoveTheme(t *testing.T) {
	store := NewMemoryStorage()
	engine, doc := newEngine(t, store)

	engine.ApplyTheme(samplePalette(), true, "t1-dark")
	engine.RemoveTheme()

	assert.Equal(t, StateNone, engine.State())
	assert.Empty(t, engine.ActiveToken())
	assert.Empty(t, doc.Styles(StyleElementID))
	for _, key := range []string{KeyCustomTheme, KeyDefaultTheme, KeyCustomPalette} {
		_, ok := store.Get(key)
		assert.False(t, ok, key)
	}
}

func TestEngineInit(t *testing.T) {
	tests := []struct {
		name      string
		seed      map[string]string
		wantState State
		wantToken string
		wantStyle bool
		wantDark  bool
	}{
		{
			name:      "empty_storage",
			wantState: StateDefault,
			wantToken: "default-light",
		},
		{
			name:      "default_marker_wins",
			seed:      map[string]string{KeyDefaultTheme: "default-dark", KeyCustomTheme: "t1-light", KeyCustomPalette: `{"rootColors":{"primary":"#ff0000"}}`},
			wantState: StateDefault,
			wantToken: "default-dark",
			wantDark:  true,
		},
		{
			name:      "custom_restored",
			seed:      map[string]string{KeyCustomTheme: "t1-dark", KeyCustomPalette: `{"rootColors":{"primary":"#ff0000"}}`},
			wantState: StateCustom,
			wantToken: "t1-dark",
			wantStyle: true,
			wantDark:  true,
		},
		{
			name:      "corrupt_palette_falls_back",
			seed:      map[string]string{KeyCustomTheme: "t1-dark", KeyCustomPalette: `not json`},
			wantState: StateDefault,
			wantToken: "default-dark",
			wantDark:  true,
		},
		{
			name:      "missing_palette_falls_back",
			seed:      map[string]string{KeyCustomTheme: "t1-light"},
			wantState: StateDefault,
			wantToken: "default-light",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := NewMemoryStorage()
			for k, v := range test.seed {
				require.NoError(t, store.Set(k, v))
			}
			engine, doc := newEngine(t, store)

			engine.Init()

			assert.Equal(t, test.wantState, engine.State())
			assert.Equal(t, test.wantToken, engine.ActiveToken())
			assert.Equal(t, test.wantStyle, len(doc.Styles(StyleElementID)) == 1)
			assert.Equal(t, test.wantDark, doc.IsDark())
		})
	}
}

type failingStorage struct {
	*MemoryStorage
}

func (failingStorage) Set(string, string) error { return errors.New("quota exceeded") }

func TestEngineSurvivesStorageFailure(t *testing.T) {
	engine, doc := newEngine(t, failingStorage{NewMemoryStorage()})

	engine.ApplyTheme(samplePalette(), false, "t1-light")

	assert.Equal(t, StateCustom, engine.State())
	assert.Len(t, doc.Styles(StyleElementID), 1)
}
