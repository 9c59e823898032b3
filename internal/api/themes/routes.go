// internal/api/themes/routes.go
package themes

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/blake2b"

	"github.com/codr1/mailthemes/internal/api/rpc"
	"github.com/codr1/mailthemes/internal/appearance"
	"github.com/codr1/mailthemes/internal/models"
	"github.com/codr1/mailthemes/internal/templates/layouts"
	"github.com/codr1/mailthemes/internal/themes"
)

// RegisterRoutes mounts the public theme stylesheet and preview page.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /themes/{file}", h.HandleThemeCSS)
	mux.HandleFunc("GET /themes/{id}/preview", h.HandleThemePreview)
}

// /themes/{id}.css
func (h *Handlers) HandleThemeCSS(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	themeID, ok := strings.CutSuffix(file, ".css")
	if !ok || themeID == "" {
		http.NotFound(w, r)
		return
	}
	if !h.allowPage(w, r, "themes.css") {
		return
	}

	theme, ok := h.loadPublicTheme(w, r, themeID)
	if !ok {
		return
	}

	css := appearance.GenerateCSS(theme.ThemeData)
	etag := cssETag(css)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=300")
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(css)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(css)); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("theme_id", themeID).Msg("Failed to write theme stylesheet")
	}
}

// /themes/{id}/preview
func (h *Handlers) HandleThemePreview(w http.ResponseWriter, r *http.Request) {
	themeID := r.PathValue("id")
	if !h.allowPage(w, r, "themes.preview") {
		return
	}

	theme, ok := h.loadPublicTheme(w, r, themeID)
	if !ok {
		return
	}

	dark := r.URL.Query().Get("variant") == appearance.VariantDark
	css := appearance.GenerateCSS(theme.ThemeData)
	page := layouts.ThemePreview(*theme, css, dark, models.ContrastReport(theme.ThemeData.RootColors))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(r.Context(), w); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("theme_id", themeID).Msg("Failed to render theme preview")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

func (h *Handlers) loadPublicTheme(w http.ResponseWriter, r *http.Request, themeID string) (*models.Theme, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	theme, err := h.publicTheme(ctx, themeID)
	if err != nil {
		if errors.Is(err, themes.ErrNotFound) {
			http.Error(w, "Theme not found", http.StatusNotFound)
			return nil, false
		}
		log.Ctx(r.Context()).Error().Err(err).Str("theme_id", themeID).Msg("Failed to load public theme")
		http.Error(w, "Failed to load theme", http.StatusInternalServerError)
		return nil, false
	}
	return theme, true
}

func (h *Handlers) allowPage(w http.ResponseWriter, r *http.Request, operation string) bool {
	if err := h.checkIPLimit(r.Context(), r, operation); err != nil {
		var rpcErr *rpc.Error
		if errors.As(err, &rpcErr) && rpcErr.RetryAfter > 0 {
			w.Header().Set("Retry-After", rpc.RetryAfterSeconds(rpcErr.RetryAfter))
		}
		http.Error(w, err.Error(), http.StatusTooManyRequests)
		return false
	}
	return true
}

func cssETag(css string) string {
	sum := blake2b.Sum256([]byte(css))
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}
