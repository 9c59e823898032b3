// internal/api/themes/handlers.go
package themes

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/mailthemes/internal/api/apiutil"
	"github.com/codr1/mailthemes/internal/api/authz"
	"github.com/codr1/mailthemes/internal/api/rpc"
	"github.com/codr1/mailthemes/internal/models"
	"github.com/codr1/mailthemes/internal/ratelimit"
	"github.com/codr1/mailthemes/internal/themes"
)

const themeQueryTimeout = 5 * time.Second

// Procedure names. The mutating ones double as rate limit operation keys.
const (
	ProcList                = "themes.list"
	ProcGetConnectionThemes = "themes.getConnectionThemes"
	ProcGet                 = "themes.get"
	ProcCreate              = "themes.create"
	ProcUpdate              = "themes.update"
	ProcDelete              = "themes.delete"
	ProcTogglePublic        = "themes.togglePublic"
	ProcMarketplace         = "themes.marketplace"
	ProcGetPublic           = "themes.getPublic"
	ProcCopyPublic          = "themes.copyPublic"
	ProcConnectionsList     = "connections.list"
	ProcConnectionsDefault  = "connections.setDefault"
)

// Handlers serves the theme procedures and the public theme pages.
type Handlers struct {
	service    *themes.Service
	limiter    *ratelimit.Limiter
	ipLimiter  *ratelimit.IPLimiter
	trustProxy bool
}

type Deps struct {
	Service *themes.Service
	// Limiter applies per-user quotas to mutations. Nil disables them.
	Limiter *ratelimit.Limiter
	// IPLimiter throttles public procedures and pages. Nil disables it.
	IPLimiter         *ratelimit.IPLimiter
	TrustForwardedFor bool
}

func NewHandlers(deps Deps) *Handlers {
	return &Handlers{
		service:    deps.Service,
		limiter:    deps.Limiter,
		ipLimiter:  deps.IPLimiter,
		trustProxy: deps.TrustForwardedFor,
	}
}

// Register adds every procedure to router.
func (h *Handlers) Register(router *rpc.Router) {
	router.Query(ProcList, h.list)
	router.Query(ProcGetConnectionThemes, h.getConnectionThemes)
	router.Query(ProcGet, h.get)
	router.Mutation(ProcCreate, h.create)
	router.Mutation(ProcUpdate, h.update)
	router.Mutation(ProcDelete, h.delete)
	router.Mutation(ProcTogglePublic, h.togglePublic)
	router.Query(ProcMarketplace, h.marketplace)
	router.Query(ProcGetPublic, h.getPublic)
	router.Mutation(ProcCopyPublic, h.copyPublic)
	router.Query(ProcConnectionsList, h.listConnections)
	router.Mutation(ProcConnectionsDefault, h.setDefaultConnection)
}

type listRequest struct {
	ConnectionID *string `json:"connectionId"`
}

type themeIDRequest struct {
	ThemeID string `json:"themeId"`
}

type createRequest struct {
	Name         string               `json:"name"`
	Description  *string              `json:"description"`
	ThemeData    *models.ThemePalette `json:"themeData"`
	IsPublic     bool                 `json:"isPublic"`
	ConnectionID *string              `json:"connectionId"`
}

type updateRequest struct {
	ID          string               `json:"id"`
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	ThemeData   *models.ThemePalette `json:"themeData"`
	IsPublic    *bool                `json:"isPublic"`
}

type marketplaceRequest struct {
	Limit  *int   `json:"limit"`
	Offset *int   `json:"offset"`
	Query  string `json:"q"`
}

type copyPublicRequest struct {
	PublicThemeID string  `json:"publicThemeId"`
	ConnectionID  *string `json:"connectionId"`
}

type setDefaultConnectionRequest struct {
	ConnectionID string `json:"connectionId"`
}

type themesResponse struct {
	Themes []models.Theme `json:"themes"`
}

type themeResponse struct {
	Theme *models.Theme `json:"theme"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type connectionsResponse struct {
	Connections []themes.Connection `json:"connections"`
}

func (h *Handlers) list(ctx context.Context, call rpc.Call) (any, error) {
	user, err := authz.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	var req listRequest
	if err := call.DecodeOptional(&req); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, themeQueryTimeout)
	defer cancel()

	list, err := h.service.GetUserThemes(ctx, user.ID, apiutil.OptionalString(req.ConnectionID))
	if err != nil {
		return nil, mapError(err)
	}
	return themesResponse{Themes: list}, nil
}

func (h *Handlers) getConnectionThemes(ctx context.Context, call rpc.Call) (any, error) {
	user, err := authz.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, themeQueryTimeout)
	defer cancel()

	connectionID, err := h.service.GetActiveConnectionID(ctx, user.ID)
	if err != nil {
		return nil, mapError(err)
	}
	list, err := h.service.GetUserThemes(ctx, user.ID, &connectionID)
	if err != nil {
		return nil, mapError(err)
	}
	return themesResponse{Themes: list}, nil
}

func (h *Handlers) get(ctx context.Context, call rpc.Call) (any, error) {
	user, err := authz.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	themeID, err := decodeThemeID(call)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, themeQueryTimeout)
	defer cancel()

	theme, err := h.service.GetThemeByID(ctx, user.ID, themeID)
	if err != nil {
		return nil, mapError(err)
	}
	return themeResponse{Theme: theme}, nil
}

func (h *Handlers) create(ctx context.Context, call rpc.Call) (any, error) {
	user, err := authz.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	var req createRequest
	if err := call.Decode(&req); err != nil {
		return nil, err
	}
	if req.ThemeData == nil {
		return nil, apiutil.FieldError{Field: "themeData", Reason: "is required"}
	}
	input := themes.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		ThemeData:   *req.ThemeData,
		IsPublic:    req.IsPublic,
	}
	if err := input.Validate(); err != nil {
		return nil, mapError(err)
	}
	if err := h.checkUserLimit(ctx, user.ID, ProcCreate); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, themeQueryTimeout)
	defer cancel()

	theme, err := h.service.CreateTheme(ctx, user.ID, apiutil.OptionalString(req.ConnectionID), input)
	if err != nil {
		return nil, mapError(err)
	}

	log.Ctx(ctx).Info().
		Str("user_id", user.ID).
		Str("theme_id", theme.ID).
		Bool("is_public", theme.IsPublic).
		Msg("Theme created")
	return themeResponse{Theme: theme}, nil
}

func (h *Handlers) update(ctx context.Context, call rpc.Call) (any, error) {
	user, err := authz.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	var req updateRequest
	if err := call.Decode(&req); err != nil {
		return nil, err
	}
	themeID, err := apiutil.RequiredString(req.ID, "id")
	if err != nil {
		return nil, err
	}
	patch := themes.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		ThemeData:   req.ThemeData,
		IsPublic:    req.IsPublic,
	}
	if err := patch.Validate(); err != nil {
		return nil, mapError(err)
	}
	if err := h.checkUserLimit(ctx, user.ID, ProcUpdate); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, themeQueryTimeout)
	defer cancel()

	theme, err := h.service.UpdateTheme(ctx, user.ID, themeID, patch)
	if err != nil {
		return nil, mapError(err)
	}
	return themeResponse{Theme: theme}, nil
}

func (h *Handlers) delete(ctx context.Context, call rpc.Call) (any, error) {
	user, err := authz.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	themeID, err := decodeThemeID(call)
	if err != nil {
		return nil, err
	}
	if err := h.checkUserLimit(ctx, user.ID, ProcDelete); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, themeQueryTimeout)
	defer cancel()

	deleted, err := h.service.DeleteTheme(ctx, user.ID, themeID)
	if err != nil {
		return nil, mapError(err)
	}
	if deleted {
		log.Ctx(ctx).Info().Str("user_id", user.ID).Str("theme_id", themeID).Msg("Theme deleted")
	}
	return successResponse{Success: deleted}, nil
}

func (h *Handlers) togglePublic(ctx context.Context, call rpc.Call) (any, error) {
	user, err := authz.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	themeID, err := decodeThemeID(call)
	if err != nil {
		return nil, err
	}
	if err := h.checkUserLimit(ctx, user.ID, ProcTogglePublic); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, themeQueryTimeout)
	defer cancel()

	theme, err := h.service.TogglePublicStatus(ctx, user.ID, themeID)
	if err != nil {
		return nil, mapError(err)
	}
	return themeResponse{Theme: theme}, nil
}

func (h *Handlers) marketplace(ctx context.Context, call rpc.Call) (any, error) {
	if err := h.checkIPLimit(ctx, call.Request, ProcMarketplace); err != nil {
		return nil, err
	}

	var req marketplaceRequest
	if err := call.DecodeOptional(&req); err != nil {
		return nil, err
	}
	limit, err := apiutil.IntInRange(req.Limit, themes.DefaultPublicLimit, 1, themes.MaxPublicLimit, "limit")
	if err != nil {
		return nil, err
	}
	offset, err := apiutil.NonNegativeInt(req.Offset, 0, "offset")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, themeQueryTimeout)
	defer cancel()

	list, err := h.service.GetPublicThemes(ctx, themes.PublicListParams{
		Limit:  limit,
		Offset: offset,
		Search: req.Query,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return themesResponse{Themes: list}, nil
}

func (h *Handlers) getPublic(ctx context.Context, call rpc.Call) (any, error) {
	if err := h.checkIPLimit(ctx, call.Request, ProcGetPublic); err != nil {
		return nil, err
	}
	themeID, err := decodeThemeID(call)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, themeQueryTimeout)
	defer cancel()

	theme, err := h.publicTheme(ctx, themeID)
	if err != nil {
		return nil, mapError(err)
	}
	return themeResponse{Theme: theme}, nil
}

func (h *Handlers) copyPublic(ctx context.Context, call rpc.Call) (any, error) {
	user, err := authz.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	var req copyPublicRequest
	if err := call.Decode(&req); err != nil {
		return nil, err
	}
	publicThemeID, err := apiutil.RequiredString(req.PublicThemeID, "publicThemeId")
	if err != nil {
		return nil, err
	}
	if err := h.checkUserLimit(ctx, user.ID, ProcCopyPublic); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, themeQueryTimeout)
	defer cancel()

	theme, err := h.service.CopyPublicTheme(ctx, user.ID, apiutil.OptionalString(req.ConnectionID), publicThemeID)
	if err != nil {
		return nil, mapError(err)
	}

	log.Ctx(ctx).Info().
		Str("user_id", user.ID).
		Str("theme_id", theme.ID).
		Str("source_theme_id", publicThemeID).
		Msg("Public theme copied")
	return themeResponse{Theme: theme}, nil
}

func (h *Handlers) listConnections(ctx context.Context, call rpc.Call) (any, error) {
	user, err := authz.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, themeQueryTimeout)
	defer cancel()

	connections, err := h.service.ListConnections(ctx, user.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return connectionsResponse{Connections: connections}, nil
}

func (h *Handlers) setDefaultConnection(ctx context.Context, call rpc.Call) (any, error) {
	user, err := authz.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	var req setDefaultConnectionRequest
	if err := call.Decode(&req); err != nil {
		return nil, err
	}
	connectionID, err := apiutil.RequiredString(req.ConnectionID, "connectionId")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, themeQueryTimeout)
	defer cancel()

	if err := h.service.SetActiveConnectionID(ctx, user.ID, connectionID); err != nil {
		return nil, mapError(err)
	}
	return successResponse{Success: true}, nil
}

// publicTheme fetches through the public path and checks the flag again on
// the result, so a theme made private between query and response stays hidden.
func (h *Handlers) publicTheme(ctx context.Context, themeID string) (*models.Theme, error) {
	theme, err := h.service.GetPublicTheme(ctx, themeID)
	if err != nil {
		return nil, err
	}
	if !theme.IsPublic {
		return nil, themes.ErrNotFound
	}
	return theme, nil
}

func decodeThemeID(call rpc.Call) (string, error) {
	var req themeIDRequest
	if err := call.Decode(&req); err != nil {
		return "", err
	}
	return apiutil.RequiredString(req.ThemeID, "themeId")
}

func (h *Handlers) checkUserLimit(ctx context.Context, userID, operation string) error {
	if h.limiter == nil {
		return nil
	}
	result := h.limiter.Allow(userID, operation)
	if result.Allowed {
		return nil
	}
	ratelimit.LogRateLimitExceeded(ctx, operation, userID, result.RetryAfter)
	return tooManyRequests(result.RetryAfter)
}

func (h *Handlers) checkIPLimit(ctx context.Context, r *http.Request, operation string) error {
	if h.ipLimiter == nil || r == nil {
		return nil
	}
	ip := ratelimit.GetClientIP(r, h.trustProxy)
	result := h.ipLimiter.Allow(ip)
	if result.Allowed {
		return nil
	}
	ratelimit.LogRateLimitExceeded(ctx, operation, ip, result.RetryAfter)
	return tooManyRequests(result.RetryAfter)
}

func tooManyRequests(retryAfter time.Duration) error {
	rpcErr := rpc.NewError(rpc.CodeTooManyRequests, "Too many requests, please try again later", nil)
	rpcErr.RetryAfter = retryAfter
	return rpcErr
}

// mapError translates service errors into procedure errors. Anything it does
// not recognize is left for rpc.ToError.
func mapError(err error) error {
	var fieldErr apiutil.FieldError
	switch {
	case errors.Is(err, themes.ErrNotFound):
		return rpc.NewError(rpc.CodeNotFound, "Theme not found", err)
	case errors.Is(err, themes.ErrNoActiveConnection):
		return rpc.NewError(rpc.CodeNotFound, "No active connection", err)
	case errors.As(err, &fieldErr):
		return rpc.NewError(rpc.CodeBadRequest, fieldErr.Error(), err)
	case errors.Is(err, themes.ErrValidation):
		return rpc.NewError(rpc.CodeBadRequest, "Invalid theme input", err)
	case errors.Is(err, themes.ErrCreationFailed):
		return rpc.NewError(rpc.CodeInternalServerError, "Failed to create theme", err)
	case errors.Is(err, context.DeadlineExceeded):
		return rpc.NewError(rpc.CodeInternalServerError, "Request timed out", err)
	}
	return err
}
