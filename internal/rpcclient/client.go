// Package rpcclient calls the theme procedures over HTTP.
package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/codr1/mailthemes/internal/models"
)

const (
	defaultTimeout = 15 * time.Second
	pathPrefix     = "/api/trpc/"
)

// Error is a procedure error returned by the server.
type Error struct {
	Procedure  string
	Code       string
	HTTPStatus int
	Message    string
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Procedure, e.Message, e.Code)
}

// IsNotFound reports whether err is a NOT_FOUND procedure error.
func IsNotFound(err error) bool {
	var rpcErr *Error
	return errors.As(err, &rpcErr) && rpcErr.Code == "NOT_FOUND"
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sends token as a bearer credential on every call.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type CreateThemeInput struct {
	Name         string              `json:"name"`
	Description  *string             `json:"description,omitempty"`
	ThemeData    models.ThemePalette `json:"themeData"`
	IsPublic     bool                `json:"isPublic"`
	ConnectionID *string             `json:"connectionId,omitempty"`
}

type UpdateThemeInput struct {
	ID          string               `json:"id"`
	Name        *string              `json:"name,omitempty"`
	Description *string              `json:"description,omitempty"`
	ThemeData   *models.ThemePalette `json:"themeData,omitempty"`
	IsPublic    *bool                `json:"isPublic,omitempty"`
}

type MarketplaceInput struct {
	Limit  *int   `json:"limit,omitempty"`
	Offset *int   `json:"offset,omitempty"`
	Query  string `json:"q,omitempty"`
}

type Connection struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	ProviderID string    `json:"providerId"`
	IsDefault  bool      `json:"isDefault"`
	CreatedAt  time.Time `json:"createdAt"`
}

type themeOutput struct {
	Theme models.Theme `json:"theme"`
}

type themesOutput struct {
	Themes []models.Theme `json:"themes"`
}

type successOutput struct {
	Success bool `json:"success"`
}

type connectionsOutput struct {
	Connections []Connection `json:"connections"`
}

func (c *Client) ListThemes(ctx context.Context, connectionID *string) ([]models.Theme, error) {
	var input any
	if connectionID != nil {
		input = map[string]string{"connectionId": *connectionID}
	}
	var out themesOutput
	if err := c.query(ctx, "themes.list", input, &out); err != nil {
		return nil, err
	}
	return out.Themes, nil
}

func (c *Client) ConnectionThemes(ctx context.Context) ([]models.Theme, error) {
	var out themesOutput
	if err := c.query(ctx, "themes.getConnectionThemes", nil, &out); err != nil {
		return nil, err
	}
	return out.Themes, nil
}

func (c *Client) GetTheme(ctx context.Context, themeID string) (*models.Theme, error) {
	var out themeOutput
	if err := c.query(ctx, "themes.get", map[string]string{"themeId": themeID}, &out); err != nil {
		return nil, err
	}
	return &out.Theme, nil
}

func (c *Client) CreateTheme(ctx context.Context, input CreateThemeInput) (*models.Theme, error) {
	var out themeOutput
	if err := c.mutate(ctx, "themes.create", input, &out); err != nil {
		return nil, err
	}
	return &out.Theme, nil
}

func (c *Client) UpdateTheme(ctx context.Context, input UpdateThemeInput) (*models.Theme, error) {
	var out themeOutput
	if err := c.mutate(ctx, "themes.update", input, &out); err != nil {
		return nil, err
	}
	return &out.Theme, nil
}

// DeleteTheme reports whether a theme was deleted.
func (c *Client) DeleteTheme(ctx context.Context, themeID string) (bool, error) {
	var out successOutput
	if err := c.mutate(ctx, "themes.delete", map[string]string{"themeId": themeID}, &out); err != nil {
		return false, err
	}
	return out.Success, nil
}

func (c *Client) TogglePublic(ctx context.Context, themeID string) (*models.Theme, error) {
	var out themeOutput
	if err := c.mutate(ctx, "themes.togglePublic", map[string]string{"themeId": themeID}, &out); err != nil {
		return nil, err
	}
	return &out.Theme, nil
}

func (c *Client) Marketplace(ctx context.Context, input MarketplaceInput) ([]models.Theme, error) {
	var out themesOutput
	if err := c.query(ctx, "themes.marketplace", input, &out); err != nil {
		return nil, err
	}
	return out.Themes, nil
}

func (c *Client) GetPublicTheme(ctx context.Context, themeID string) (*models.Theme, error) {
	var out themeOutput
	if err := c.query(ctx, "themes.getPublic", map[string]string{"themeId": themeID}, &out); err != nil {
		return nil, err
	}
	return &out.Theme, nil
}

func (c *Client) CopyPublicTheme(ctx context.Context, publicThemeID string, connectionID *string) (*models.Theme, error) {
	input := map[string]string{"publicThemeId": publicThemeID}
	if connectionID != nil {
		input["connectionId"] = *connectionID
	}
	var out themeOutput
	if err := c.mutate(ctx, "themes.copyPublic", input, &out); err != nil {
		return nil, err
	}
	return &out.Theme, nil
}

func (c *Client) ListConnections(ctx context.Context) ([]Connection, error) {
	var out connectionsOutput
	if err := c.query(ctx, "connections.list", nil, &out); err != nil {
		return nil, err
	}
	return out.Connections, nil
}

func (c *Client) SetDefaultConnection(ctx context.Context, connectionID string) error {
	var out successOutput
	return c.mutate(ctx, "connections.setDefault", map[string]string{"connectionId": connectionID}, &out)
}

func (c *Client) query(ctx context.Context, procedure string, input, out any) error {
	endpoint := c.baseURL + pathPrefix + procedure
	if input != nil {
		raw, err := json.Marshal(input)
		if err != nil {
			return fmt.Errorf("encode %s input: %w", procedure, err)
		}
		endpoint += "?input=" + url.QueryEscape(string(raw))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, procedure, out)
}

func (c *Client) mutate(ctx context.Context, procedure string, input, out any) error {
	raw, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("encode %s input: %w", procedure, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathPrefix+procedure, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, procedure, out)
}

type envelope struct {
	Result *struct {
		Data json.RawMessage `json:"data"`
	} `json:"result"`
	Error *struct {
		Message string `json:"message"`
		Data    struct {
			Code       string `json:"code"`
			HTTPStatus int    `json:"httpStatus"`
		} `json:"data"`
	} `json:"error"`
}

func (c *Client) do(req *http.Request, procedure string, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", procedure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", procedure, err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode %s response (status %d): %w", procedure, resp.StatusCode, err)
	}
	if env.Error != nil {
		rpcErr := &Error{
			Procedure:  procedure,
			Code:       env.Error.Data.Code,
			HTTPStatus: resp.StatusCode,
			Message:    env.Error.Message,
		}
		if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			rpcErr.RetryAfter = time.Duration(seconds) * time.Second
		}
		return rpcErr
	}
	if env.Result == nil {
		return fmt.Errorf("%s: response has neither result nor error", procedure)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result.Data, out); err != nil {
		return fmt.Errorf("decode %s result: %w", procedure, err)
	}
	return nil
}
