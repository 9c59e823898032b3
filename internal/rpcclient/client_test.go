package rpcclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codr1/mailthemes/internal/api"
	"github.com/codr1/mailthemes/internal/api/authz"
	"github.com/codr1/mailthemes/internal/api/rpc"
	apithemes "github.com/codr1/mailthemes/internal/api/themes"
	"github.com/codr1/mailthemes/internal/models"
	"github.com/codr1/mailthemes/internal/testutil"
	"github.com/codr1/mailthemes/internal/themes"
)

type testServer struct {
	url    string
	tokens *authz.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	database := testutil.NewTestDB(t)
	testutil.SeedConnection(t, database, "conn-a", "user-a")

	router := rpc.NewRouter()
	apithemes.NewHandlers(apithemes.Deps{Service: themes.NewService(database.Queries, themes.WithTransactions(database))}).Register(router)

	tokens := authz.NewTokenService([]byte("client-test-secret"), "mailthemes", time.Hour)
	mux := http.NewServeMux()
	mux.Handle(rpc.PathPrefix, router)
	srv := httptest.NewServer(api.ChainMiddleware(mux, api.WithAuth(tokens), api.WithRequestID))
	t.Cleanup(srv.Close)

	return &testServer{url: srv.URL, tokens: tokens}
}

func (s *testServer) client(t *testing.T, userID string) *Client {
	t.Helper()
	if userID == "" {
		return New(s.url)
	}
	token, err := s.tokens.Issue(userID)
	require.NoError(t, err)
	return New(s.url, WithToken(token))
}

func palette() models.ThemePalette {
	return models.ThemePalette{
		RootColors: models.ColorMap{models.ColorPrimary: "#3b82f6"},
		DarkColors: models.ColorMap{models.ColorPrimary: "217 91% 60%"},
	}
}

func TestThemeLifecycle(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	c := srv.client(t, "user-a")

	conn := "conn-a"
	created, err := c.CreateTheme(ctx, CreateThemeInput{Name: "Ocean", ThemeData: palette(), ConnectionID: &conn})
	require.NoError(t, err)
	assert.Equal(t, "Ocean", created.Name)
	assert.Equal(t, "user-a", created.UserID)

	got, err := c.GetTheme(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, palette(), got.ThemeData)

	name := "Deep Ocean"
	updated, err := c.UpdateTheme(ctx, UpdateThemeInput{ID: created.ID, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Deep Ocean", updated.Name)

	toggled, err := c.TogglePublic(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsPublic)

	list, err := c.ListThemes(ctx, &conn)
	require.NoError(t, err)
	require.Len(t, list, 1)

	deleted, err := c.DeleteTheme(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = c.DeleteTheme(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = c.GetTheme(ctx, created.ID)
	assert.True(t, IsNotFound(err))
}

func TestMarketplaceAndCopy(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	author := srv.client(t, "user-b")
	reader := srv.client(t, "user-a")

	public, err := author.CreateTheme(ctx, CreateThemeInput{Name: "Sunset", ThemeData: palette(), IsPublic: true})
	require.NoError(t, err)

	anonymous := srv.client(t, "")
	listed, err := anonymous.Marketplace(ctx, MarketplaceInput{Query: "sun"})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, public.ID, listed[0].ID)

	fetched, err := anonymous.GetPublicTheme(ctx, public.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sunset", fetched.Name)

	copied, err := reader.CopyPublicTheme(ctx, public.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Sunset (Copy)", copied.Name)
	assert.False(t, copied.IsPublic)
	assert.Nil(t, copied.ConnectionID)
}

func TestConnections(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	c := srv.client(t, "user-a")

	_, err := c.ConnectionThemes(ctx)
	assert.True(t, IsNotFound(err))

	require.NoError(t, c.SetDefaultConnection(ctx, "conn-a"))

	connections, err := c.ListConnections(ctx)
	require.NoError(t, err)
	require.Len(t, connections, 1)
	assert.True(t, connections[0].IsDefault)
	assert.Equal(t, "conn-a@example.com", connections[0].Email)

	themesForConn, err := c.ConnectionThemes(ctx)
	require.NoError(t, err)
	assert.Empty(t, themesForConn)
}

func TestErrors(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	_, err := srv.client(t, "").ListThemes(ctx, nil)
	var rpcErr *Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, "UNAUTHORIZED", rpcErr.Code)
	assert.Equal(t, http.StatusUnauthorized, rpcErr.HTTPStatus)

	_, err = srv.client(t, "user-a").CreateTheme(ctx, CreateThemeInput{Name: "  ", ThemeData: palette()})
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, "BAD_REQUEST", rpcErr.Code)
}

func TestRetryAfterParsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "42")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Too many requests","code":-32029,"data":{"code":"TOO_MANY_REQUESTS","httpStatus":429,"path":"themes.create"}}}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).CreateTheme(context.Background(), CreateThemeInput{Name: "x", ThemeData: palette()})
	var rpcErr *Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, "TOO_MANY_REQUESTS", rpcErr.Code)
	assert.Equal(t, 42*time.Second, rpcErr.RetryAfter)
}
