package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codr1/mailthemes/internal/api/authz"
)

func TestChainMiddlewareOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := ChainMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), mark("inner"), mark("outer"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Fatalf("order = %v", order)
	}
}

func TestWithRequestIDAndLogging(t *testing.T) {
	var seen string
	h := ChainMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}), WithLogging, WithRequestID)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if seen == "" || rec.Header().Get("X-Request-ID") != seen {
		t.Fatalf("request id = %q, header = %q", seen, rec.Header().Get("X-Request-ID"))
	}
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestWithRecovery(t *testing.T) {
	h := WithRecovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestWithAuth(t *testing.T) {
	tokens := authz.NewTokenService([]byte("test-secret"), "mailthemes", time.Hour)
	token, err := tokens.Issue("user-1")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "valid", header: "Bearer " + token, want: "user-1"},
		{name: "missing", header: "", want: ""},
		{name: "invalid", header: "Bearer not-a-token", want: ""},
		{name: "wrong_scheme", header: "Basic " + token, want: ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var got string
			h := WithAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if user := authz.UserFromContext(r.Context()); user != nil {
					got = user.ID
				}
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if test.header != "" {
				req.Header.Set("Authorization", test.header)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != test.want {
				t.Fatalf("user = %q, want %q", got, test.want)
			}
		})
	}
}

func TestRouteGroup(t *testing.T) {
	tests := map[string]string{
		"/api/trpc/themes.list": "rpc",
		"/themes/abc.css":       "themes",
		"/health":               "health",
		"/metrics":              "metrics",
		"/favicon.ico":          "other",
	}
	for path, want := range tests {
		if got := routeGroup(path); got != want {
			t.Fatalf("routeGroup(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestWithMetricsCapturesImplicitStatus(t *testing.T) {
	var captured *responseWriter
	h := WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = w.(*responseWriter)
		_, _ = w.Write([]byte("ok"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	if captured == nil || captured.Status() != http.StatusOK {
		t.Fatalf("expected implicit 200 status")
	}
}
