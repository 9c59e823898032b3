// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/codr1/mailthemes/internal/api"
	"github.com/codr1/mailthemes/internal/api/authz"
	"github.com/codr1/mailthemes/internal/api/rpc"
	apithemes "github.com/codr1/mailthemes/internal/api/themes"
	"github.com/codr1/mailthemes/internal/config"
	"github.com/codr1/mailthemes/internal/db"
	"github.com/codr1/mailthemes/internal/ratelimit"
	"github.com/codr1/mailthemes/internal/themes"
)

type app struct {
	cfg       *config.Config
	database  *db.DB
	tokens    *authz.TokenService
	limiter   *ratelimit.Limiter
	ipLimiter *ratelimit.IPLimiter
	handlers  *apithemes.Handlers
}

func newApp(cfg *config.Config, database *db.DB) *app {
	rules := make(map[string]ratelimit.Rule, len(cfg.RateLimits.Operations))
	for op, rule := range cfg.RateLimits.Operations {
		rules[op] = ratelimit.Rule{Limit: rule.Limit, Window: rule.Window}
	}

	a := &app{
		cfg:       cfg,
		database:  database,
		tokens:    authz.NewTokenService([]byte(cfg.Auth.SigningKey), cfg.Auth.Issuer, cfg.Auth.TokenTTL),
		limiter:   ratelimit.New(&ratelimit.Config{Rules: rules}),
		ipLimiter: ratelimit.NewIPLimiter(cfg.RateLimits.Public.PerMinute, cfg.RateLimits.Public.Burst, nil),
	}
	a.handlers = apithemes.NewHandlers(apithemes.Deps{
		Service:           themes.NewService(database.Queries, themes.WithTransactions(database)),
		Limiter:           a.limiter,
		IPLimiter:         a.ipLimiter,
		TrustForwardedFor: cfg.RateLimits.Public.TrustForwardedFor,
	})
	return a
}

func (a *app) Close() {
	a.limiter.Close()
}

func (a *app) httpServer() *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithAuth(a.tokens),
		api.WithMetrics,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)

	a.registerRoutes(router)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func (a *app) registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := a.database.PingContext(r.Context()); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Health check database ping failed")
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if a.cfg.Features.EnableMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	procedures := rpc.NewRouter()
	a.handlers.Register(procedures)
	log.Debug().Strs("procedures", procedures.Procedures()).Msg("Registered procedures")
	mux.Handle(rpc.PathPrefix, procedures)

	a.handlers.RegisterRoutes(mux)
}
