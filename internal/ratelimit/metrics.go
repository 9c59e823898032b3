package ratelimit

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var rejectionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mailthemes_rate_limit_rejections_total",
		Help: "Total number of calls rejected by a rate limit.",
	},
	[]string{"operation"},
)

func init() {
	prometheus.MustRegister(rejectionsTotal)
}

// SanitizeIdentifier masks a user id or IP for logging.
func SanitizeIdentifier(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if len(identifier) > 4 {
		return "***" + identifier[len(identifier)-4:]
	}
	return "***"
}

// LogRateLimitExceeded logs a rejection with a masked identifier and counts it.
func LogRateLimitExceeded(ctx context.Context, operation, identifier string, retryAfter time.Duration) {
	rejectionsTotal.WithLabelValues(operation).Inc()
	log.Ctx(ctx).Warn().
		Str("event", "rate_limit_exceeded").
		Str("operation", operation).
		Str("identifier", SanitizeIdentifier(identifier)).
		Dur("retry_after", retryAfter).
		Msg("Rate limit exceeded")
}
