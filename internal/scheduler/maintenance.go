package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/mailthemes/internal/config"
)

const (
	JobIPPrune    = "ratelimit-ip-prune"
	JobDBOptimize = "db-optimize"

	dbOptimizeTimeout = time.Minute
)

// IPPruner drops idle per-IP limiter state.
type IPPruner interface {
	Prune(idle time.Duration) int
}

// Optimizer refreshes database planner statistics.
type Optimizer interface {
	Optimize(ctx context.Context) error
}

// RegisterMaintenanceJobs schedules limiter pruning and database optimization.
func RegisterMaintenanceJobs(s *Service, cfg config.SchedulerConfig, limiter IPPruner, database Optimizer) error {
	if limiter != nil {
		if _, err := s.AddJob(JobIPPrune, cfg.IPPruneCron, func() {
			PruneIPLimiter(limiter, cfg.IPIdleTimeout)
		}); err != nil {
			return fmt.Errorf("register %s: %w", JobIPPrune, err)
		}
	}
	if database != nil {
		if _, err := s.AddJob(JobDBOptimize, cfg.DBOptimizeCron, func() {
			ctx, cancel := context.WithTimeout(context.Background(), dbOptimizeTimeout)
			defer cancel()
			_ = OptimizeDatabase(ctx, database)
		}); err != nil {
			return fmt.Errorf("register %s: %w", JobDBOptimize, err)
		}
	}
	return nil
}

// PruneIPLimiter removes limiter entries idle for longer than idle.
func PruneIPLimiter(limiter IPPruner, idle time.Duration) int {
	removed := limiter.Prune(idle)
	if removed > 0 {
		log.Info().Str("job_name", JobIPPrune).Int("removed", removed).Msg("Pruned idle IP limiters")
	}
	return removed
}

// OptimizeDatabase runs the database optimizer and logs failures.
func OptimizeDatabase(ctx context.Context, database Optimizer) error {
	start := time.Now()
	if err := database.Optimize(ctx); err != nil {
		log.Error().Err(err).Str("job_name", JobDBOptimize).Msg("Database optimize failed")
		return err
	}
	log.Debug().Str("job_name", JobDBOptimize).Dur("duration", time.Since(start)).Msg("Database optimized")
	return nil
}
