package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/renova-habitat/gestion-api/internal/cache"
	"github.com/renova-habitat/gestion-api/internal/repository"
	"github.com/renova-habitat/gestion-api/internal/service"
	"go.uber.org/zap"
)

// WarmupJob prewarms the dashboard metrics cache for every active
// organization so the first dashboard load after the TTL expires does not pay
// the aggregation cost.
type WarmupJob struct {
	organizations *repository.OrganizationRepository
	dashboard     *service.DashboardService
	cache         cache.Provider
	logger        *zap.Logger
	timeout       time.Duration
}

func NewWarmupJob(
	organizations *repository.OrganizationRepository,
	dashboard *service.DashboardService,
	cacheProvider cache.Provider,
	logger *zap.Logger,
	timeout time.Duration,
) *WarmupJob {
	return &WarmupJob{
		organizations: organizations,
		dashboard:     dashboard,
		cache:         cacheProvider,
		logger:        logger,
		timeout:       timeout,
	}
}

// Run refreshes the cached metrics snapshot of every organization whose entry
// is stale. Per-organization failures are logged and skipped so one broken
// tenant does not starve the rest.
func (j *WarmupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	orgs, err := j.organizations.ListActive(ctx)
	if err != nil {
		j.logger.Error("warmup: failed to list organizations", zap.Error(err))
		return
	}

	var warmed, skipped int
	for _, org := range orgs {
		key := cache.Key("dashboard", org.ID.String(), "metrics")

		stale, err := j.cache.IsStale(ctx, key)
		if err != nil {
			j.logger.Warn("warmup: staleness check failed",
				zap.String("organization_id", org.ID.String()),
				zap.Error(err))
		}
		if !stale {
			skipped++
			continue
		}

		metrics, err := j.dashboard.GetMetrics(ctx, org.ID)
		if err != nil {
			j.logger.Warn("warmup: metrics aggregation failed",
				zap.String("organization_id", org.ID.String()),
				zap.Error(err))
			continue
		}

		payload, err := json.Marshal(metrics)
		if err != nil {
			j.logger.Warn("warmup: failed to serialize metrics",
				zap.String("organization_id", org.ID.String()),
				zap.Error(err))
			continue
		}
		if err := j.cache.Set(ctx, key, payload); err != nil {
			j.logger.Warn("warmup: failed to cache metrics",
				zap.String("organization_id", org.ID.String()),
				zap.Error(err))
			continue
		}
		warmed++
	}

	j.logger.Info("warmup: dashboard cache refreshed",
		zap.Int("organizations", len(orgs)),
		zap.Int("warmed", warmed),
		zap.Int("fresh", skipped))
}
