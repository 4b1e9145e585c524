package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/renova-habitat/gestion-api/internal/auth"
	"github.com/renova-habitat/gestion-api/internal/cache"
	"github.com/renova-habitat/gestion-api/internal/service"
	"go.uber.org/zap"
)

// DashboardHandler serves the dashboard aggregation endpoints: the KPI
// snapshot, the revenue trend and the activity feed. Responses are cached
// per organization; the aggregation services themselves stay cache-free.
type DashboardHandler struct {
	dashboard *service.DashboardService
	revenue   *service.RevenueService
	feed      *service.ActivityFeedService
	cache     cache.Provider
	logger    *zap.Logger
}

func NewDashboardHandler(
	dashboard *service.DashboardService,
	revenue *service.RevenueService,
	feed *service.ActivityFeedService,
	cacheProvider cache.Provider,
	logger *zap.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		revenue:   revenue,
		feed:      feed,
		cache:     cacheProvider,
		logger:    logger,
	}
}

// GetMetrics handles GET /api/v1/dashboard/metrics
func (h *DashboardHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	orgID, ok := auth.OrganizationFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "organization not resolved")
		return
	}

	key := cache.Key("dashboard", orgID.String(), "metrics")
	if h.serveCached(w, r, key) {
		return
	}

	metrics, err := h.dashboard.GetMetrics(r.Context(), orgID)
	if err != nil {
		h.logger.Error("failed to compute dashboard metrics",
			zap.String("organization_id", orgID.String()),
			zap.Error(err))
		respondServiceError(w, err)
		return
	}

	h.storeCached(r, key, metrics)
	respondJSON(w, http.StatusOK, metrics)
}

// GetRevenueTrend handles GET /api/v1/dashboard/revenue
// Optional query parameters from/to are RFC 3339 dates narrowing the range.
func (h *DashboardHandler) GetRevenueTrend(w http.ResponseWriter, r *http.Request) {
	orgID, ok := auth.OrganizationFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "organization not resolved")
		return
	}

	var opts service.TrendOptions
	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := parseDateParam(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid from date")
			return
		}
		opts.From = &t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := parseDateParam(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid to date")
			return
		}
		opts.To = &t
	}

	key := cache.Key("dashboard", orgID.String(), "revenue", r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if h.serveCached(w, r, key) {
		return
	}

	trend, err := h.revenue.GetTrend(r.Context(), orgID, opts)
	if err != nil {
		h.logger.Error("failed to build revenue trend",
			zap.String("organization_id", orgID.String()),
			zap.Error(err))
		respondServiceError(w, err)
		return
	}

	h.storeCached(r, key, trend)
	respondJSON(w, http.StatusOK, trend)
}

// GetActivityFeed handles GET /api/v1/dashboard/activity
func (h *DashboardHandler) GetActivityFeed(w http.ResponseWriter, r *http.Request) {
	orgID, ok := auth.OrganizationFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "organization not resolved")
		return
	}

	feed, err := h.feed.GetFeed(r.Context(), orgID)
	if err != nil {
		h.logger.Error("failed to build activity feed",
			zap.String("organization_id", orgID.String()),
			zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, feed)
}

// serveCached writes the cached payload when present. Cache read failures
// fall through to a fresh computation.
func (h *DashboardHandler) serveCached(w http.ResponseWriter, r *http.Request, key string) bool {
	payload, err := h.cache.Get(r.Context(), key)
	if err != nil {
		if err != cache.ErrMiss {
			h.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "HIT")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
	return true
}

func (h *DashboardHandler) storeCached(r *http.Request, key string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	if err := h.cache.Set(r.Context(), key, payload); err != nil {
		h.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func parseDateParam(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
