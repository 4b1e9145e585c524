package handler

import (
	"net/http"

	"github.com/renova-habitat/gestion-api/internal/auth"
	"github.com/renova-habitat/gestion-api/internal/cache"
	"github.com/renova-habitat/gestion-api/internal/service"
	"go.uber.org/zap"
)

// ReportsHandler serves the long-horizon analytics report
type ReportsHandler struct {
	reports *service.ReportsService
	cache   cache.Provider
	logger  *zap.Logger
}

func NewReportsHandler(reports *service.ReportsService, cacheProvider cache.Provider, logger *zap.Logger) *ReportsHandler {
	return &ReportsHandler{reports: reports, cache: cacheProvider, logger: logger}
}

// GetReport handles GET /api/v1/reports
func (h *ReportsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	orgID, ok := auth.OrganizationFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "organization not resolved")
		return
	}

	key := cache.Key("reports", orgID.String())
	if payload, err := h.cache.Get(r.Context(), key); err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
		return
	}

	report, err := h.reports.GetReport(r.Context(), orgID)
	if err != nil {
		h.logger.Error("failed to build report",
			zap.String("organization_id", orgID.String()),
			zap.Error(err))
		respondServiceError(w, err)
		return
	}

	if payload, err := marshalForCache(report); err == nil {
		if err := h.cache.Set(r.Context(), key, payload); err != nil {
			h.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	respondJSON(w, http.StatusOK, report)
}
