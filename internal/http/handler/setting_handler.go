package handler

import (
	"encoding/json"
	"net/http"

	"github.com/renova-habitat/gestion-api/internal/auth"
	"github.com/renova-habitat/gestion-api/internal/cache"
	"github.com/renova-habitat/gestion-api/internal/domain"
	"github.com/renova-habitat/gestion-api/internal/service"
	"go.uber.org/zap"
)

// SettingHandler exposes the organization's project status configuration.
// Updates invalidate both the status config cache and the organization's
// cached dashboard responses, since the active-status partition changes.
type SettingHandler struct {
	statusConfig *service.StatusConfigService
	cache        cache.Provider
	logger       *zap.Logger
}

func NewSettingHandler(statusConfig *service.StatusConfigService, cacheProvider cache.Provider, logger *zap.Logger) *SettingHandler {
	return &SettingHandler{statusConfig: statusConfig, cache: cacheProvider, logger: logger}
}

// GetProjectStatuses handles GET /api/v1/settings/project-statuses
func (h *SettingHandler) GetProjectStatuses(w http.ResponseWriter, r *http.Request) {
	orgID, ok := auth.OrganizationFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "organization not resolved")
		return
	}

	statuses, err := h.statusConfig.Resolve(r.Context(), orgID)
	if err != nil {
		h.logger.Error("failed to resolve status configuration", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, statuses)
}

// UpdateProjectStatuses handles PUT /api/v1/settings/project-statuses
func (h *SettingHandler) UpdateProjectStatuses(w http.ResponseWriter, r *http.Request) {
	orgID, ok := auth.OrganizationFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "organization not resolved")
		return
	}

	var req domain.UpdateStatusesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	statuses, err := h.statusConfig.Update(r.Context(), orgID, req.Statuses)
	if err != nil {
		h.logger.Error("failed to update status configuration", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	if err := h.cache.Invalidate(r.Context(), cache.Key("dashboard", orgID.String())); err != nil {
		h.logger.Warn("failed to invalidate dashboard cache",
			zap.String("organization_id", orgID.String()),
			zap.Error(err))
	}
	if err := h.cache.Invalidate(r.Context(), cache.Key("reports", orgID.String())); err != nil {
		h.logger.Warn("failed to invalidate reports cache",
			zap.String("organization_id", orgID.String()),
			zap.Error(err))
	}

	respondJSON(w, http.StatusOK, statuses)
}
