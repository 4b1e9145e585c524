package handler

import (
	"net/http"

	"github.com/renova-habitat/gestion-api/internal/auth"
	"github.com/renova-habitat/gestion-api/internal/domain"
	"github.com/renova-habitat/gestion-api/internal/service"
	"go.uber.org/zap"
)

type SiteHandler struct {
	sites  *service.SiteService
	logger *zap.Logger
}

func NewSiteHandler(sites *service.SiteService, logger *zap.Logger) *SiteHandler {
	return &SiteHandler{sites: sites, logger: logger}
}

// List handles GET /api/v1/sites
func (h *SiteHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := auth.OrganizationFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "organization not resolved")
		return
	}

	page, pageSize := paginationParams(r)
	var status *domain.SiteStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed := domain.ParseSiteStatus(raw)
		status = &parsed
	}

	sites, total, err := h.sites.List(r.Context(), orgID, page, pageSize, status)
	if err != nil {
		h.logger.Error("failed to list sites", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pagedResponse{Data: sites, Total: total, Page: page, PageSize: pageSize})
}
