package handler

import (
	"encoding/json"
	"net/http"

	"github.com/renova-habitat/gestion-api/internal/auth"
	"github.com/renova-habitat/gestion-api/internal/domain"
	"github.com/renova-habitat/gestion-api/internal/service"
	"go.uber.org/zap"
)

type LeadHandler struct {
	leads  *service.LeadService
	logger *zap.Logger
}

func NewLeadHandler(leads *service.LeadService, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{leads: leads, logger: logger}
}

// List handles GET /api/v1/leads
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := auth.OrganizationFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "organization not resolved")
		return
	}

	page, pageSize := paginationParams(r)
	var status *domain.LeadStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed := domain.ParseLeadStatus(raw)
		status = &parsed
	}

	leads, total, err := h.leads.List(r.Context(), orgID, page, pageSize, status)
	if err != nil {
		h.logger.Error("failed to list leads", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pagedResponse{Data: leads, Total: total, Page: page, PageSize: pageSize})
}

// Create handles POST /api/v1/leads
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := auth.OrganizationFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "organization not resolved")
		return
	}

	var req domain.CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.leads.Create(r.Context(), orgID, &req)
	if err != nil {
		h.logger.Error("failed to create lead", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, lead)
}
