package handler

import (
	"encoding/json"
	"net/http"

	"github.com/renova-habitat/gestion-api/internal/auth"
	"github.com/renova-habitat/gestion-api/internal/domain"
	"github.com/renova-habitat/gestion-api/internal/service"
	"go.uber.org/zap"
)

type QuoteHandler struct {
	quotes *service.QuoteService
	logger *zap.Logger
}

func NewQuoteHandler(quotes *service.QuoteService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{quotes: quotes, logger: logger}
}

// List handles GET /api/v1/quotes
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := auth.OrganizationFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "organization not resolved")
		return
	}

	page, pageSize := paginationParams(r)
	var status *domain.QuoteStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed := domain.ParseQuoteStatus(raw)
		status = &parsed
	}

	quotes, total, err := h.quotes.List(r.Context(), orgID, page, pageSize, status)
	if err != nil {
		h.logger.Error("failed to list quotes", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pagedResponse{Data: quotes, Total: total, Page: page, PageSize: pageSize})
}

// Create handles POST /api/v1/quotes
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := auth.OrganizationFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "organization not resolved")
		return
	}

	var req domain.CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quotes.Create(r.Context(), orgID, &req)
	if err != nil {
		h.logger.Error("failed to create quote", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, quote)
}
