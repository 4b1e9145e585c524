package handler

import (
	"net/http"

	"github.com/renova-habitat/gestion-api/internal/auth"
	"github.com/renova-habitat/gestion-api/internal/domain"
	"github.com/renova-habitat/gestion-api/internal/service"
	"go.uber.org/zap"
)

type InvoiceHandler struct {
	invoices *service.InvoiceService
	logger   *zap.Logger
}

func NewInvoiceHandler(invoices *service.InvoiceService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, logger: logger}
}

// List handles GET /api/v1/invoices
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := auth.OrganizationFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "organization not resolved")
		return
	}

	page, pageSize := paginationParams(r)
	var status *domain.InvoiceStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed := domain.ParseInvoiceStatus(raw)
		status = &parsed
	}

	invoices, total, err := h.invoices.List(r.Context(), orgID, page, pageSize, status)
	if err != nil {
		h.logger.Error("failed to list invoices", zap.Error(err))
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pagedResponse{Data: invoices, Total: total, Page: page, PageSize: pageSize})
}
