package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/renova-habitat/gestion-api/internal/domain"
	"github.com/renova-habitat/gestion-api/internal/repository"
)

type InvoiceService struct {
	invoices *repository.InvoiceRepository
}

func NewInvoiceService(invoices *repository.InvoiceRepository) *InvoiceService {
	return &InvoiceService{invoices: invoices}
}

func (s *InvoiceService) List(ctx context.Context, orgID uuid.UUID, page, pageSize int, status *domain.InvoiceStatus) ([]domain.Invoice, int64, error) {
	if orgID == uuid.Nil {
		return nil, 0, fmt.Errorf("%w: organization id is required", ErrInvalidInput)
	}
	invoices, total, err := s.invoices.List(ctx, orgID, page, pageSize, status)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, total, nil
}
