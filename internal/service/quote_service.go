package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/renova-habitat/gestion-api/internal/domain"
	"github.com/renova-habitat/gestion-api/internal/repository"
	"go.uber.org/zap"
)

type QuoteService struct {
	quotes *repository.QuoteRepository
	logger *zap.Logger
}

func NewQuoteService(quotes *repository.QuoteRepository, logger *zap.Logger) *QuoteService {
	return &QuoteService{quotes: quotes, logger: logger}
}

func (s *QuoteService) Create(ctx context.Context, orgID uuid.UUID, req *domain.CreateQuoteRequest) (*domain.Quote, error) {
	if orgID == uuid.Nil {
		return nil, fmt.Errorf("%w: organization id is required", ErrInvalidInput)
	}

	status := domain.QuoteStatusBrouillon
	if req.Status != "" {
		status = domain.ParseQuoteStatus(req.Status)
		if status == domain.QuoteStatusUnknown {
			s.logger.Warn("unrecognized quote status on create, keeping unknown",
				zap.String("status", req.Status))
		}
	}

	quote := &domain.Quote{
		OrganizationID: orgID,
		ProjectID:      req.ProjectID,
		Reference:      req.Reference,
		ClientName:     req.ClientName,
		Status:         status,
		AmountTTC:      req.AmountTTC,
		ValidUntil:     req.ValidUntil,
	}
	if err := s.quotes.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}
	return quote, nil
}

func (s *QuoteService) List(ctx context.Context, orgID uuid.UUID, page, pageSize int, status *domain.QuoteStatus) ([]domain.Quote, int64, error) {
	if orgID == uuid.Nil {
		return nil, 0, fmt.Errorf("%w: organization id is required", ErrInvalidInput)
	}
	quotes, total, err := s.quotes.List(ctx, orgID, page, pageSize, status)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list quotes: %w", err)
	}
	return quotes, total, nil
}
