package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/renova-habitat/gestion-api/internal/domain"
	"github.com/renova-habitat/gestion-api/internal/repository"
	"go.uber.org/zap"
)

type LeadService struct {
	leads  *repository.LeadRepository
	logger *zap.Logger
}

func NewLeadService(leads *repository.LeadRepository, logger *zap.Logger) *LeadService {
	return &LeadService{leads: leads, logger: logger}
}

func (s *LeadService) Create(ctx context.Context, orgID uuid.UUID, req *domain.CreateLeadRequest) (*domain.Lead, error) {
	if orgID == uuid.Nil {
		return nil, fmt.Errorf("%w: organization id is required", ErrInvalidInput)
	}

	status := domain.LeadStatusNouveau
	if req.Status != "" {
		status = domain.ParseLeadStatus(req.Status)
		if status == domain.LeadStatusUnknown {
			s.logger.Warn("unrecognized lead status on create, keeping unknown",
				zap.String("status", req.Status))
		}
	}

	lead := &domain.Lead{
		OrganizationID: orgID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		City:           req.City,
		Status:         status,
		Source:         req.Source,
		Notes:          req.Notes,
	}
	if err := s.leads.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	return lead, nil
}

func (s *LeadService) List(ctx context.Context, orgID uuid.UUID, page, pageSize int, status *domain.LeadStatus) ([]domain.Lead, int64, error) {
	if orgID == uuid.Nil {
		return nil, 0, fmt.Errorf("%w: organization id is required", ErrInvalidInput)
	}
	leads, total, err := s.leads.List(ctx, orgID, page, pageSize, status)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, total, nil
}
