package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/renova-habitat/gestion-api/internal/domain"
	"github.com/renova-habitat/gestion-api/internal/repository"
)

type SiteService struct {
	sites *repository.SiteRepository
}

func NewSiteService(sites *repository.SiteRepository) *SiteService {
	return &SiteService{sites: sites}
}

func (s *SiteService) List(ctx context.Context, orgID uuid.UUID, page, pageSize int, status *domain.SiteStatus) ([]domain.Site, int64, error) {
	if orgID == uuid.Nil {
		return nil, 0, fmt.Errorf("%w: organization id is required", ErrInvalidInput)
	}
	sites, total, err := s.sites.List(ctx, orgID, page, pageSize, status)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sites: %w", err)
	}
	return sites, total, nil
}
