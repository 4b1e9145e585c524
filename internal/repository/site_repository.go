package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/renova-habitat/gestion-api/internal/domain"
	"gorm.io/gorm"
)

type SiteRepository struct {
	db *gorm.DB
}

func NewSiteRepository(db *gorm.DB) *SiteRepository {
	return &SiteRepository{db: db}
}

func (r *SiteRepository) Create(ctx context.Context, site *domain.Site) error {
	return r.db.WithContext(ctx).Create(site).Error
}

func (r *SiteRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Site, error) {
	var site domain.Site
	query := scopeToOrganization(r.db.WithContext(ctx), orgID).Where("id = ?", id)
	if err := query.First(&site).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *SiteRepository) List(ctx context.Context, orgID uuid.UUID, page, pageSize int, status *domain.SiteStatus) ([]domain.Site, int64, error) {
	var sites []domain.Site
	var total int64

	page, pageSize = normalizePage(page, pageSize)

	query := scopeToOrganization(r.db.WithContext(ctx).Model(&domain.Site{}), orgID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("updated_at DESC").Find(&sites).Error
	return sites, total, err
}

// CountByStatuses counts sites in any of the given statuses
func (r *SiteRepository) CountByStatuses(ctx context.Context, orgID uuid.UUID, statuses []domain.SiteStatus) (int, error) {
	var count int64
	query := scopeToOrganization(r.db.WithContext(ctx).Model(&domain.Site{}), orgID).
		Where("status IN ?", statuses)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count sites: %w", err)
	}
	return int(count), nil
}

// CountEndingBefore counts open sites whose planned end date falls in [now, deadline)
func (r *SiteRepository) CountEndingBefore(ctx context.Context, orgID uuid.UUID, now, deadline time.Time) (int, error) {
	var count int64
	query := scopeToOrganization(r.db.WithContext(ctx).Model(&domain.Site{}), orgID).
		Where("status IN ?", domain.OpenSiteStatuses()).
		Where("date_fin_prevue IS NOT NULL").
		Where("date_fin_prevue >= ? AND date_fin_prevue < ?", now, deadline)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count ending sites: %w", err)
	}
	return int(count), nil
}

// ListFinishedBetween returns terminal-status sites whose end date falls in
// [from, to). Delivered sites are excluded: the month and week totals only
// count work that has reached TERMINE.
func (r *SiteRepository) ListFinishedBetween(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]domain.Site, error) {
	var sites []domain.Site
	query := scopeToOrganization(r.db.WithContext(ctx), orgID).
		Where("status = ?", domain.SiteStatusTermine).
		Where("date_fin IS NOT NULL").
		Where("date_fin >= ? AND date_fin < ?", from, to)
	if err := query.Find(&sites).Error; err != nil {
		return nil, fmt.Errorf("failed to list finished sites: %w", err)
	}
	return sites, nil
}

// ListCompletedSince returns sites finished or delivered since the given
// instant, including sites without an end date that were last updated in the
// window. Feeds the report's completed-site count and margin averages.
func (r *SiteRepository) ListCompletedSince(ctx context.Context, orgID uuid.UUID, since time.Time) ([]domain.Site, error) {
	var sites []domain.Site
	query := scopeToOrganization(r.db.WithContext(ctx), orgID).
		Where("status IN ?", []domain.SiteStatus{domain.SiteStatusTermine, domain.SiteStatusLivre}).
		Where("(date_fin IS NOT NULL AND date_fin >= ?) OR (date_fin IS NULL AND updated_at >= ?)", since, since)
	if err := query.Find(&sites).Error; err != nil {
		return nil, fmt.Errorf("failed to list completed sites: %w", err)
	}
	return sites, nil
}

// ListTopByRevenue returns the highest-revenue finished sites of the window,
// ordered by revenue descending
func (r *SiteRepository) ListTopByRevenue(ctx context.Context, orgID uuid.UUID, from, to time.Time, limit int) ([]domain.Site, error) {
	var sites []domain.Site
	query := scopeToOrganization(r.db.WithContext(ctx), orgID).
		Where("status IN ?", []domain.SiteStatus{domain.SiteStatusTermine, domain.SiteStatusLivre}).
		Where("date_fin IS NOT NULL").
		Where("date_fin >= ? AND date_fin < ?", from, to).
		Where("ca_ttc IS NOT NULL").
		Order("ca_ttc DESC").
		Limit(limit)
	if err := query.Find(&sites).Error; err != nil {
		return nil, fmt.Errorf("failed to list top sites: %w", err)
	}
	return sites, nil
}

// ListRecent returns the most recently updated sites for the activity feed
func (r *SiteRepository) ListRecent(ctx context.Context, orgID uuid.UUID, limit int) ([]domain.Site, error) {
	if limit <= 0 {
		limit = feedSourceLimit
	}
	var sites []domain.Site
	query := scopeToOrganization(r.db.WithContext(ctx), orgID).
		Order("updated_at DESC").
		Limit(limit)
	if err := query.Find(&sites).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent sites: %w", err)
	}
	return sites, nil
}
