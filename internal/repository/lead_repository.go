package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/renova-habitat/gestion-api/internal/domain"
	"gorm.io/gorm"
)

type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

func (r *LeadRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Lead, error) {
	var lead domain.Lead
	query := scopeToOrganization(r.db.WithContext(ctx), orgID).Where("id = ?", id)
	if err := query.First(&lead).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *LeadRepository) List(ctx context.Context, orgID uuid.UUID, page, pageSize int, status *domain.LeadStatus) ([]domain.Lead, int64, error) {
	var leads []domain.Lead
	var total int64

	page, pageSize = normalizePage(page, pageSize)

	query := scopeToOrganization(r.db.WithContext(ctx).Model(&domain.Lead{}), orgID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&leads).Error
	return leads, total, err
}

// CountByStatuses counts leads currently in any of the given statuses
func (r *LeadRepository) CountByStatuses(ctx context.Context, orgID uuid.UUID, statuses []domain.LeadStatus) (int, error) {
	var count int64
	query := scopeToOrganization(r.db.WithContext(ctx).Model(&domain.Lead{}), orgID).
		Where("status IN ?", statuses)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return int(count), nil
}

// CountByStatusesCreatedBetween counts leads in the given statuses created
// inside the [from, to) window. Used for conversion-rate windows.
func (r *LeadRepository) CountByStatusesCreatedBetween(ctx context.Context, orgID uuid.UUID, statuses []domain.LeadStatus, from, to time.Time) (int, error) {
	var count int64
	query := scopeToOrganization(r.db.WithContext(ctx).Model(&domain.Lead{}), orgID).
		Where("status IN ?", statuses).
		Where("created_at >= ? AND created_at < ?", from, to)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count leads in window: %w", err)
	}
	return int(count), nil
}

// ListRecent returns the most recently created leads for the activity feed
func (r *LeadRepository) ListRecent(ctx context.Context, orgID uuid.UUID, limit int) ([]domain.Lead, error) {
	if limit <= 0 {
		limit = feedSourceLimit
	}
	var leads []domain.Lead
	query := scopeToOrganization(r.db.WithContext(ctx), orgID).
		Order("created_at DESC").
		Limit(limit)
	if err := query.Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent leads: %w", err)
	}
	return leads, nil
}

// ListCreatedSince returns all leads created after the given instant.
// Feeds the per-source conversion breakdown.
func (r *LeadRepository) ListCreatedSince(ctx context.Context, orgID uuid.UUID, since time.Time) ([]domain.Lead, error) {
	var leads []domain.Lead
	query := scopeToOrganization(r.db.WithContext(ctx), orgID).
		Where("created_at >= ?", since).
		Order("created_at DESC")
	if err := query.Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("failed to list leads since %s: %w", since.Format(time.RFC3339), err)
	}
	return leads, nil
}
