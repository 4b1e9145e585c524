package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/renova-habitat/gestion-api/internal/domain"
	"gorm.io/gorm"
)

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *QuoteRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	query := scopeToOrganization(r.db.WithContext(ctx), orgID).Where("id = ?", id)
	if err := query.First(&quote).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *QuoteRepository) List(ctx context.Context, orgID uuid.UUID, page, pageSize int, status *domain.QuoteStatus) ([]domain.Quote, int64, error) {
	var quotes []domain.Quote
	var total int64

	page, pageSize = normalizePage(page, pageSize)

	query := scopeToOrganization(r.db.WithContext(ctx).Model(&domain.Quote{}), orgID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("updated_at DESC").Find(&quotes).Error
	return quotes, total, err
}

// CountByStatus counts quotes in the given status
func (r *QuoteRepository) CountByStatus(ctx context.Context, orgID uuid.UUID, status domain.QuoteStatus) (int, error) {
	var count int64
	query := scopeToOrganization(r.db.WithContext(ctx).Model(&domain.Quote{}), orgID).
		Where("status = ?", status)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count quotes: %w", err)
	}
	return int(count), nil
}

// CountExpiringBefore counts sent quotes whose validity ends in [now, deadline)
func (r *QuoteRepository) CountExpiringBefore(ctx context.Context, orgID uuid.UUID, now, deadline time.Time) (int, error) {
	var count int64
	query := scopeToOrganization(r.db.WithContext(ctx).Model(&domain.Quote{}), orgID).
		Where("status = ?", domain.QuoteStatusEnvoye).
		Where("valid_until IS NOT NULL").
		Where("valid_until >= ? AND valid_until < ?", now, deadline)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count expiring quotes: %w", err)
	}
	return int(count), nil
}

// ListRecent returns the most recently updated quotes for the activity feed
func (r *QuoteRepository) ListRecent(ctx context.Context, orgID uuid.UUID, limit int) ([]domain.Quote, error) {
	if limit <= 0 {
		limit = feedSourceLimit
	}
	var quotes []domain.Quote
	query := scopeToOrganization(r.db.WithContext(ctx), orgID).
		Order("updated_at DESC").
		Limit(limit)
	if err := query.Find(&quotes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent quotes: %w", err)
	}
	return quotes, nil
}
