package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/renova-habitat/gestion-api/internal/domain"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	query := scopeToOrganization(r.db.WithContext(ctx), orgID).
		Preload("Products.Product").
		Where("id = ?", id)
	if err := query.First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListByStatuses returns projects in any of the given status values, with
// their product lines and catalog references preloaded for energy aggregation.
// Fetching only the statuses the caller cares about keeps the payload small.
func (r *ProjectRepository) ListByStatuses(ctx context.Context, orgID uuid.UUID, statuses []string) ([]domain.Project, error) {
	var projects []domain.Project
	query := scopeToOrganization(r.db.WithContext(ctx), orgID).
		Preload("Products.Product").
		Where("status IN ?", statuses)
	if err := query.Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects by status: %w", err)
	}
	return projects, nil
}

// CountByStatuses counts projects currently in any of the given status values
func (r *ProjectRepository) CountByStatuses(ctx context.Context, orgID uuid.UUID, statuses []string) (int, error) {
	var count int64
	query := scopeToOrganization(r.db.WithContext(ctx).Model(&domain.Project{}), orgID).
		Where("status IN ?", statuses)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return int(count), nil
}

// CountByStatusUpdatedBetween counts projects that reached the given status
// inside the [from, to) window, approximated by their last update. Feeds the
// accepted side of the conversion rate.
func (r *ProjectRepository) CountByStatusUpdatedBetween(ctx context.Context, orgID uuid.UUID, status string, from, to time.Time) (int, error) {
	var count int64
	query := scopeToOrganization(r.db.WithContext(ctx).Model(&domain.Project{}), orgID).
		Where("status = ?", status).
		Where("updated_at >= ? AND updated_at < ?", from, to)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count accepted projects in window: %w", err)
	}
	return int(count), nil
}

// ListRecent returns the most recently updated projects for the activity feed
func (r *ProjectRepository) ListRecent(ctx context.Context, orgID uuid.UUID, limit int) ([]domain.Project, error) {
	if limit <= 0 {
		limit = feedSourceLimit
	}
	var projects []domain.Project
	query := scopeToOrganization(r.db.WithContext(ctx), orgID).
		Order("updated_at DESC").
		Limit(limit)
	if err := query.Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent projects: %w", err)
	}
	return projects, nil
}
