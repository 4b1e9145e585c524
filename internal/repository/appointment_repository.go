package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/renova-habitat/gestion-api/internal/domain"
	"gorm.io/gorm"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, appointment *domain.Appointment) error {
	return r.db.WithContext(ctx).Create(appointment).Error
}

// CountBetween counts appointments scheduled in [from, to)
func (r *AppointmentRepository) CountBetween(ctx context.Context, orgID uuid.UUID, from, to time.Time) (int, error) {
	var count int64
	query := scopeToOrganization(r.db.WithContext(ctx).Model(&domain.Appointment{}), orgID).
		Where("scheduled_at >= ? AND scheduled_at < ?", from, to)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return int(count), nil
}
