package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/renova-habitat/gestion-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get returns the setting value for the given key, or ("", nil) when the
// organization has no row for it.
func (r *SettingRepository) Get(ctx context.Context, orgID uuid.UUID, key string) (string, error) {
	var setting domain.OrganizationSetting
	query := scopeToOrganization(r.db.WithContext(ctx), orgID).Where("key = ?", key)
	if err := query.First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return setting.Value, nil
}

// Upsert writes the setting value for the given key, inserting or updating
// the single row per organization and key.
func (r *SettingRepository) Upsert(ctx context.Context, orgID uuid.UUID, key, value string) error {
	setting := domain.OrganizationSetting{
		OrganizationID: orgID,
		Key:            key,
		Value:          value,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "organization_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return fmt.Errorf("failed to upsert setting %s: %w", key, err)
	}
	return nil
}
