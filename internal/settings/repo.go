package settings

import (
	"context"
	"time"

	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository reads and writes site settings.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Find loads one setting by key.
func (r *Repository) Find(ctx context.Context, key string) (*models.SiteSetting, error) {
	var setting models.SiteSetting
	if err := r.db.WithContext(ctx).First(&setting, "key = ?", key).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// Upsert writes value under key, replacing any previous value.
func (r *Repository) Upsert(ctx context.Context, key, value string) (*models.SiteSetting, error) {
	setting := &models.SiteSetting{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(setting).Error
	if err != nil {
		return nil, err
	}
	return setting, nil
}
