package services

import (
	"context"

	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes offered-service persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs the repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a service. A false Active is written explicitly because the
// column defaults to true.
func (r *Repository) Create(ctx context.Context, row *models.Service) (*models.Service, error) {
	return row, r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		if !row.Active {
			return tx.Model(row).UpdateColumn("active", false).Error
		}
		return nil
	})
}

// FindByID loads a service.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var row models.Service
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Save persists every column.
func (r *Repository) Save(ctx context.Context, row *models.Service) (*models.Service, error) {
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// List returns services in display order.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	qb := r.db.WithContext(ctx).Model(&models.Service{})
	if activeOnly {
		qb = qb.Where("active = ?", true)
	}
	var rows []models.Service
	if err := qb.Order("sort_order ASC").Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete removes a service. Gallery posts keep their content and lose the link.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ServicePost{}).Where("service_id = ?", id).UpdateColumn("service_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Service{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}
