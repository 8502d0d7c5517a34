package reviews

import (
	"context"

	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilters narrows review listings.
type ListFilters struct {
	ProductID *uuid.UUID
	Approved  *bool
}

// Repository exposes review persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a reviews repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a review.
func (r *Repository) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// List returns reviews newest first.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]models.Review, error) {
	qb := r.db.WithContext(ctx).Model(&models.Review{})
	if filters.ProductID != nil {
		qb = qb.Where("product_id = ?", *filters.ProductID)
	}
	if filters.Approved != nil {
		qb = qb.Where("approved = ?", *filters.Approved)
	}
	var rows []models.Review
	if err := qb.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Approve marks the review visible and reports whether it existed.
func (r *Repository) Approve(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Review{}).Where("id = ?", id).UpdateColumn("approved", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FindByID loads one review.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// Delete removes the review and reports whether it existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Review{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
