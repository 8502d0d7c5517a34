package product

import (
	"context"
	"strings"

	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"github.com/angelmondragon/detailshop-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListFilters describe the supported knobs for the catalog listing.
type ListFilters struct {
	Active   *bool
	Category string
	Query    string
}

// Repository wires together all product-related persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func orderedVariations(db *gorm.DB) *gorm.DB {
	return db.Order("name ASC")
}

// Create inserts the product together with its images and variations.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindDetail loads a product with images and variations.
func (r *Repository) FindDetail(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Images", orderedImages).
		Preload("Variations", orderedVariations).
		First(&product, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Update saves the product columns. Associations are left untouched.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// ReplaceImages replaces every image of the product.
func (r *Repository) ReplaceImages(ctx context.Context, productID uuid.UUID, images []models.ProductImage) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductImage{}).Error; err != nil {
		return err
	}
	if len(images) == 0 {
		return nil
	}
	for i := range images {
		images[i].ProductID = productID
	}
	return tx.Create(&images).Error
}

// Delete removes the product and everything it owns.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, owned := range []any{&models.ProductImage{}, &models.Variation{}, &models.Review{}} {
			if err := tx.Where("product_id = ?", id).Delete(owned).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// List returns one page of products newest first.
func (r *Repository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Product, string, error) {
	qb := r.db.WithContext(ctx).Model(&models.Product{}).Preload("Images", orderedImages)
	if filters.Active != nil {
		qb = qb.Where("active = ?", *filters.Active)
	}
	if category := strings.TrimSpace(filters.Category); category != "" {
		qb = qb.Where("category = ?", category)
	}
	if search := strings.TrimSpace(filters.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(name) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?)", pattern, pattern)
	}
	return pagination.Find(qb, params, func(p models.Product) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
}

// CreateVariation inserts a variation for an existing product.
func (r *Repository) CreateVariation(ctx context.Context, variation *models.Variation) (*models.Variation, error) {
	if err := r.db.WithContext(ctx).Create(variation).Error; err != nil {
		return nil, err
	}
	return variation, nil
}

// FindVariation loads a variation scoped to its product.
func (r *Repository) FindVariation(ctx context.Context, productID, id uuid.UUID) (*models.Variation, error) {
	var variation models.Variation
	if err := r.db.WithContext(ctx).First(&variation, "id = ? AND product_id = ?", id, productID).Error; err != nil {
		return nil, err
	}
	return &variation, nil
}

// SaveVariation persists every column of the variation.
func (r *Repository) SaveVariation(ctx context.Context, variation *models.Variation) (*models.Variation, error) {
	if err := r.db.WithContext(ctx).Save(variation).Error; err != nil {
		return nil, err
	}
	return variation, nil
}

// DeleteVariation removes a variation scoped to its product.
func (r *Repository) DeleteVariation(ctx context.Context, productID, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Variation{}, "id = ? AND product_id = ?", id, productID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
