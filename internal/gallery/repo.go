package gallery

import (
	"context"

	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"github.com/angelmondragon/detailshop-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes gallery post persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs the repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func orderedMedia(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Create inserts the post with its media.
func (r *Repository) Create(ctx context.Context, post *models.ServicePost) (*models.ServicePost, error) {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// FindByID loads a post with media.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ServicePost, error) {
	var post models.ServicePost
	if err := r.db.WithContext(ctx).Preload("Media", orderedMedia).First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Save persists post columns without touching media.
func (r *Repository) Save(ctx context.Context, post *models.ServicePost) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(post).Error
}

// ReplaceMedia swaps the media list of a post.
func (r *Repository) ReplaceMedia(ctx context.Context, postID uuid.UUID, media []models.ServicePostMedia) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("post_id = ?", postID).Delete(&models.ServicePostMedia{}).Error; err != nil {
		return err
	}
	if len(media) == 0 {
		return nil
	}
	for i := range media {
		media[i].PostID = postID
	}
	return tx.Create(&media).Error
}

// List returns posts newest first. Unpublished posts are skipped unless
// includeDrafts is set.
func (r *Repository) List(ctx context.Context, params pagination.Params, serviceID *uuid.UUID, includeDrafts bool) ([]models.ServicePost, string, error) {
	qb := r.db.WithContext(ctx).Model(&models.ServicePost{}).Preload("Media", orderedMedia)
	if !includeDrafts {
		qb = qb.Where("published_at IS NOT NULL")
	}
	if serviceID != nil {
		qb = qb.Where("service_id = ?", *serviceID)
	}
	return pagination.Find(qb, params, func(p models.ServicePost) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
}

// Delete removes the post and its media.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.ServicePostMedia{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.ServicePost{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}
