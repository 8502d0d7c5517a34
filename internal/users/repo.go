package users

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes admin user persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an admin users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new admin user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, user *models.AdminUser) (*models.AdminUser, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByUsername matches usernames case-insensitively.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	var user models.AdminUser
	err := r.db.WithContext(ctx).
		Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username))).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads an admin user by UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error) {
	var user models.AdminUser
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns every admin user ordered by username.
func (r *Repository) List(ctx context.Context) ([]models.AdminUser, error) {
	var rows []models.AdminUser
	if err := r.db.WithContext(ctx).Order("username ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// EmailUsernames lists usernames that look like email addresses.
func (r *Repository) EmailUsernames(ctx context.Context) ([]string, error) {
	var usernames []string
	err := r.db.WithContext(ctx).
		Model(&models.AdminUser{}).
		Where("username LIKE ?", "%@%.%").
		Order("username ASC").
		Pluck("username", &usernames).Error
	if err != nil {
		return nil, err
	}
	return usernames, nil
}

// Delete removes the admin user and reports whether a row existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.AdminUser{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.AdminUser{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// UpdatePassword replaces the stored credential.
func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, credential string) error {
	return r.db.WithContext(ctx).
		Model(&models.AdminUser{}).
		Where("id = ?", id).
		Updates(map[string]any{"password": credential, "updated_at": time.Now().UTC()}).Error
}
