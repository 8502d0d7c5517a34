package customers

import (
	"context"
	"strings"

	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"github.com/angelmondragon/detailshop-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes customer persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a customers repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new customer.
func (r *Repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

// FindByID loads a customer by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindByPhone returns the oldest customer with the phone number.
func (r *Repository) FindByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		Order("created_at ASC").
		First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindByEmail returns a customer with the email, preferring registered rows.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Order("is_registered DESC").
		Order("created_at ASC").
		First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindRegisteredByEmail loads the registered customer owning the email.
func (r *Repository) FindRegisteredByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = ? AND is_registered = ?", strings.ToLower(email), true).
		First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// Update persists every column of the customer.
func (r *Repository) Update(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Save(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

// UpdatePassword replaces the stored credential.
func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, credential string) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", id).
		UpdateColumn("password", credential).Error
}

// Delete removes the customer with its orders. Appointments and reviews keep
// their snapshot and lose the reference.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orderIDs []uuid.UUID
		if err := tx.Model(&models.Order{}).Where("customer_id = ?", id).Pluck("id", &orderIDs).Error; err != nil {
			return err
		}
		if len(orderIDs) > 0 {
			if err := tx.Where("order_id IN ?", orderIDs).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", orderIDs).Delete(&models.Order{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Appointment{}).Where("customer_id = ?", id).UpdateColumn("customer_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Review{}).Where("customer_id = ?", id).UpdateColumn("customer_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Customer{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// ListFilters narrows the admin customer listing.
type ListFilters struct {
	Query string
}

// List returns customers newest first with cursor pagination.
func (r *Repository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Customer, string, error) {
	query := r.db.WithContext(ctx).Model(&models.Customer{})
	if q := strings.TrimSpace(filters.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(COALESCE(email, '')) LIKE ?", like, like, like)
	}
	return pagination.Find(query, params, func(c models.Customer) pagination.Cursor {
		return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	})
}
