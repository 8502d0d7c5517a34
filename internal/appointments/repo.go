package appointments

import (
	"context"

	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	"github.com/angelmondragon/detailshop-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilters narrows appointment listings.
type ListFilters struct {
	Status     *enums.AppointmentStatus
	CustomerID *uuid.UUID
}

// Repository persists appointments.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error) {
	if err := r.db.WithContext(ctx).Create(appointment).Error; err != nil {
		return nil, err
	}
	return appointment, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := r.db.WithContext(ctx).First(&appointment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

// Update writes every column of the merged row. A row deleted since it was
// loaded yields gorm.ErrRecordNotFound instead of being inserted again.
func (r *Repository) Update(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", appointment.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(appointment)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return appointment, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Appointment{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// List returns appointments newest first with cursor pagination.
func (r *Repository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Appointment, string, error) {
	query := r.db.WithContext(ctx).Model(&models.Appointment{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}
	return pagination.Find(query, params, func(a models.Appointment) pagination.Cursor {
		return pagination.Cursor{CreatedAt: a.CreatedAt, ID: a.ID}
	})
}
