package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is a detailing service offered to customers.
type Service struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Name            string           `gorm:"column:name;not null"`
	Description     *string          `gorm:"column:description"`
	PriceFrom       *decimal.Decimal `gorm:"column:price_from;type:numeric(12,2)"`
	DurationMinutes *int             `gorm:"column:duration_minutes"`
	Active          bool             `gorm:"column:active;not null"`
	SortOrder       int              `gorm:"column:sort_order;not null;default:0"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Service) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
