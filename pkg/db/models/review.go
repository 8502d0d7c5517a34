package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is a product rating awaiting or past moderation.
type Review struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ProductID  uuid.UUID  `gorm:"column:product_id;type:uuid;not null;index"`
	CustomerID *uuid.UUID `gorm:"column:customer_id;type:uuid"`
	AuthorName string     `gorm:"column:author_name;not null"`
	Rating     int        `gorm:"column:rating;not null"`
	Comment    *string    `gorm:"column:comment"`
	Approved   bool       `gorm:"column:approved;not null;default:false"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
