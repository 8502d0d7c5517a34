package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is a storefront buyer. Guest checkouts create unregistered rows.
type Customer struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name            string    `gorm:"column:name;not null"`
	Phone           string    `gorm:"column:phone;not null;index"`
	Email           *string   `gorm:"column:email;index"`
	DeliveryAddress *string   `gorm:"column:delivery_address"`
	IsRegistered    bool      `gorm:"column:is_registered;not null;default:false"`
	Password        *string   `gorm:"column:password"`
	Orders          []Order   `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Customer) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
