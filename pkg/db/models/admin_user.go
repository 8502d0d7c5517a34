package models

import (
	"time"

	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminUser is a back-office account.
type AdminUser struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Username    string          `gorm:"column:username;not null;uniqueIndex"`
	Name        string          `gorm:"column:name;not null"`
	Password    string          `gorm:"column:password;not null"`
	Role        enums.AdminRole `gorm:"column:role;type:text;not null;default:'staff'"`
	LastLoginAt *time.Time      `gorm:"column:last_login_at"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *AdminUser) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
