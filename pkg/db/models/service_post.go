package models

import (
	"time"

	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServicePost is a gallery entry showing finished work.
type ServicePost struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Title       string             `gorm:"column:title;not null"`
	Description *string            `gorm:"column:description"`
	ServiceID   *uuid.UUID         `gorm:"column:service_id;type:uuid"`
	Media       []ServicePostMedia `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	PublishedAt *time.Time         `gorm:"column:published_at"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *ServicePost) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// ServicePostMedia is an ordered media URL owned by a gallery post.
type ServicePostMedia struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	PostID    uuid.UUID       `gorm:"column:post_id;type:uuid;not null;index"`
	URL       string          `gorm:"column:url;not null"`
	Kind      enums.MediaKind `gorm:"column:kind;type:text;not null;default:'image'"`
	Position  int             `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (ServicePostMedia) TableName() string { return "service_post_media" }

func (m *ServicePostMedia) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
