package models

import (
	"time"

	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment is a service booking request. CustomerID is a weak reference;
// the snapshot fields keep the row displayable after the customer is removed.
type Appointment struct {
	ID                 uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID         *uuid.UUID              `gorm:"column:customer_id;type:uuid;index"`
	Customer           *Customer               `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL"`
	CustomerName       string                  `gorm:"column:customer_name;not null"`
	CustomerPhone      string                  `gorm:"column:customer_phone;not null"`
	CustomerEmail      *string                 `gorm:"column:customer_email"`
	VehicleInfo        *string                 `gorm:"column:vehicle_info"`
	ServiceDescription *string                 `gorm:"column:service_description"`
	Status             enums.AppointmentStatus `gorm:"column:status;type:text;not null;default:'pre_agendamento';index"`
	PreferredDate      *time.Time              `gorm:"column:preferred_date"`
	ConfirmedDate      *time.Time              `gorm:"column:confirmed_date"`
	EstimatedPrice     *int64                  `gorm:"column:estimated_price"`
	AdminNotes         *string                 `gorm:"column:admin_notes"`
	CreatedAt          time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *Appointment) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
