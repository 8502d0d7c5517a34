package appointments

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
)

// AppointmentDTO is the staff view of an appointment.
type AppointmentDTO struct {
	ID                 uuid.UUID               `json:"id"`
	CustomerID         *uuid.UUID              `json:"customerId"`
	CustomerName       string                  `json:"customerName"`
	CustomerPhone      string                  `json:"customerPhone"`
	CustomerEmail      *string                 `json:"customerEmail"`
	VehicleInfo        *string                 `json:"vehicleInfo"`
	ServiceDescription *string                 `json:"serviceDescription"`
	Status             enums.AppointmentStatus `json:"status"`
	StatusLabel        string                  `json:"statusLabel"`
	PreferredDate      *time.Time              `json:"preferredDate"`
	ConfirmedDate      *time.Time              `json:"confirmedDate"`
	EstimatedPrice     *int64                  `json:"estimatedPrice"`
	AdminNotes         *string                 `json:"adminNotes,omitempty"`
	CreatedAt          time.Time               `json:"createdAt"`
	UpdatedAt          time.Time               `json:"updatedAt"`
}

// ListResult wraps a page of appointments.
type ListResult struct {
	Appointments []AppointmentDTO `json:"appointments"`
	NextCursor   string           `json:"nextCursor,omitempty"`
}

// CreateInput is a public booking request. Status is accepted and ignored.
type CreateInput struct {
	CustomerName       string
	CustomerPhone      string
	CustomerEmail      *string
	VehicleInfo        *string
	ServiceDescription *string
	PreferredDate      *string
	Status             *string
}

// UpdateInput carries the staff edits; nil fields are left untouched.
type UpdateInput struct {
	Status             *enums.AppointmentStatus
	ConfirmedDate      *string
	PreferredDate      *string
	EstimatedPrice     *int64
	AdminNotes         *string
	VehicleInfo        *string
	ServiceDescription *string
}

// CreateResult is returned to the person who booked.
type CreateResult struct {
	Appointment    AppointmentDTO `json:"appointment"`
	WhatsAppNumber string         `json:"whatsappNumber"`
	Message        string         `json:"message"`
}

func FromModel(a *models.Appointment) *AppointmentDTO {
	if a == nil {
		return nil
	}
	return &AppointmentDTO{
		ID:                 a.ID,
		CustomerID:         a.CustomerID,
		CustomerName:       a.CustomerName,
		CustomerPhone:      a.CustomerPhone,
		CustomerEmail:      a.CustomerEmail,
		VehicleInfo:        a.VehicleInfo,
		ServiceDescription: a.ServiceDescription,
		Status:             a.Status,
		StatusLabel:        a.Status.Label(),
		PreferredDate:      a.PreferredDate,
		ConfirmedDate:      a.ConfirmedDate,
		EstimatedPrice:     a.EstimatedPrice,
		AdminNotes:         a.AdminNotes,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

// ForCustomer strips staff-only fields.
func (d AppointmentDTO) ForCustomer() AppointmentDTO {
	d.AdminNotes = nil
	return d
}
