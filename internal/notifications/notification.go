package notifications

import (
	"context"
	"time"

	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	"github.com/google/uuid"
)

// Notification is a best-effort message about an appointment. Recipients are
// email addresses.
type Notification struct {
	Type               enums.NotificationType `json:"type"`
	Recipients         []string               `json:"recipients"`
	AppointmentID      uuid.UUID              `json:"appointmentId"`
	CustomerName       string                 `json:"customerName"`
	CustomerPhone      string                 `json:"customerPhone,omitempty"`
	VehicleInfo        *string                `json:"vehicleInfo,omitempty"`
	ServiceDescription *string                `json:"serviceDescription,omitempty"`
	PreferredDate      *time.Time             `json:"preferredDate,omitempty"`
	StatusLabel        string                 `json:"statusLabel,omitempty"`
	ConfirmedDate      *time.Time             `json:"confirmedDate,omitempty"`
	AdminNotes         *string                `json:"adminNotes,omitempty"`
	EstimatedPrice     *int64                 `json:"estimatedPrice,omitempty"`
}

// Notifier hands a notification to its delivery channel.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error {
	return f(ctx, n)
}
