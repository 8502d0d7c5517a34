package enums

// NotificationType names a best-effort message sent to staff or customers.
type NotificationType string

const (
	NotificationTypeAppointmentCreated       NotificationType = "appointment.created"
	NotificationTypeAppointmentStatusChanged NotificationType = "appointment.status_changed"
)

// IsValid reports whether the value is a known NotificationType.
func (n NotificationType) IsValid() bool {
	return n == NotificationTypeAppointmentCreated || n == NotificationTypeAppointmentStatusChanged
}
