package enums

import (
	"fmt"
	"slices"
)

// AppointmentStatus is the booking lifecycle. Values are persisted and shown to
// staff in Portuguese.
type AppointmentStatus string

const (
	AppointmentStatusPreBooking AppointmentStatus = "pre_agendamento"
	AppointmentStatusScheduled  AppointmentStatus = "agendado_nao_iniciado"
	AppointmentStatusInProgress AppointmentStatus = "em_andamento"
	AppointmentStatusCompleted  AppointmentStatus = "concluido"
	AppointmentStatusCancelled  AppointmentStatus = "cancelado"
)

var appointmentProgression = []AppointmentStatus{
	AppointmentStatusPreBooking,
	AppointmentStatusScheduled,
	AppointmentStatusInProgress,
	AppointmentStatusCompleted,
}

var appointmentLabels = map[AppointmentStatus]string{
	AppointmentStatusPreBooking: "Pré-agendamento",
	AppointmentStatusScheduled:  "Agendado (não iniciado)",
	AppointmentStatusInProgress: "Em andamento",
	AppointmentStatusCompleted:  "Concluído",
	AppointmentStatusCancelled:  "Cancelado",
}

// Label returns the customer-facing description of the status.
func (s AppointmentStatus) Label() string {
	if label, ok := appointmentLabels[s]; ok {
		return label
	}
	return string(s)
}

// IsValid reports whether the value is a known AppointmentStatus.
func (s AppointmentStatus) IsValid() bool {
	_, ok := appointmentLabels[s]
	return ok
}

// IsTerminal reports whether no further transitions are allowed.
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled
}

func (s AppointmentStatus) step() int {
	return slices.Index(appointmentProgression, s)
}

// CanTransitionTo reports whether staff may move an appointment from s to next.
// Re-applying the current status is always allowed; otherwise progress only
// moves forward and cancellation is reachable from any non-terminal state.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if !next.IsValid() {
		return false
	}
	if s == next {
		return true
	}
	if s.IsTerminal() {
		return false
	}
	if next == AppointmentStatusCancelled {
		return true
	}
	return next.step() > s.step()
}

// ParseAppointmentStatus converts raw input into an AppointmentStatus.
func ParseAppointmentStatus(value string) (AppointmentStatus, error) {
	candidate := AppointmentStatus(value)
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid appointment status %q", value)
}
