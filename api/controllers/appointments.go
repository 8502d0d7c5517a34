package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/detailshop-backend/api/middleware"
	"github.com/angelmondragon/detailshop-backend/api/responses"
	"github.com/angelmondragon/detailshop-backend/api/validators"
	"github.com/angelmondragon/detailshop-backend/internal/appointments"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
)

// Name and phone are checked by the service because a signed-in customer's
// record replaces whatever was submitted.
type createAppointmentRequest struct {
	CustomerName       string  `json:"customerName"`
	CustomerPhone      string  `json:"customerPhone"`
	CustomerEmail      *string `json:"customerEmail,omitempty"`
	VehicleInfo        *string `json:"vehicleInfo,omitempty"`
	ServiceDescription *string `json:"serviceDescription,omitempty"`
	PreferredDate      *string `json:"preferredDate,omitempty"`
	Status             *string `json:"status,omitempty"`
}

type updateAppointmentRequest struct {
	Status             *string `json:"status,omitempty"`
	ConfirmedDate      *string `json:"confirmedDate,omitempty"`
	PreferredDate      *string `json:"preferredDate,omitempty"`
	EstimatedPrice     *int64  `json:"estimatedPrice,omitempty" validate:"omitempty,min=0"`
	AdminNotes         *string `json:"adminNotes,omitempty"`
	VehicleInfo        *string `json:"vehicleInfo,omitempty"`
	ServiceDescription *string `json:"serviceDescription,omitempty"`
}

func (u updateAppointmentRequest) toInput() (appointments.UpdateInput, error) {
	input := appointments.UpdateInput{
		ConfirmedDate:      u.ConfirmedDate,
		PreferredDate:      u.PreferredDate,
		EstimatedPrice:     u.EstimatedPrice,
		AdminNotes:         u.AdminNotes,
		VehicleInfo:        u.VehicleInfo,
		ServiceDescription: u.ServiceDescription,
	}
	if u.Status != nil {
		status, err := enums.ParseAppointmentStatus(strings.TrimSpace(*u.Status))
		if err != nil {
			return appointments.UpdateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		input.Status = &status
	}
	return input, nil
}

// CreateAppointment books a pre-appointment. Anonymous visitors and signed-in
// customers share the route.
func CreateAppointment(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "appointment service unavailable"))
			return
		}

		var body createAppointmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), middleware.PrincipalFromContext(r.Context()), appointments.CreateInput{
			CustomerName:       body.CustomerName,
			CustomerPhone:      body.CustomerPhone,
			CustomerEmail:      body.CustomerEmail,
			VehicleInfo:        body.VehicleInfo,
			ServiceDescription: body.ServiceDescription,
			PreferredDate:      body.PreferredDate,
			Status:             body.Status,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func AdminListAppointments(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var filters appointments.ListFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseAppointmentStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filters.Status = &status
		}
		if filters.CustomerID, err = validators.ParseQueryUUID(r, "customerId"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AdminGetAppointment(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "appointmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		appointment, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, appointment)
	}
}

// AdminUpdateAppointment merges staff edits and advances the status.
func AdminUpdateAppointment(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "appointmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateAppointmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		appointment, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, appointment)
	}
}

func AdminDeleteAppointment(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "appointmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// CustomerAppointments lists the signed-in customer's bookings without staff notes.
func CustomerAppointments(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListForCustomer(r.Context(), middleware.PrincipalFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
