package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/detailshop-backend/internal/notifications"
	"github.com/angelmondragon/detailshop-backend/internal/settings"
	"github.com/angelmondragon/detailshop-backend/pkg/auth"
	"github.com/angelmondragon/detailshop-backend/pkg/db"
	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
	"github.com/angelmondragon/detailshop-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const confirmationMessage = "Recebemos seu pré-agendamento! Nossa equipe vai entrar em contato para confirmar a data."

type customerLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

type staffDirectory interface {
	EmailUsernames(ctx context.Context) ([]string, error)
}

type dispatcher interface {
	Dispatch(ctx context.Context, n notifications.Notification)
}

// Service manages the appointment lifecycle.
type Service interface {
	Create(ctx context.Context, principal *auth.Principal, input CreateInput) (*CreateResult, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*AppointmentDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*AppointmentDTO, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*ListResult, error)
	ListForCustomer(ctx context.Context, principal *auth.Principal, params pagination.Params) (*ListResult, error)
}

type ServiceParams struct {
	Repo       *Repository
	Customers  customerLookup
	Staff      staffDirectory
	Settings   settings.Provider
	Dispatcher dispatcher
	Logger     *logger.Logger
	Now        func() time.Time
}

type service struct {
	repo       *Repository
	customers  customerLookup
	staff      staffDirectory
	settings   settings.Provider
	dispatcher dispatcher
	logg       *logger.Logger
	now        func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("appointments repository required")
	}
	if params.Customers == nil {
		return nil, fmt.Errorf("customer lookup required")
	}
	if params.Staff == nil {
		return nil, fmt.Errorf("staff directory required")
	}
	if params.Settings == nil {
		return nil, fmt.Errorf("settings provider required")
	}
	if params.Dispatcher == nil {
		return nil, fmt.Errorf("notification dispatcher required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:       params.Repo,
		customers:  params.Customers,
		staff:      params.Staff,
		settings:   params.Settings,
		dispatcher: params.Dispatcher,
		logg:       logg,
		now:        now,
	}, nil
}

func (s *service) Create(ctx context.Context, principal *auth.Principal, input CreateInput) (*CreateResult, error) {
	appointment := &models.Appointment{
		CustomerName:       strings.TrimSpace(input.CustomerName),
		CustomerPhone:      strings.TrimSpace(input.CustomerPhone),
		CustomerEmail:      trimmed(input.CustomerEmail),
		VehicleInfo:        trimmed(input.VehicleInfo),
		ServiceDescription: trimmed(input.ServiceDescription),
		Status:             enums.AppointmentStatusPreBooking,
	}

	// A signed-in customer books as themselves regardless of the submitted contact.
	if principal.IsCustomer() {
		customer, err := s.loadCustomer(ctx, principal.ID)
		if err != nil {
			return nil, err
		}
		if customer != nil {
			appointment.CustomerID = &customer.ID
			appointment.CustomerName = strings.TrimSpace(customer.Name)
			appointment.CustomerPhone = strings.TrimSpace(customer.Phone)
			appointment.CustomerEmail = trimmed(customer.Email)
		}
	}
	if appointment.CustomerName == "" || appointment.CustomerPhone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name and phone are required")
	}

	preferred, err := parseDate(input.PreferredDate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid preferredDate")
	}
	appointment.PreferredDate = preferred

	created, err := s.repo.Create(ctx, appointment)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create appointment")
	}
	ctx = s.logg.WithField(ctx, "appointment_id", created.ID.String())
	s.logg.Info(ctx, "appointment.created")

	s.notifyStaff(ctx, created)

	return &CreateResult{
		Appointment:    *FromModel(created),
		WhatsAppNumber: s.settings.WhatsAppNumber(ctx),
		Message:        confirmationMessage,
	}, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*AppointmentDTO, error) {
	appointment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := *appointment
	ctx = s.logg.WithField(ctx, "appointment_id", id.String())

	if input.Status != nil {
		next := *input.Status
		if !next.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
		}
		if !previous.Status.CanTransitionTo(next) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "appointment status transition not allowed").
				WithDetails(map[string]string{"from": string(previous.Status), "to": string(next)})
		}
		appointment.Status = next
	}

	confirmed, err := parseDate(input.ConfirmedDate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid confirmedDate")
	}
	if confirmed != nil {
		appointment.ConfirmedDate = confirmed
	}
	preferred, err := parseDate(input.PreferredDate)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid preferredDate")
	}
	if preferred != nil {
		appointment.PreferredDate = preferred
	}
	if input.EstimatedPrice != nil {
		if *input.EstimatedPrice < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "estimatedPrice must not be negative")
		}
		appointment.EstimatedPrice = input.EstimatedPrice
	}
	if input.AdminNotes != nil {
		appointment.AdminNotes = input.AdminNotes
	}
	if input.VehicleInfo != nil {
		appointment.VehicleInfo = input.VehicleInfo
	}
	if input.ServiceDescription != nil {
		appointment.ServiceDescription = input.ServiceDescription
	}
	appointment.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, appointment)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update appointment")
	}

	if input.Status != nil && updated.CustomerEmail != nil {
		s.dispatcher.Dispatch(ctx, statusChanged(&previous, updated, confirmed, input))
	}
	return FromModel(updated), nil
}

// statusChanged carries each optional field as the value sent in this update,
// falling back to what the row held before it.
func statusChanged(previous, updated *models.Appointment, confirmed *time.Time, input UpdateInput) notifications.Notification {
	n := notifications.Notification{
		Type:           enums.NotificationTypeAppointmentStatusChanged,
		Recipients:     []string{*updated.CustomerEmail},
		AppointmentID:  updated.ID,
		CustomerName:   updated.CustomerName,
		CustomerPhone:  updated.CustomerPhone,
		StatusLabel:    updated.Status.Label(),
		ConfirmedDate:  previous.ConfirmedDate,
		AdminNotes:     previous.AdminNotes,
		EstimatedPrice: previous.EstimatedPrice,
	}
	if confirmed != nil {
		n.ConfirmedDate = confirmed
	}
	if input.AdminNotes != nil {
		n.AdminNotes = input.AdminNotes
	}
	if input.EstimatedPrice != nil {
		n.EstimatedPrice = input.EstimatedPrice
	}
	return n
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete appointment")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*AppointmentDTO, error) {
	appointment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(appointment), nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*ListResult, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	return s.list(ctx, params, filters, false)
}

func (s *service) ListForCustomer(ctx context.Context, principal *auth.Principal, params pagination.Params) (*ListResult, error) {
	if !principal.IsCustomer() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer session required")
	}
	customerID := principal.ID
	return s.list(ctx, params, ListFilters{CustomerID: &customerID}, true)
}

func (s *service) list(ctx context.Context, params pagination.Params, filters ListFilters, customerView bool) (*ListResult, error) {
	rows, next, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pagination.WrapListError(err, "list appointments")
	}
	out := &ListResult{Appointments: make([]AppointmentDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		dto := *FromModel(&rows[i])
		if customerView {
			dto = dto.ForCustomer()
		}
		out.Appointments = append(out.Appointments, dto)
	}
	return out, nil
}

func (s *service) notifyStaff(ctx context.Context, appointment *models.Appointment) {
	recipients, err := s.staff.EmailUsernames(ctx)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "appointment.staff_lookup_failed")
		return
	}
	if len(recipients) == 0 {
		return
	}
	s.dispatcher.Dispatch(ctx, notifications.Notification{
		Type:               enums.NotificationTypeAppointmentCreated,
		Recipients:         recipients,
		AppointmentID:      appointment.ID,
		CustomerName:       appointment.CustomerName,
		CustomerPhone:      appointment.CustomerPhone,
		VehicleInfo:        appointment.VehicleInfo,
		ServiceDescription: appointment.ServiceDescription,
		PreferredDate:      appointment.PreferredDate,
		StatusLabel:        appointment.Status.Label(),
	})
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var appointment *models.Appointment
	err := db.RetryTransient(ctx, func(ctx context.Context) error {
		var err error
		appointment, err = s.repo.FindByID(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load appointment")
	}
	return appointment, nil
}

func (s *service) loadCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer *models.Customer
	err := db.RetryTransient(ctx, func(ctx context.Context) error {
		var err error
		customer, err = s.customers.FindByID(ctx, id)
		return err
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load customer")
	}
	return customer, nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
