package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/detailshop-backend/pkg/db"
	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"gorm.io/gorm"
)

const emailTakenMessage = "email already registered"

// Register creates a registered customer, or upgrades the guest row created by
// an earlier checkout with the same phone or email, and opens a session.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*CustomerSession, error) {
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	email := normalizeEmail(req.Email)
	if name == "" || phone == "" || email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, phone and email are required")
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}

	if _, err := s.customers.FindRegisteredByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, emailTakenMessage)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup customer")
	}

	guest, err := s.findGuest(ctx, phone, email)
	if err != nil {
		return nil, err
	}

	credential, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var address *string
	if req.DeliveryAddress != nil {
		if trimmed := strings.TrimSpace(*req.DeliveryAddress); trimmed != "" {
			address = &trimmed
		}
	}

	var customer *models.Customer
	if guest != nil {
		guest.Name = name
		guest.Phone = phone
		guest.Email = &email
		guest.Password = &credential
		guest.IsRegistered = true
		if address != nil {
			guest.DeliveryAddress = address
		}
		customer, err = s.customers.Update(ctx, guest)
	} else {
		customer, err = s.customers.Create(ctx, &models.Customer{
			Name:            name,
			Phone:           phone,
			Email:           &email,
			DeliveryAddress: address,
			IsRegistered:    true,
			Password:        &credential,
		})
	}
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, emailTakenMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save customer")
	}

	s.logg.Info(s.logg.WithField(ctx, "customer_id", customer.ID.String()), "auth.customer_registered")
	return s.customerSession(ctx, customer)
}

// findGuest returns the unregistered customer matching phone, then email. A
// phone already owned by a registered account is a conflict.
func (s *service) findGuest(ctx context.Context, phone, email string) (*models.Customer, error) {
	byPhone, err := s.customers.FindByPhone(ctx, phone)
	switch {
	case err == nil && !byPhone.IsRegistered:
		return byPhone, nil
	case err == nil:
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "phone already registered")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup customer")
	}

	byEmail, err := s.customers.FindByEmail(ctx, email)
	switch {
	case err == nil && !byEmail.IsRegistered:
		return byEmail, nil
	case err == nil:
		return nil, pkgerrors.New(pkgerrors.CodeConflict, emailTakenMessage)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup customer")
	}
}
