package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/detailshop-backend/pkg/auth"
	"github.com/angelmondragon/detailshop-backend/pkg/db"
	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"github.com/angelmondragon/detailshop-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes admin customer management and the customer self profile.
type Service interface {
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*CustomerDTO, error)
	Create(ctx context.Context, input CreateInput) (*CustomerDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*CustomerDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Me(ctx context.Context, principal *auth.Principal) (*CustomerDTO, error)
	UpdateMe(ctx context.Context, principal *auth.Principal, input UpdateInput) (*CustomerDTO, error)
}

type service struct {
	repo *Repository
}

// NewService builds the customer service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*ListResult, error) {
	rows, next, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pagination.WrapListError(err, "list customers")
	}
	out := &ListResult{Customers: make([]CustomerDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		out.Customers = append(out.Customers, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(customer), nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CustomerDTO, error) {
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	if name == "" || phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and phone are required")
	}
	customer := &models.Customer{
		Name:            name,
		Phone:           phone,
		Email:           normalizeOptional(input.Email),
		DeliveryAddress: normalizeOptional(input.DeliveryAddress),
	}
	created, err := s.repo.Create(ctx, customer)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "customer already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create customer")
	}
	return FromModel(created), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*CustomerDTO, error) {
	customer, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, customer, input)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete customer")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return nil
}

func (s *service) Me(ctx context.Context, principal *auth.Principal) (*CustomerDTO, error) {
	if !principal.IsCustomer() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer session required")
	}
	return s.Get(ctx, principal.ID)
}

func (s *service) UpdateMe(ctx context.Context, principal *auth.Principal, input UpdateInput) (*CustomerDTO, error) {
	if !principal.IsCustomer() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer session required")
	}
	return s.Update(ctx, principal.ID, input)
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer *models.Customer
	err := db.RetryTransient(ctx, func(ctx context.Context) error {
		var err error
		customer, err = s.repo.FindByID(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load customer")
	}
	return customer, nil
}

func (s *service) apply(ctx context.Context, customer *models.Customer, input UpdateInput) (*CustomerDTO, error) {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		customer.Name = name
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if phone == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone cannot be empty")
		}
		customer.Phone = phone
	}
	if input.DeliveryAddress != nil {
		customer.DeliveryAddress = normalizeOptional(input.DeliveryAddress)
	}
	if input.Email != nil {
		email := normalizeOptional(input.Email)
		if email != nil && customer.IsRegistered {
			existing, err := s.repo.FindRegisteredByEmail(ctx, *email)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
			}
			if existing != nil && existing.ID != customer.ID {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
		}
		if email == nil && customer.IsRegistered {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "registered customers need an email")
		}
		customer.Email = email
	}

	updated, err := s.repo.Update(ctx, customer)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update customer")
	}
	return FromModel(updated), nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
