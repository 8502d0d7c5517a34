// Package services manages the detailing services listed on the storefront.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OfferingDTO is the public shape of an offered service.
type OfferingDTO struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	Description     *string          `json:"description,omitempty"`
	PriceFrom       *decimal.Decimal `json:"priceFrom,omitempty"`
	DurationMinutes *int             `json:"durationMinutes,omitempty"`
	Active          bool             `json:"active"`
	SortOrder       int              `json:"sortOrder"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// Input carries create and update fields. On update nil fields are kept.
type Input struct {
	Name            *string
	Description     *string
	PriceFrom       *decimal.Decimal
	DurationMinutes *int
	Active          *bool
	SortOrder       *int
}

// Service exposes offered-service reads and admin CRUD.
type Service interface {
	ListActive(ctx context.Context) ([]OfferingDTO, error)
	ListAll(ctx context.Context) ([]OfferingDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*OfferingDTO, error)
	Create(ctx context.Context, input Input) (*OfferingDTO, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*OfferingDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
}

// NewService builds the offered-services service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("services repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListActive(ctx context.Context) ([]OfferingDTO, error) {
	return s.list(ctx, true)
}

func (s *service) ListAll(ctx context.Context) ([]OfferingDTO, error) {
	return s.list(ctx, false)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OfferingDTO, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return fromModel(row), nil
}

func (s *service) Create(ctx context.Context, input Input) (*OfferingDTO, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	row := &models.Service{Active: true}
	if err := apply(row, input); err != nil {
		return nil, err
	}
	if _, err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert service")
	}
	return fromModel(row), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*OfferingDTO, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(row, input); err != nil {
		return nil, err
	}
	if _, err := s.repo.Save(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update service")
	}
	return fromModel(row), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete service")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
	}
	return nil
}

func (s *service) list(ctx context.Context, activeOnly bool) ([]OfferingDTO, error) {
	rows, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list services")
	}
	out := make([]OfferingDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *fromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load service")
	}
	return row, nil
}

func apply(row *models.Service, input Input) error {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		row.Name = name
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		row.Description = &description
		if description == "" {
			row.Description = nil
		}
	}
	if input.PriceFrom != nil {
		if input.PriceFrom.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "priceFrom must be >= 0")
		}
		price := *input.PriceFrom
		row.PriceFrom = &price
	}
	if input.DurationMinutes != nil {
		if *input.DurationMinutes <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "durationMinutes must be positive")
		}
		minutes := *input.DurationMinutes
		row.DurationMinutes = &minutes
	}
	if input.Active != nil {
		row.Active = *input.Active
	}
	if input.SortOrder != nil {
		row.SortOrder = *input.SortOrder
	}
	return nil
}

func fromModel(row *models.Service) *OfferingDTO {
	return &OfferingDTO{
		ID:              row.ID,
		Name:            row.Name,
		Description:     row.Description,
		PriceFrom:       row.PriceFrom,
		DurationMinutes: row.DurationMinutes,
		Active:          row.Active,
		SortOrder:       row.SortOrder,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}
