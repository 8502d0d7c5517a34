package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/detailshop-backend/pkg/auth"
	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	minRating = 1
	maxRating = 5
)

// ReviewDTO is the review payload.
type ReviewDTO struct {
	ID         uuid.UUID  `json:"id"`
	ProductID  uuid.UUID  `json:"productId"`
	CustomerID *uuid.UUID `json:"customerId,omitempty"`
	AuthorName string     `json:"authorName"`
	Rating     int        `json:"rating"`
	Comment    *string    `json:"comment,omitempty"`
	Approved   bool       `json:"approved"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// CreateInput is the customer review payload.
type CreateInput struct {
	Rating  int
	Comment *string
}

// Service exposes review publishing and moderation.
type Service interface {
	ListApproved(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error)
	Create(ctx context.Context, principal *auth.Principal, productID uuid.UUID, input CreateInput) (*ReviewDTO, error)
	ListAdmin(ctx context.Context, approved *bool) ([]ReviewDTO, error)
	Approve(ctx context.Context, id uuid.UUID) (*ReviewDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type customerLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

type service struct {
	repo      *Repository
	products  productLookup
	customers customerLookup
}

// NewService builds the review service.
func NewService(repo *Repository, products productLookup, customers customerLookup) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer lookup required")
	}
	return &service{repo: repo, products: products, customers: customers}, nil
}

func (s *service) ListApproved(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error) {
	approved := true
	return s.list(ctx, ListFilters{ProductID: &productID, Approved: &approved})
}

// Create stores a pending review authored by the signed-in customer.
func (s *service) Create(ctx context.Context, principal *auth.Principal, productID uuid.UUID, input CreateInput) (*ReviewDTO, error) {
	if !principal.IsCustomer() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer session required")
	}
	if input.Rating < minRating || input.Rating > maxRating {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	customer, err := s.customers.FindByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer session required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load customer")
	}

	review := &models.Review{
		ProductID:  productID,
		CustomerID: &customer.ID,
		AuthorName: customer.Name,
		Rating:     input.Rating,
	}
	if input.Comment != nil {
		if comment := strings.TrimSpace(*input.Comment); comment != "" {
			review.Comment = &comment
		}
	}
	if _, err := s.repo.Create(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert review")
	}
	return fromModel(review), nil
}

func (s *service) ListAdmin(ctx context.Context, approved *bool) ([]ReviewDTO, error) {
	return s.list(ctx, ListFilters{Approved: approved})
}

func (s *service) Approve(ctx context.Context, id uuid.UUID) (*ReviewDTO, error) {
	found, err := s.repo.Approve(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "approve review")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
	}
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load review")
	}
	return fromModel(review), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete review")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
	}
	return nil
}

func (s *service) list(ctx context.Context, filters ListFilters) ([]ReviewDTO, error) {
	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reviews")
	}
	out := make([]ReviewDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *fromModel(&rows[i]))
	}
	return out, nil
}

func fromModel(r *models.Review) *ReviewDTO {
	return &ReviewDTO{
		ID:         r.ID,
		ProductID:  r.ProductID,
		CustomerID: r.CustomerID,
		AuthorName: r.AuthorName,
		Rating:     r.Rating,
		Comment:    r.Comment,
		Approved:   r.Approved,
		CreatedAt:  r.CreatedAt,
	}
}
