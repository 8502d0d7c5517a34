package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/detailshop-backend/pkg/db"
	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"github.com/angelmondragon/detailshop-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes catalog reads and back-office product management.
type Service interface {
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*ProductDTO, error)
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CreateVariation(ctx context.Context, productID uuid.UUID, input VariationInput) (*VariationDTO, error)
	UpdateVariation(ctx context.Context, productID, variationID uuid.UUID, input VariationUpdate) (*VariationDTO, error)
	DeleteVariation(ctx context.Context, productID, variationID uuid.UUID) error
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name        string
	Description *string
	Category    *string
	Price       decimal.Decimal
	Stock       int
	Active      *bool
	ImageURLs   []string
	Variations  []VariationInput
}

// UpdateProductInput holds optional mutation values for a product. A non-nil
// ImageURLs replaces the image list.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Category    *string
	Price       *decimal.Decimal
	Stock       *int
	Active      *bool
	ImageURLs   *[]string
}

// VariationInput describes a new variation.
type VariationInput struct {
	Name  string
	SKU   *string
	Price *decimal.Decimal
	Stock int
}

// VariationUpdate holds optional variation changes.
type VariationUpdate struct {
	Name  *string
	SKU   *string
	Price *decimal.Decimal
	Stock *int
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo *Repository
	tx   txRunner
}

// NewService constructs a product service instance.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*ListResult, error) {
	rows, next, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pagination.WrapListError(err, "list products")
	}
	out := &ListResult{Products: make([]ProductDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		out.Products = append(out.Products, *NewProductDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.Active && !includeInactive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return NewProductDTO(product), nil
}

// Create inserts the product with its images and variations.
func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := validateAmounts(&input.Price, &input.Stock); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        name,
		Description: trimmed(input.Description),
		Category:    trimmed(input.Category),
		Price:       input.Price,
		Stock:       input.Stock,
		Active:      true,
		Images:      buildImages(input.ImageURLs),
	}
	if input.Active != nil {
		product.Active = *input.Active
	}
	for _, v := range input.Variations {
		variation, err := newVariation(v)
		if err != nil {
			return nil, err
		}
		product.Variations = append(product.Variations, *variation)
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Create(ctx, product); err != nil {
			return err
		}
		// gorm skips a false bool when the column has a default
		if !product.Active {
			_, err := txRepo.Update(ctx, product)
			return err
		}
		return nil
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert product")
	}
	return s.Get(ctx, product.ID, true)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateAmounts(input.Price, input.Stock); err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = trimmed(input.Description)
	}
	if input.Category != nil {
		product.Category = trimmed(input.Category)
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Active != nil {
		product.Active = *input.Active
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Update(ctx, product); err != nil {
			return err
		}
		if input.ImageURLs != nil {
			return txRepo.ReplaceImages(ctx, product.ID, buildImages(*input.ImageURLs))
		}
		return nil
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	return s.Get(ctx, product.ID, true)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) CreateVariation(ctx context.Context, productID uuid.UUID, input VariationInput) (*VariationDTO, error) {
	if _, err := s.load(ctx, productID); err != nil {
		return nil, err
	}
	variation, err := newVariation(input)
	if err != nil {
		return nil, err
	}
	variation.ProductID = productID
	if _, err := s.repo.CreateVariation(ctx, variation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert variation")
	}
	return NewVariationDTO(variation), nil
}

func (s *service) UpdateVariation(ctx context.Context, productID, variationID uuid.UUID, input VariationUpdate) (*VariationDTO, error) {
	variation, err := s.repo.FindVariation(ctx, productID, variationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load variation")
	}
	if err := validateAmounts(input.Price, input.Stock); err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		variation.Name = name
	}
	if input.SKU != nil {
		variation.SKU = trimmed(input.SKU)
	}
	if input.Price != nil {
		price := *input.Price
		variation.Price = &price
	}
	if input.Stock != nil {
		variation.Stock = *input.Stock
	}
	if _, err := s.repo.SaveVariation(ctx, variation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update variation")
	}
	return NewVariationDTO(variation), nil
}

func (s *service) DeleteVariation(ctx context.Context, productID, variationID uuid.UUID) error {
	deleted, err := s.repo.DeleteVariation(ctx, productID, variationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete variation")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "variation not found")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product *models.Product
	err := db.RetryTransient(ctx, func(ctx context.Context) error {
		var err error
		product, err = s.repo.FindDetail(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}

func newVariation(input VariationInput) (*models.Variation, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variation name is required")
	}
	if err := validateAmounts(input.Price, &input.Stock); err != nil {
		return nil, err
	}
	return &models.Variation{
		Name:  name,
		SKU:   trimmed(input.SKU),
		Price: input.Price,
		Stock: input.Stock,
	}, nil
}

func validateAmounts(price *decimal.Decimal, stock *int) error {
	if price != nil && price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be >= 0")
	}
	if stock != nil && *stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock must be >= 0")
	}
	return nil
}

func buildImages(urls []string) []models.ProductImage {
	images := make([]models.ProductImage, 0, len(urls))
	for _, url := range urls {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		images = append(images, models.ProductImage{URL: url, Position: len(images)})
	}
	return images
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
