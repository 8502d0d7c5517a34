package product

import (
	"time"

	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO represents the catalog payload returned to clients.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Category    *string         `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Active      bool            `json:"active"`
	Images      []ImageDTO      `json:"images"`
	Variations  []VariationDTO  `json:"variations,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ImageDTO is an ordered product image.
type ImageDTO struct {
	ID       uuid.UUID `json:"id"`
	URL      string    `json:"url"`
	Position int       `json:"position"`
}

// VariationDTO is a purchasable variant.
type VariationDTO struct {
	ID        uuid.UUID        `json:"id"`
	ProductID uuid.UUID        `json:"productId"`
	Name      string           `json:"name"`
	SKU       *string          `json:"sku,omitempty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Stock     int              `json:"stock"`
}

// ListResult is one page of products.
type ListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"nextCursor,omitempty"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	dto := &ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Category:    product.Category,
		Price:       product.Price,
		Stock:       product.Stock,
		Active:      product.Active,
		Images:      make([]ImageDTO, 0, len(product.Images)),
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
	for _, image := range product.Images {
		dto.Images = append(dto.Images, ImageDTO{ID: image.ID, URL: image.URL, Position: image.Position})
	}
	for i := range product.Variations {
		dto.Variations = append(dto.Variations, *NewVariationDTO(&product.Variations[i]))
	}
	return dto
}

// NewVariationDTO builds a variation DTO.
func NewVariationDTO(v *models.Variation) *VariationDTO {
	return &VariationDTO{
		ID:        v.ID,
		ProductID: v.ProductID,
		Name:      v.Name,
		SKU:       v.SKU,
		Price:     v.Price,
		Stock:     v.Stock,
	}
}
