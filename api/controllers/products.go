package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/detailshop-backend/api/responses"
	"github.com/angelmondragon/detailshop-backend/api/validators"
	productsvc "github.com/angelmondragon/detailshop-backend/internal/products"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
)

type createProductRequest struct {
	Name        string             `json:"name" validate:"required"`
	Description *string            `json:"description,omitempty"`
	Category    *string            `json:"category,omitempty"`
	Price       decimal.Decimal    `json:"price" validate:"gte=0"`
	Stock       int                `json:"stock" validate:"min=0"`
	Active      *bool              `json:"active,omitempty"`
	Images      []string           `json:"images,omitempty" validate:"dive,required"`
	Variations  []variationRequest `json:"variations,omitempty" validate:"dive"`
}

type updateProductRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty" validate:"omitempty,gte=0"`
	Stock       *int             `json:"stock,omitempty" validate:"omitempty,min=0"`
	Active      *bool            `json:"active,omitempty"`
	Images      *[]string        `json:"images,omitempty"`
}

type variationRequest struct {
	Name  string           `json:"name" validate:"required"`
	SKU   *string          `json:"sku,omitempty"`
	Price *decimal.Decimal `json:"price,omitempty" validate:"omitempty,gte=0"`
	Stock int              `json:"stock" validate:"min=0"`
}

type variationUpdateRequest struct {
	Name  *string          `json:"name,omitempty"`
	SKU   *string          `json:"sku,omitempty"`
	Price *decimal.Decimal `json:"price,omitempty" validate:"omitempty,gte=0"`
	Stock *int             `json:"stock,omitempty" validate:"omitempty,min=0"`
}

func (v variationRequest) toInput() productsvc.VariationInput {
	return productsvc.VariationInput{Name: v.Name, SKU: v.SKU, Price: v.Price, Stock: v.Stock}
}

// ListProducts serves the storefront catalog. Inactive products are only
// listed for the back office.
func ListProducts(svc productsvc.Service, includeInactive bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query := r.URL.Query()
		filters := productsvc.ListFilters{
			Category: validators.SanitizeString(query.Get("category"), 100),
			Query:    validators.SanitizeString(query.Get("q"), 100),
		}
		if filters.Active, err = validators.ParseQueryBool(r, "active"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !includeInactive {
			active := true
			filters.Active = &active
		}

		result, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func GetProduct(svc productsvc.Service, includeInactive bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), id, includeInactive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func AdminCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := productsvc.CreateProductInput{
			Name:        body.Name,
			Description: body.Description,
			Category:    body.Category,
			Price:       body.Price,
			Stock:       body.Stock,
			Active:      body.Active,
			ImageURLs:   body.Images,
		}
		for _, v := range body.Variations {
			input.Variations = append(input.Variations, v.toInput())
		}

		product, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func AdminUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Update(r.Context(), id, productsvc.UpdateProductInput{
			Name:        body.Name,
			Description: body.Description,
			Category:    body.Category,
			Price:       body.Price,
			Stock:       body.Stock,
			Active:      body.Active,
			ImageURLs:   body.Images,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func AdminDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "productId")
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

func AdminCreateVariation(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := uuidParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body variationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variation, err := svc.CreateVariation(r.Context(), productID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, variation)
	}
}

func AdminUpdateVariation(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := uuidParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variationID, err := uuidParam(r, "variationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body variationUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variation, err := svc.UpdateVariation(r.Context(), productID, variationID, productsvc.VariationUpdate{
			Name:  body.Name,
			SKU:   body.SKU,
			Price: body.Price,
			Stock: body.Stock,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, variation)
	}
}

func AdminDeleteVariation(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := uuidParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variationID, err := uuidParam(r, "variationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteVariation(r.Context(), productID, variationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
