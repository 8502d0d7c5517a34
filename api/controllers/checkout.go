package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/detailshop-backend/api/responses"
	"github.com/angelmondragon/detailshop-backend/api/validators"
	"github.com/angelmondragon/detailshop-backend/internal/checkout"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
)

type checkoutRequest struct {
	Customer      checkoutCustomer `json:"customer" validate:"required"`
	Items         []checkoutItem   `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string           `json:"paymentMethod,omitempty"`
}

type checkoutCustomer struct {
	Name            string  `json:"name" validate:"required"`
	Phone           string  `json:"phone" validate:"required"`
	Email           *string `json:"email,omitempty"`
	DeliveryAddress *string `json:"deliveryAddress,omitempty"`
}

type checkoutItem struct {
	ProductID    productRef      `json:"productId,omitempty"`
	ProductName  string          `json:"productName" validate:"required"`
	ProductPrice decimal.Decimal `json:"productPrice" validate:"gte=0"`
	Quantity     int             `json:"quantity" validate:"min=1"`
}

// productRef is the storefront's product identifier. The cart sends catalog
// UUIDs or legacy numeric ids, so both JSON strings and numbers are kept as
// opaque text.
type productRef string

func (p *productRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = productRef(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = productRef(n.String())
	return nil
}

func (p productRef) ptr() *string {
	if p == "" {
		return nil
	}
	s := string(p)
	return &s
}

func (c checkoutRequest) toInput(fallback enums.PaymentMethod) (checkout.Input, error) {
	method := fallback
	if raw := strings.TrimSpace(c.PaymentMethod); raw != "" {
		parsed, err := enums.ParsePaymentMethod(strings.ToLower(raw))
		if err != nil {
			return checkout.Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
		}
		method = parsed
	}

	items := make([]checkout.CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, checkout.CartItem{
			ProductID:    item.ProductID.ptr(),
			ProductName:  item.ProductName,
			ProductPrice: item.ProductPrice,
			Quantity:     item.Quantity,
		})
	}

	return checkout.Input{
		Customer: checkout.ContactInput{
			Name:            c.Customer.Name,
			Phone:           c.Customer.Phone,
			Email:           c.Customer.Email,
			DeliveryAddress: c.Customer.DeliveryAddress,
		},
		Items:         items,
		PaymentMethod: method,
	}, nil
}

// Checkout records a WhatsApp order and returns the prefilled message.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput(enums.PaymentMethodWhatsApp)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CheckoutManual(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// CreateCheckoutSession records a card or pix order and opens the hosted
// payment page.
func CreateCheckoutSession(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput(enums.PaymentMethodCard)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateSession(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// PaymentStatus lets the return page poll the order after the redirect.
func PaymentStatus(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuidParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.PaymentStatus(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
