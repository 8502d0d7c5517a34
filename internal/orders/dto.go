package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
)

// OrderDTO is the API view of an order.
type OrderDTO struct {
	ID                    uuid.UUID            `json:"id"`
	CustomerID            uuid.UUID            `json:"customerId"`
	Status                enums.OrderStatus    `json:"status"`
	PaymentStatus         *enums.PaymentStatus `json:"paymentStatus"`
	Total                 decimal.Decimal      `json:"total"`
	CustomerName          string               `json:"customerName"`
	CustomerPhone         string               `json:"customerPhone"`
	CustomerEmail         *string              `json:"customerEmail,omitempty"`
	DeliveryAddress       *string              `json:"deliveryAddress,omitempty"`
	PaymentMethod         enums.PaymentMethod  `json:"paymentMethod"`
	WhatsAppMessage       *string              `json:"whatsappMessage,omitempty"`
	StripeSessionID       *string              `json:"stripeSessionId,omitempty"`
	StripePaymentIntentID *string              `json:"stripePaymentIntentId,omitempty"`
	PaidAt                *time.Time           `json:"paidAt,omitempty"`
	Items                 []OrderItemDTO       `json:"items"`
	CreatedAt             time.Time            `json:"createdAt"`
	UpdatedAt             time.Time            `json:"updatedAt"`
}

// OrderItemDTO is one purchased line.
type OrderItemDTO struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    *string         `json:"productId,omitempty"`
	ProductName  string          `json:"productName"`
	ProductPrice decimal.Decimal `json:"productPrice"`
	Quantity     int             `json:"quantity"`
}

// ListResult is one page of orders.
type ListResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:                    o.ID,
		CustomerID:            o.CustomerID,
		Status:                o.Status,
		PaymentStatus:         o.PaymentStatus,
		Total:                 o.Total,
		CustomerName:          o.CustomerName,
		CustomerPhone:         o.CustomerPhone,
		CustomerEmail:         o.CustomerEmail,
		DeliveryAddress:       o.DeliveryAddress,
		PaymentMethod:         o.PaymentMethod,
		WhatsAppMessage:       o.WhatsAppMessage,
		StripeSessionID:       o.StripeSessionID,
		StripePaymentIntentID: o.StripePaymentIntentID,
		PaidAt:                o.PaidAt,
		Items:                 make([]OrderItemDTO, 0, len(o.Items)),
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:           item.ID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductPrice: item.ProductPrice,
			Quantity:     item.Quantity,
		})
	}
	return dto
}
