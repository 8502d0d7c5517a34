package models

import (
	"time"

	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a storefront purchase. Customer fields are a snapshot taken at
// checkout and never follow later edits to the customer.
type Order struct {
	ID                    uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID            uuid.UUID            `gorm:"column:customer_id;type:uuid;not null;index"`
	Status                enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'pending';index"`
	PaymentStatus         *enums.PaymentStatus `gorm:"column:payment_status;type:text"`
	Total                 decimal.Decimal      `gorm:"column:total;type:numeric(12,2);not null"`
	CustomerName          string               `gorm:"column:customer_name;not null"`
	CustomerPhone         string               `gorm:"column:customer_phone;not null"`
	CustomerEmail         *string              `gorm:"column:customer_email"`
	DeliveryAddress       *string              `gorm:"column:delivery_address"`
	PaymentMethod         enums.PaymentMethod  `gorm:"column:payment_method;type:text;not null"`
	WhatsAppMessage       *string              `gorm:"column:whatsapp_message"`
	StripeSessionID       *string              `gorm:"column:stripe_session_id;index"`
	StripePaymentIntentID *string              `gorm:"column:stripe_payment_intent_id;index"`
	PaidAt                *time.Time           `gorm:"column:paid_at"`
	Items                 []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt             time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// OrderItem is an immutable cart line snapshot.
type OrderItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID      uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID    *string         `gorm:"column:product_id"`
	ProductName  string          `gorm:"column:product_name;not null"`
	ProductPrice decimal.Decimal `gorm:"column:product_price;type:numeric(12,2);not null"`
	Quantity     int             `gorm:"column:quantity;not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
