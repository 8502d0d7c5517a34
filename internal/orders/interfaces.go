package orders

import (
	"context"
	"time"

	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	"github.com/angelmondragon/detailshop-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindDetail(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error)
	SetSessionID(ctx context.Context, id uuid.UUID, sessionID string) error
	ApplyPaymentTransition(ctx context.Context, id uuid.UUID, transition PaymentTransition) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from []enums.OrderStatus, to enums.OrderStatus) (bool, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, string, error)
	ListStaleAwaitingPayment(ctx context.Context, createdBefore time.Time, limit int) ([]models.Order, error)
}

// PaymentTransition is an absolute target state for a gateway order.
// PaymentIntentID and PaidAt are only written when set; PaidAt never
// overwrites an existing timestamp.
type PaymentTransition struct {
	Status          enums.OrderStatus
	PaymentStatus   enums.PaymentStatus
	PaymentIntentID *string
	PaidAt          *time.Time
}

// ListFilters narrows order listings.
type ListFilters struct {
	Status     *enums.OrderStatus
	CustomerID *uuid.UUID
}
