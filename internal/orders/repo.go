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

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create inserts the order together with its items.
func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindDetail(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "stripe_session_id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "stripe_payment_intent_id = ?", paymentIntentID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) SetSessionID(ctx context.Context, id uuid.UUID, sessionID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{"stripe_session_id": sessionID, "updated_at": time.Now().UTC()}).Error
}

// ApplyPaymentTransition writes the transition only while the current payment
// status ranks at or below the target, so late or replayed events can never
// move an order backwards. It reports whether a row was updated.
func (r *repository) ApplyPaymentTransition(ctx context.Context, id uuid.UUID, transition PaymentTransition) (bool, error) {
	updates := map[string]any{
		"status":         transition.Status,
		"payment_status": transition.PaymentStatus,
		"updated_at":     time.Now().UTC(),
	}
	if transition.PaymentIntentID != nil && *transition.PaymentIntentID != "" {
		updates["stripe_payment_intent_id"] = *transition.PaymentIntentID
	}
	if transition.PaidAt != nil {
		updates["paid_at"] = gorm.Expr("COALESCE(paid_at, ?)", transition.PaidAt.UTC())
	}

	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status IN ?", id, transition.PaymentStatus.StatusesAtOrBelow()).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateStatus moves the order to `to` only while its status is one of `from`.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from []enums.OrderStatus, to enums.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, string, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") })
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}
	return pagination.Find(query, params, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
}

// ListStaleAwaitingPayment returns gateway orders still waiting on payment that
// were created before the cutoff and carry a session to look up.
func (r *repository) ListStaleAwaitingPayment(ctx context.Context, createdBefore time.Time, limit int) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("payment_status = ? AND stripe_session_id IS NOT NULL AND created_at < ?", enums.PaymentStatusAwaitingPayment, createdBefore.UTC()).
		Order("created_at ASC").
		Limit(pagination.NormalizeLimit(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
