package orders

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/detailshop-backend/pkg/db/dbtest"
	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	"github.com/angelmondragon/detailshop-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedCustomer(t *testing.T, conn *gorm.DB) *models.Customer {
	t.Helper()
	customer := &models.Customer{Name: "Ana", Phone: "11999990000"}
	require.NoError(t, conn.Create(customer).Error)
	return customer
}

func gatewayOrder(customerID uuid.UUID, createdAt time.Time) *models.Order {
	status := enums.PaymentStatusAwaitingPayment
	return &models.Order{
		CustomerID:    customerID,
		Status:        enums.OrderStatusAwaitingPayment,
		PaymentStatus: &status,
		Total:         decimal.RequireFromString("145.00"),
		CustomerName:  "Ana",
		CustomerPhone: "11999990000",
		PaymentMethod: enums.PaymentMethodCard,
		CreatedAt:     createdAt,
		Items: []models.OrderItem{
			{ProductName: "Cera", ProductPrice: decimal.RequireFromString("72.50"), Quantity: 2},
		},
	}
}

func manualOrder(customerID uuid.UUID) *models.Order {
	message := "Olá"
	return &models.Order{
		CustomerID:      customerID,
		Status:          enums.OrderStatusPending,
		Total:           decimal.NewFromInt(50),
		CustomerName:    "Ana",
		CustomerPhone:   "11999990000",
		PaymentMethod:   enums.PaymentMethodWhatsApp,
		WhatsAppMessage: &message,
		Items:           []models.OrderItem{{ProductName: "Pano", ProductPrice: decimal.NewFromInt(50), Quantity: 1}},
	}
}

func TestRepositoryCreateAndFind(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	customer := seedCustomer(t, conn)

	order, err := repo.Create(ctx, gatewayOrder(customer.ID, time.Time{}))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, order.ID)

	require.NoError(t, repo.SetSessionID(ctx, order.ID, "cs_test_1"))
	bySession, err := repo.FindBySessionID(ctx, "cs_test_1")
	require.NoError(t, err)
	require.Equal(t, order.ID, bySession.ID)

	detail, err := repo.FindDetail(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 1)
	require.True(t, detail.Items[0].ProductPrice.Equal(decimal.RequireFromString("72.50")))

	_, err = repo.FindByPaymentIntentID(ctx, "pi_missing")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestApplyPaymentTransitionIsForwardOnly(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	customer := seedCustomer(t, conn)
	order, err := repo.Create(ctx, gatewayOrder(customer.ID, time.Time{}))
	require.NoError(t, err)

	firstPaid := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	intent := "pi_123"
	paid := PaymentTransition{Status: enums.OrderStatusPaid, PaymentStatus: enums.PaymentStatusPaid, PaymentIntentID: &intent, PaidAt: &firstPaid}

	applied, err := repo.ApplyPaymentTransition(ctx, order.ID, paid)
	require.NoError(t, err)
	require.True(t, applied)

	replayAt := firstPaid.Add(time.Hour)
	paid.PaidAt = &replayAt
	applied, err = repo.ApplyPaymentTransition(ctx, order.ID, paid)
	require.NoError(t, err)
	require.True(t, applied, "same-rank replay is accepted")

	failed := PaymentTransition{Status: enums.OrderStatusPaymentFailed, PaymentStatus: enums.PaymentStatusFailed}
	applied, err = repo.ApplyPaymentTransition(ctx, order.ID, failed)
	require.NoError(t, err)
	require.False(t, applied, "paid must not fall back to failed")

	reloaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusPaid, reloaded.Status)
	require.Equal(t, enums.PaymentStatusPaid, *reloaded.PaymentStatus)
	require.Equal(t, "pi_123", *reloaded.StripePaymentIntentID)
	require.True(t, reloaded.PaidAt.Equal(firstPaid), "paidAt is set once")

	byIntent, err := repo.FindByPaymentIntentID(ctx, "pi_123")
	require.NoError(t, err)
	require.Equal(t, order.ID, byIntent.ID)
}

func TestRefundBeforeCompletionConverges(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	customer := seedCustomer(t, conn)
	order, err := repo.Create(ctx, gatewayOrder(customer.ID, time.Time{}))
	require.NoError(t, err)

	refunded := PaymentTransition{Status: enums.OrderStatusRefunded, PaymentStatus: enums.PaymentStatusRefunded}
	applied, err := repo.ApplyPaymentTransition(ctx, order.ID, refunded)
	require.NoError(t, err)
	require.True(t, applied)

	now := time.Now().UTC()
	applied, err = repo.ApplyPaymentTransition(ctx, order.ID, PaymentTransition{Status: enums.OrderStatusPaid, PaymentStatus: enums.PaymentStatusPaid, PaidAt: &now})
	require.NoError(t, err)
	require.False(t, applied)

	reloaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusRefunded, reloaded.Status)
}

func TestApplyPaymentTransitionIgnoresManualOrders(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	customer := seedCustomer(t, conn)
	order, err := repo.Create(ctx, manualOrder(customer.ID))
	require.NoError(t, err)

	applied, err := repo.ApplyPaymentTransition(ctx, order.ID, PaymentTransition{Status: enums.OrderStatusPaid, PaymentStatus: enums.PaymentStatusPaid})
	require.NoError(t, err)
	require.False(t, applied)
}

func TestUpdateStatusIsConditional(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	customer := seedCustomer(t, conn)
	order, err := repo.Create(ctx, manualOrder(customer.ID))
	require.NoError(t, err)

	from := []enums.OrderStatus{enums.OrderStatusPending}
	ok, err := repo.UpdateStatus(ctx, order.ID, from, enums.OrderStatusCompleted)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.UpdateStatus(ctx, order.ID, from, enums.OrderStatusCancelled)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestListAndStaleAwaitingPayment(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	customer := seedCustomer(t, conn)
	now := time.Now().UTC()

	stale, err := repo.Create(ctx, gatewayOrder(customer.ID, now.Add(-3*time.Hour)))
	require.NoError(t, err)
	require.NoError(t, repo.SetSessionID(ctx, stale.ID, "cs_stale"))

	noSession, err := repo.Create(ctx, gatewayOrder(customer.ID, now.Add(-3*time.Hour)))
	require.NoError(t, err)

	fresh, err := repo.Create(ctx, gatewayOrder(customer.ID, now))
	require.NoError(t, err)
	require.NoError(t, repo.SetSessionID(ctx, fresh.ID, "cs_fresh"))

	_, err = repo.Create(ctx, manualOrder(customer.ID))
	require.NoError(t, err)

	rows, err := repo.ListStaleAwaitingPayment(ctx, now.Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, stale.ID, rows[0].ID)
	require.NotEqual(t, noSession.ID, rows[0].ID)

	pending := enums.OrderStatusPending
	list, next, err := repo.List(ctx, pagination.Params{}, ListFilters{Status: &pending})
	require.NoError(t, err)
	require.Empty(t, next)
	require.Len(t, list, 1)
	require.Len(t, list[0].Items, 1)

	all, _, err := repo.List(ctx, pagination.Params{}, ListFilters{CustomerID: &customer.ID})
	require.NoError(t, err)
	require.Len(t, all, 4)
}
