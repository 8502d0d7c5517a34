package cron

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/detailshop-backend/internal/orders"
	"github.com/angelmondragon/detailshop-backend/pkg/db/dbtest"
	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
	"github.com/angelmondragon/detailshop-backend/pkg/stripe"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeSessions struct {
	configured bool
	sessions   map[string]*stripe.Session
	errs       map[string]error
	calls      []string
}

func (f *fakeSessions) IsConfigured() bool { return f.configured }

func (f *fakeSessions) GetSession(_ context.Context, id string) (*stripe.Session, error) {
	f.calls = append(f.calls, id)
	if err := f.errs[id]; err != nil {
		return nil, err
	}
	if s, ok := f.sessions[id]; ok {
		return s, nil
	}
	return &stripe.Session{ID: id, Status: "open", PaymentStatus: "unpaid"}, nil
}

func seedGatewayOrder(t *testing.T, conn *gorm.DB, sessionID string, createdAt time.Time) *models.Order {
	t.Helper()
	customer := &models.Customer{Name: "Ana", Phone: "11999990000"}
	if err := conn.Create(customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	status := enums.PaymentStatusAwaitingPayment
	order := &models.Order{
		CustomerID:      customer.ID,
		Status:          enums.OrderStatusAwaitingPayment,
		PaymentStatus:   &status,
		Total:           decimal.NewFromInt(100),
		CustomerName:    "Ana",
		CustomerPhone:   "11999990000",
		PaymentMethod:   enums.PaymentMethodCard,
		StripeSessionID: &sessionID,
		CreatedAt:       createdAt,
	}
	if err := conn.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func newReconcileJob(t *testing.T, repo orders.Repository, gateway *fakeSessions, now time.Time) *paymentReconcileJob {
	t.Helper()
	job, err := NewPaymentReconcileJob(PaymentReconcileJobParams{
		Logger:  logger.Nop(),
		Orders:  repo,
		Gateway: gateway,
		MaxAge:  time.Hour,
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	reconcile := job.(*paymentReconcileJob)
	reconcile.now = func() time.Time { return now }
	return reconcile
}

func TestPaymentReconcileSettlesStaleOrders(t *testing.T) {
	conn := dbtest.Open(t)
	repo := orders.NewRepository(conn)
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-2 * time.Hour)

	paid := seedGatewayOrder(t, conn, "cs_paid", old)
	expired := seedGatewayOrder(t, conn, "cs_expired", old)
	open := seedGatewayOrder(t, conn, "cs_open", old)
	fresh := seedGatewayOrder(t, conn, "cs_fresh", now.Add(-10*time.Minute))

	gateway := &fakeSessions{
		configured: true,
		sessions: map[string]*stripe.Session{
			"cs_paid":    {ID: "cs_paid", Status: "complete", PaymentStatus: "paid", PaymentIntentID: "pi_1"},
			"cs_expired": {ID: "cs_expired", Status: "expired", PaymentStatus: "unpaid"},
		},
	}
	job := newReconcileJob(t, repo, gateway, now)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	got, err := repo.FindByID(context.Background(), paid.ID)
	if err != nil {
		t.Fatalf("reload paid: %v", err)
	}
	if got.Status != enums.OrderStatusPaid || *got.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("expected paid, got %s/%s", got.Status, *got.PaymentStatus)
	}
	if got.StripePaymentIntentID == nil || *got.StripePaymentIntentID != "pi_1" || got.PaidAt == nil {
		t.Fatalf("payment intent and paid_at should be stored: %+v", got)
	}

	got, err = repo.FindByID(context.Background(), expired.ID)
	if err != nil {
		t.Fatalf("reload expired: %v", err)
	}
	if got.Status != enums.OrderStatusPaymentFailed || *got.PaymentStatus != enums.PaymentStatusFailed {
		t.Fatalf("expected failed, got %s/%s", got.Status, *got.PaymentStatus)
	}

	for _, id := range []*models.Order{open, fresh} {
		got, err = repo.FindByID(context.Background(), id.ID)
		if err != nil {
			t.Fatalf("reload: %v", err)
		}
		if *got.PaymentStatus != enums.PaymentStatusAwaitingPayment {
			t.Fatalf("order %s should still be awaiting payment", *got.StripeSessionID)
		}
	}
	for _, call := range gateway.calls {
		if call == "cs_fresh" {
			t.Fatalf("orders younger than the max age must not be looked up")
		}
	}
}

func TestPaymentReconcileAggregatesErrors(t *testing.T) {
	conn := dbtest.Open(t)
	repo := orders.NewRepository(conn)
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	seedGatewayOrder(t, conn, "cs_a", now.Add(-3*time.Hour))
	seedGatewayOrder(t, conn, "cs_b", now.Add(-2*time.Hour))
	ok := seedGatewayOrder(t, conn, "cs_c", now.Add(-2*time.Hour))

	gateway := &fakeSessions{
		configured: true,
		sessions:   map[string]*stripe.Session{"cs_c": {ID: "cs_c", Status: "complete", PaymentStatus: "paid"}},
		errs: map[string]error{
			"cs_a": errors.New("gateway timeout"),
			"cs_b": errors.New("rate limited"),
		},
	}
	job := newReconcileJob(t, repo, gateway, now)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
	if !strings.Contains(err.Error(), "gateway timeout") || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("both failures should be reported: %v", err)
	}

	got, err := repo.FindByID(context.Background(), ok.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if *got.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("a failing order must not block the rest")
	}
}

func TestPaymentReconcileSkipsWhenGatewayDisabled(t *testing.T) {
	conn := dbtest.Open(t)
	gateway := &fakeSessions{}
	job := newReconcileJob(t, orders.NewRepository(conn), gateway, time.Now())
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(gateway.calls) != 0 {
		t.Fatalf("no lookups expected")
	}
}
