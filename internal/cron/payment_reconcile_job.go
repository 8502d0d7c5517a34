package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/detailshop-backend/internal/orders"
	"github.com/angelmondragon/detailshop-backend/pkg/db"
	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
	"github.com/angelmondragon/detailshop-backend/pkg/stripe"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

const (
	defaultStaleOrderAge = 30 * time.Minute
	reconcileBatchSize   = 100

	sessionStatusComplete = "complete"
	sessionStatusExpired  = "expired"
	sessionPaymentPaid    = "paid"
)

type staleOrderStore interface {
	ListStaleAwaitingPayment(ctx context.Context, createdBefore time.Time, limit int) ([]models.Order, error)
	ApplyPaymentTransition(ctx context.Context, id uuid.UUID, transition orders.PaymentTransition) (bool, error)
}

type sessionFetcher interface {
	IsConfigured() bool
	GetSession(ctx context.Context, sessionID string) (*stripe.Session, error)
}

// PaymentReconcileJobParams configure the stale payment reconciler.
type PaymentReconcileJobParams struct {
	Logger  *logger.Logger
	Orders  staleOrderStore
	Gateway sessionFetcher
	MaxAge  time.Duration
}

// NewPaymentReconcileJob builds the job that settles gateway orders whose
// webhook never arrived by asking the gateway for the session state.
func NewPaymentReconcileJob(params PaymentReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	maxAge := params.MaxAge
	if maxAge <= 0 {
		maxAge = defaultStaleOrderAge
	}
	return &paymentReconcileJob{
		logg:    params.Logger,
		orders:  params.Orders,
		gateway: params.Gateway,
		maxAge:  maxAge,
		now:     time.Now,
	}, nil
}

type paymentReconcileJob struct {
	logg    *logger.Logger
	orders  staleOrderStore
	gateway sessionFetcher
	maxAge  time.Duration
	now     func() time.Time
}

func (j *paymentReconcileJob) Name() string { return "payment-reconcile" }

func (j *paymentReconcileJob) Run(ctx context.Context) error {
	if !j.gateway.IsConfigured() {
		j.logg.Info(ctx, "payment gateway not configured; skipping reconcile")
		return nil
	}
	now := j.now().UTC()
	cutoff := now.Add(-j.maxAge)

	var stale []models.Order
	err := db.RetryTransient(ctx, func(ctx context.Context) error {
		var err error
		stale, err = j.orders.ListStaleAwaitingPayment(ctx, cutoff, reconcileBatchSize)
		return err
	})
	if err != nil {
		return fmt.Errorf("query stale orders: %w", err)
	}

	var errs []error
	settled := 0
	for _, order := range stale {
		applied, err := j.reconcile(ctx, order, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("order %s: %w", order.ID, err))
			continue
		}
		if applied {
			settled++
		}
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": len(stale), "settled": settled, "failed": len(errs)})
	j.logg.Info(logCtx, "payment reconcile loop complete")
	return multierr.Combine(errs...)
}

func (j *paymentReconcileJob) reconcile(ctx context.Context, order models.Order, now time.Time) (bool, error) {
	if order.StripeSessionID == nil || *order.StripeSessionID == "" {
		return false, nil
	}
	session, err := j.gateway.GetSession(ctx, *order.StripeSessionID)
	if err != nil {
		return false, err
	}

	var transition orders.PaymentTransition
	switch {
	case session.Status == sessionStatusComplete && session.PaymentStatus == sessionPaymentPaid:
		transition = orders.PaymentTransition{
			Status:        enums.OrderStatusPaid,
			PaymentStatus: enums.PaymentStatusPaid,
			PaidAt:        &now,
		}
		if session.PaymentIntentID != "" {
			intentID := session.PaymentIntentID
			transition.PaymentIntentID = &intentID
		}
	case session.Status == sessionStatusExpired:
		transition = orders.PaymentTransition{
			Status:        enums.OrderStatusPaymentFailed,
			PaymentStatus: enums.PaymentStatusFailed,
		}
	default:
		return false, nil
	}

	var applied bool
	err = db.RetryTransient(ctx, func(ctx context.Context) error {
		var err error
		applied, err = j.orders.ApplyPaymentTransition(ctx, order.ID, transition)
		return err
	})
	if err != nil {
		return false, err
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"order_id":       order.ID.String(),
		"payment_status": string(transition.PaymentStatus),
		"applied":        applied,
	})
	j.logg.Info(logCtx, "payment reconciled from gateway")
	return applied, nil
}
