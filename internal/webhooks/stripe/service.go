package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/angelmondragon/detailshop-backend/internal/orders"
	"github.com/angelmondragon/detailshop-backend/pkg/db"
	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
	"github.com/angelmondragon/detailshop-backend/pkg/metrics"
	pkgstripe "github.com/angelmondragon/detailshop-backend/pkg/stripe"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"
)

type guard interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

type ServiceParams struct {
	Orders  orders.Repository
	Guard   guard
	Metrics *metrics.WebhookMetrics
	Logger  *logger.Logger
	Now     func() time.Time
}

// Service reconciles order payment state from gateway events.
type Service struct {
	orders  orders.Repository
	guard   guard
	metrics *metrics.WebhookMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		orders:  params.Orders,
		guard:   params.Guard,
		metrics: params.Metrics,
		logg:    logg,
		now:     now,
	}, nil
}

// HandleEvent applies one verified event and returns its outcome label. An
// error means the gateway should redeliver. The event claim is dropped on any
// outcome other than success, panics included, so a redelivery is not
// mistaken for a duplicate.
func (s *Service) HandleEvent(ctx context.Context, event stripe.Event) (outcome string, err error) {
	eventType := string(event.Type)
	ctx = s.logg.WithFields(ctx, map[string]any{"event_id": event.ID, "event_type": eventType})

	if s.guard != nil && event.ID != "" {
		duplicate, claimErr := s.guard.Claim(ctx, event.ID)
		if claimErr != nil {
			s.metrics.Observe(eventType, metrics.OutcomeFailed)
			return metrics.OutcomeFailed, pkgerrors.Wrap(pkgerrors.CodeInternal, claimErr, "claim webhook event")
		}
		if duplicate {
			s.logg.Info(ctx, "stripe.webhook.duplicate")
			s.metrics.Observe(eventType, metrics.OutcomeDuplicate)
			return metrics.OutcomeDuplicate, nil
		}

		defer func() {
			if r := recover(); r != nil {
				s.release(ctx, event.ID)
				panic(r)
			}
			if err != nil {
				s.release(ctx, event.ID)
			}
		}()
	}

	outcome, err = s.dispatch(ctx, event)
	if err != nil {
		s.metrics.Observe(eventType, metrics.OutcomeFailed)
		return metrics.OutcomeFailed, err
	}
	s.metrics.Observe(eventType, outcome)
	return outcome, nil
}

// release runs on the failure path, where the request context may already be
// cancelled.
func (s *Service) release(ctx context.Context, eventID string) {
	if err := s.guard.Release(context.WithoutCancel(ctx), eventID); err != nil {
		s.logg.Error(ctx, "stripe.webhook.release_failed", err)
	}
}

func (s *Service) dispatch(ctx context.Context, event stripe.Event) (string, error) {
	if event.Data == nil {
		return metrics.OutcomeIgnored, nil
	}
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return s.malformed(ctx, err)
		}
		// Delayed methods complete the session before the money moves.
		if event.Type == stripe.EventTypeCheckoutSessionCompleted && cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
			s.logg.Info(ctx, "stripe.webhook.awaiting_async_payment")
			return metrics.OutcomeIgnored, nil
		}
		transition := orders.PaymentTransition{
			Status:        enums.OrderStatusPaid,
			PaymentStatus: enums.PaymentStatusPaid,
		}
		if cs.PaymentIntent != nil && cs.PaymentIntent.ID != "" {
			id := cs.PaymentIntent.ID
			transition.PaymentIntentID = &id
		}
		paidAt := s.now().UTC()
		transition.PaidAt = &paidAt
		return s.apply(ctx, func(ctx context.Context) (*models.Order, error) {
			return s.sessionOrder(ctx, &cs)
		}, transition)

	case stripe.EventTypeCheckoutSessionExpired, stripe.EventTypeCheckoutSessionAsyncPaymentFailed:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return s.malformed(ctx, err)
		}
		return s.apply(ctx, func(ctx context.Context) (*models.Order, error) {
			return s.sessionOrder(ctx, &cs)
		}, failedTransition())

	case stripe.EventTypePaymentIntentPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return s.malformed(ctx, err)
		}
		return s.apply(ctx, func(ctx context.Context) (*models.Order, error) {
			return s.intentOrder(ctx, pi.ID, pi.Metadata)
		}, failedTransition())

	case stripe.EventTypeChargeRefunded:
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return s.malformed(ctx, err)
		}
		intentID := ""
		if charge.PaymentIntent != nil {
			intentID = charge.PaymentIntent.ID
		}
		return s.apply(ctx, func(ctx context.Context) (*models.Order, error) {
			return s.intentOrder(ctx, intentID, charge.Metadata)
		}, orders.PaymentTransition{
			Status:        enums.OrderStatusRefunded,
			PaymentStatus: enums.PaymentStatusRefunded,
		})

	default:
		s.logg.Debug(ctx, "stripe.webhook.unhandled_type")
		return metrics.OutcomeIgnored, nil
	}
}

func failedTransition() orders.PaymentTransition {
	return orders.PaymentTransition{
		Status:        enums.OrderStatusPaymentFailed,
		PaymentStatus: enums.PaymentStatusFailed,
	}
}

// malformed acknowledges a payload that verified but does not decode; a redelivery would fail the same way.
func (s *Service) malformed(ctx context.Context, err error) (string, error) {
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "stripe.webhook.decode_failed")
	return metrics.OutcomeIgnored, nil
}

func (s *Service) apply(ctx context.Context, resolve func(ctx context.Context) (*models.Order, error), transition orders.PaymentTransition) (string, error) {
	order, err := resolve(ctx)
	if err != nil {
		return metrics.OutcomeFailed, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve webhook order")
	}
	if order == nil {
		s.logg.Warn(ctx, "stripe.webhook.order_not_found")
		return metrics.OutcomeIgnored, nil
	}
	ctx = s.logg.WithField(ctx, "order_id", order.ID.String())
	if order.PaymentStatus == nil {
		s.logg.Warn(ctx, "stripe.webhook.manual_order")
		return metrics.OutcomeIgnored, nil
	}

	var applied bool
	err = db.RetryTransient(ctx, func(ctx context.Context) error {
		var err error
		applied, err = s.orders.ApplyPaymentTransition(ctx, order.ID, transition)
		return err
	})
	if err != nil {
		return metrics.OutcomeFailed, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "apply payment transition")
	}
	if !applied {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"current_payment_status": string(*order.PaymentStatus),
			"target_payment_status":  string(transition.PaymentStatus),
		}), "stripe.webhook.transition_skipped")
		return metrics.OutcomeSkipped, nil
	}
	s.logg.Info(s.logg.WithField(ctx, "payment_status", string(transition.PaymentStatus)), "stripe.webhook.transition_applied")
	return metrics.OutcomeProcessed, nil
}

// sessionOrder resolves by metadata order id, then client reference, then the session id itself.
func (s *Service) sessionOrder(ctx context.Context, cs *stripe.CheckoutSession) (*models.Order, error) {
	raw := cs.Metadata[pkgstripe.MetadataOrderID]
	if raw == "" {
		raw = cs.ClientReferenceID
	}
	if id, err := uuid.Parse(raw); err == nil {
		return s.find(ctx, func(ctx context.Context) (*models.Order, error) {
			return s.orders.FindByID(ctx, id)
		})
	}
	if cs.ID == "" {
		return nil, nil
	}
	return s.find(ctx, func(ctx context.Context) (*models.Order, error) {
		return s.orders.FindBySessionID(ctx, cs.ID)
	})
}

func (s *Service) intentOrder(ctx context.Context, intentID string, metadata map[string]string) (*models.Order, error) {
	if intentID != "" {
		order, err := s.find(ctx, func(ctx context.Context) (*models.Order, error) {
			return s.orders.FindByPaymentIntentID(ctx, intentID)
		})
		if err != nil || order != nil {
			return order, err
		}
	}
	if id, err := uuid.Parse(metadata[pkgstripe.MetadataOrderID]); err == nil {
		return s.find(ctx, func(ctx context.Context) (*models.Order, error) {
			return s.orders.FindByID(ctx, id)
		})
	}
	return nil, nil
}

func (s *Service) find(ctx context.Context, fn func(ctx context.Context) (*models.Order, error)) (*models.Order, error) {
	var order *models.Order
	err := db.RetryTransient(ctx, func(ctx context.Context) error {
		var err error
		order, err = fn(ctx)
		return err
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return order, err
}
