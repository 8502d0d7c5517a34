package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/detailshop-backend/internal/orders"
	"github.com/angelmondragon/detailshop-backend/internal/settings"
	pkgcheckout "github.com/angelmondragon/detailshop-backend/pkg/checkout"
	"github.com/angelmondragon/detailshop-backend/pkg/db"
	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
	"github.com/angelmondragon/detailshop-backend/pkg/stripe"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PaymentGateway is the hosted checkout provider.
type PaymentGateway interface {
	IsConfigured() bool
	CreateCheckoutSession(ctx context.Context, req stripe.SessionRequest) (*stripe.Session, error)
	GetSession(ctx context.Context, sessionID string) (*stripe.Session, error)
}

// Service turns cart submissions into orders.
type Service interface {
	CheckoutManual(ctx context.Context, input Input) (*ManualResult, error)
	CreateSession(ctx context.Context, input Input) (*SessionResult, error)
	PaymentStatus(ctx context.Context, orderID uuid.UUID) (*PaymentStatusResult, error)
}

// CartItem is one submitted cart line. Prices are the snapshot the buyer saw.
type CartItem struct {
	ProductID    *string
	ProductName  string
	ProductPrice decimal.Decimal
	Quantity     int
}

// Input is a cart submission.
type Input struct {
	Customer      ContactInput
	Items         []CartItem
	PaymentMethod enums.PaymentMethod
}

type ManualResult struct {
	OrderID         uuid.UUID `json:"orderId"`
	WhatsAppMessage string    `json:"whatsappMessage"`
	CustomerID      uuid.UUID `json:"customerId"`
	WhatsAppNumber  string    `json:"whatsappNumber"`
}

type SessionResult struct {
	OrderID     uuid.UUID `json:"orderId"`
	SessionID   string    `json:"sessionId"`
	CheckoutURL string    `json:"checkoutUrl"`
	CustomerID  uuid.UUID `json:"customerId"`
}

type PaymentStatusResult struct {
	OrderID       uuid.UUID            `json:"orderId"`
	Status        enums.OrderStatus    `json:"status"`
	PaymentStatus *enums.PaymentStatus `json:"paymentStatus"`
	StripeStatus  *string              `json:"stripeStatus,omitempty"`
}

type service struct {
	tx        txRunner
	customers customerStore
	orders    orders.Repository
	settings  settings.Provider
	gateway   PaymentGateway
	logg      *logger.Logger
}

// NewService wires the checkout orchestrator.
func NewService(tx txRunner, customerRepo customerStore, orderRepo orders.Repository, settingsProvider settings.Provider, gateway PaymentGateway, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if customerRepo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if settingsProvider == nil {
		return nil, fmt.Errorf("settings provider required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		tx:        tx,
		customers: customerRepo,
		orders:    orderRepo,
		settings:  settingsProvider,
		gateway:   gateway,
		logg:      logg,
	}, nil
}

func (s *service) CheckoutManual(ctx context.Context, input Input) (*ManualResult, error) {
	if input.PaymentMethod == "" {
		input.PaymentMethod = enums.PaymentMethodWhatsApp
	}
	if input.PaymentMethod != enums.PaymentMethodWhatsApp {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "manual checkout only accepts whatsapp")
	}
	contact, lines, err := normalize(input)
	if err != nil {
		return nil, err
	}
	total := pkgcheckout.Total(lines)

	customer, err := s.resolve(ctx, contact)
	if err != nil {
		return nil, err
	}

	orderID := uuid.New()
	message := buildWhatsAppMessage(orderID, contact, lines, total)
	order := newOrder(orderID, customer, contact, input, total)
	order.Status = enums.OrderStatusPending
	order.WhatsAppMessage = &message

	if err := s.persist(ctx, order); err != nil {
		return nil, err
	}

	return &ManualResult{
		OrderID:         order.ID,
		WhatsAppMessage: message,
		CustomerID:      customer.ID,
		WhatsAppNumber:  s.settings.WhatsAppNumber(ctx),
	}, nil
}

func (s *service) CreateSession(ctx context.Context, input Input) (*SessionResult, error) {
	if !s.gateway.IsConfigured() {
		return nil, pkgerrors.New(pkgerrors.CodeUpstream, "payment gateway not configured")
	}
	if !input.PaymentMethod.IsGateway() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "paymentMethod must be card or pix")
	}
	contact, lines, err := normalize(input)
	if err != nil {
		return nil, err
	}
	total := pkgcheckout.Total(lines)

	customer, err := s.resolve(ctx, contact)
	if err != nil {
		return nil, err
	}

	awaiting := enums.PaymentStatusAwaitingPayment
	order := newOrder(uuid.New(), customer, contact, input, total)
	order.Status = enums.OrderStatusAwaitingPayment
	order.PaymentStatus = &awaiting

	if err := s.persist(ctx, order); err != nil {
		return nil, err
	}

	ctx = s.logg.WithField(ctx, "order_id", order.ID.String())
	req := stripe.SessionRequest{
		OrderID: order.ID.String(),
		Method:  input.PaymentMethod,
	}
	if contact.Email != nil {
		req.CustomerEmail = *contact.Email
	}
	for _, line := range lines {
		req.Items = append(req.Items, stripe.LineItem{
			Name:      line.ProductName,
			UnitPrice: line.Price,
			Quantity:  int64(line.Quantity),
		})
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, req)
	if err != nil {
		s.markFailed(ctx, order.ID)
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "create checkout session")
	}

	if err := s.orders.SetSessionID(ctx, order.ID, session.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store checkout session")
	}
	s.logg.Info(s.logg.WithField(ctx, "session_id", session.ID), "checkout session created")

	return &SessionResult{
		OrderID:     order.ID,
		SessionID:   session.ID,
		CheckoutURL: session.URL,
		CustomerID:  customer.ID,
	}, nil
}

func (s *service) PaymentStatus(ctx context.Context, orderID uuid.UUID) (*PaymentStatusResult, error) {
	var order *models.Order
	err := db.RetryTransient(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orders.FindByID(ctx, orderID)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}

	result := &PaymentStatusResult{
		OrderID:       order.ID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
	}
	if order.StripeSessionID != nil && s.gateway.IsConfigured() {
		session, err := s.gateway.GetSession(ctx, *order.StripeSessionID)
		if err != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"order_id":   order.ID.String(),
				"session_id": *order.StripeSessionID,
				"error":      err.Error(),
			}), "checkout session lookup failed")
		} else if session != nil && session.PaymentStatus != "" {
			status := session.PaymentStatus
			result.StripeStatus = &status
		}
	}
	return result, nil
}

func (s *service) resolve(ctx context.Context, contact ContactInput) (*models.Customer, error) {
	customer, err := resolveCustomer(ctx, s.customers, contact)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve customer")
	}
	return customer, nil
}

func (s *service) persist(ctx context.Context, order *models.Order) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.orders.WithTx(tx).Create(ctx, order)
		return err
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}
	return nil
}

// markFailed keeps the order row for support and records the failed attempt.
func (s *service) markFailed(ctx context.Context, orderID uuid.UUID) {
	_, err := s.orders.ApplyPaymentTransition(ctx, orderID, orders.PaymentTransition{
		Status:        enums.OrderStatusPaymentFailed,
		PaymentStatus: enums.PaymentStatusFailed,
	})
	if err != nil {
		s.logg.Error(ctx, "mark order payment failed", err)
	}
}

func normalize(input Input) (ContactInput, []pkgcheckout.LineInput, error) {
	contact := ContactInput{
		Name:            strings.TrimSpace(input.Customer.Name),
		Phone:           strings.TrimSpace(input.Customer.Phone),
		Email:           trimmed(input.Customer.Email),
		DeliveryAddress: trimmed(input.Customer.DeliveryAddress),
	}
	if contact.Name == "" || contact.Phone == "" {
		return contact, nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name and phone are required")
	}
	lines := make([]pkgcheckout.LineInput, 0, len(input.Items))
	for _, item := range input.Items {
		lines = append(lines, pkgcheckout.LineInput{
			ProductName: strings.TrimSpace(item.ProductName),
			Price:       item.ProductPrice,
			Quantity:    item.Quantity,
		})
	}
	if err := pkgcheckout.ValidateLines(lines); err != nil {
		return contact, nil, err
	}
	return contact, lines, nil
}

func newOrder(id uuid.UUID, customer *models.Customer, contact ContactInput, input Input, total decimal.Decimal) *models.Order {
	order := &models.Order{
		ID:              id,
		CustomerID:      customer.ID,
		Total:           total,
		CustomerName:    contact.Name,
		CustomerPhone:   contact.Phone,
		CustomerEmail:   contact.Email,
		DeliveryAddress: contact.DeliveryAddress,
		PaymentMethod:   input.PaymentMethod,
		Items:           make([]models.OrderItem, 0, len(input.Items)),
	}
	for _, item := range input.Items {
		order.Items = append(order.Items, models.OrderItem{
			OrderID:      id,
			ProductID:    item.ProductID,
			ProductName:  strings.TrimSpace(item.ProductName),
			ProductPrice: item.ProductPrice,
			Quantity:     item.Quantity,
		})
	}
	return order
}
