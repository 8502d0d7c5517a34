package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/angelmondragon/detailshop-backend/pkg/config"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
)

const (
	MetadataOrderID = "order_id"

	defaultCurrency = "brl"
)

// ErrNotConfigured is returned by every gateway call when Stripe is disabled.
var ErrNotConfigured = errors.New("stripe gateway not configured")

// LineItem is one cart line sent to the hosted checkout page.
type LineItem struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int64
}

// SessionRequest describes the hosted checkout to open.
type SessionRequest struct {
	OrderID       string
	Items         []LineItem
	CustomerEmail string
	Method        enums.PaymentMethod
}

// Session is the subset of a Stripe checkout session the storefront needs.
type Session struct {
	ID              string
	URL             string
	Status          string
	PaymentStatus   string
	PaymentIntentID string
	OrderID         string
}

type sessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type packageSessionAPI struct{}

func (packageSessionAPI) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return session.New(params)
}

func (packageSessionAPI) Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return session.Get(id, params)
}

// Gateway opens hosted checkout sessions and verifies webhook payloads.
type Gateway struct {
	client     *Client
	sessions   sessionAPI
	currency   string
	successURL string
	cancelURL  string
}

// NewGateway wraps client. A nil client yields an unconfigured gateway.
func NewGateway(client *Client, cfg config.StripeConfig, publicBaseURL string) *Gateway {
	base := strings.TrimRight(publicBaseURL, "/")
	success := strings.TrimSpace(cfg.SuccessURL)
	if success == "" {
		success = base + "/checkout/sucesso?session_id={CHECKOUT_SESSION_ID}"
	}
	cancel := strings.TrimSpace(cfg.CancelURL)
	if cancel == "" {
		cancel = base + "/checkout/cancelado"
	}
	currency := strings.ToLower(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	return &Gateway{
		client:     client,
		sessions:   packageSessionAPI{},
		currency:   currency,
		successURL: success,
		cancelURL:  cancel,
	}
}

// IsConfigured reports whether the gateway can reach Stripe.
func (g *Gateway) IsConfigured() bool {
	return g != nil && g.client != nil
}

// CreateCheckoutSession opens a hosted checkout carrying the order id as metadata.
func (g *Gateway) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	if !g.IsConfigured() {
		return nil, ErrNotConfigured
	}
	if req.OrderID == "" {
		return nil, fmt.Errorf("order id is required")
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("at least one line item is required")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(withOrderID(g.successURL, req.OrderID)),
		CancelURL:          stripe.String(withOrderID(g.cancelURL, req.OrderID)),
		ClientReferenceID:  stripe.String(req.OrderID),
		PaymentMethodTypes: stripe.StringSlice([]string{paymentMethodType(req.Method)}),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{MetadataOrderID: req.OrderID},
		},
	}
	params.Context = ctx
	params.AddMetadata(MetadataOrderID, req.OrderID)
	if email := strings.TrimSpace(req.CustomerEmail); email != "" {
		params.CustomerEmail = stripe.String(email)
	}
	for _, item := range req.Items {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(item.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(g.currency),
				UnitAmount: stripe.Int64(MinorUnits(item.UnitPrice)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
		})
	}

	created, err := g.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return toSession(created), nil
}

// GetSession fetches the live state of a checkout session.
func (g *Gateway) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	if !g.IsConfigured() {
		return nil, ErrNotConfigured
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	fetched, err := g.sessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("get checkout session: %w", err)
	}
	return toSession(fetched), nil
}

// ConstructEvent verifies the signature header against the raw body and parses the event.
func (g *Gateway) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	if !g.IsConfigured() {
		return stripe.Event{}, ErrNotConfigured
	}
	return webhook.ConstructEventWithOptions(payload, signature, g.client.SigningSecret(), webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}

// MinorUnits converts a major-unit amount into integer cents.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func toSession(cs *stripe.CheckoutSession) *Session {
	if cs == nil {
		return nil
	}
	out := &Session{
		ID:            cs.ID,
		URL:           cs.URL,
		Status:        string(cs.Status),
		PaymentStatus: string(cs.PaymentStatus),
		OrderID:       cs.Metadata[MetadataOrderID],
	}
	if out.OrderID == "" {
		out.OrderID = cs.ClientReferenceID
	}
	if cs.PaymentIntent != nil {
		out.PaymentIntentID = cs.PaymentIntent.ID
	}
	return out
}

func paymentMethodType(method enums.PaymentMethod) string {
	if method == enums.PaymentMethodPix {
		return "pix"
	}
	return "card"
}

func withOrderID(rawURL, orderID string) string {
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + MetadataOrderID + "=" + orderID
}
