package checkout

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/angelmondragon/detailshop-backend/internal/customers"
	"github.com/angelmondragon/detailshop-backend/internal/orders"
	"github.com/angelmondragon/detailshop-backend/pkg/db"
	"github.com/angelmondragon/detailshop-backend/pkg/db/dbtest"
	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"github.com/angelmondragon/detailshop-backend/pkg/stripe"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGateway struct {
	configured bool
	createErr  error
	getErr     error
	requests   []stripe.SessionRequest
	session    *stripe.Session
}

func (f *fakeGateway) IsConfigured() bool { return f.configured }

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, req stripe.SessionRequest) (*stripe.Session, error) {
	f.requests = append(f.requests, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &stripe.Session{ID: "cs_test_123", URL: "https://checkout.stripe.test/cs_test_123"}, nil
}

func (f *fakeGateway) GetSession(context.Context, string) (*stripe.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.session, nil
}

type staticSettings struct{ number string }

func (s staticSettings) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (s staticSettings) WhatsAppNumber(context.Context) string            { return s.number }

type fixture struct {
	conn    *gorm.DB
	gateway *fakeGateway
	svc     Service
}

func newFixture(t *testing.T, gateway *fakeGateway) fixture {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(db.Wrap(conn), customers.NewRepository(conn), orders.NewRepository(conn), staticSettings{number: "5511999999999"}, gateway, nil)
	require.NoError(t, err)
	return fixture{conn: conn, gateway: gateway, svc: svc}
}

func sampleInput(method enums.PaymentMethod) Input {
	productID := "1"
	return Input{
		Customer: ContactInput{Name: " Maria ", Phone: "11988887777"},
		Items: []CartItem{
			{ProductID: &productID, ProductName: "Teste", ProductPrice: decimal.RequireFromString("145.00"), Quantity: 1},
		},
		PaymentMethod: method,
	}
}

func TestCheckoutManualCreatesPendingOrder(t *testing.T) {
	f := newFixture(t, &fakeGateway{})
	ctx := context.Background()

	result, err := f.svc.CheckoutManual(ctx, sampleInput(""))
	require.NoError(t, err)
	require.Equal(t, "5511999999999", result.WhatsAppNumber)
	require.Contains(t, result.WhatsAppMessage, "1x Teste")
	require.Contains(t, result.WhatsAppMessage, "R$ 145.00")
	require.Contains(t, result.WhatsAppMessage, strings.ToUpper(result.OrderID.String()[:8]))

	var order models.Order
	require.NoError(t, f.conn.Preload("Items").First(&order, "id = ?", result.OrderID).Error)
	require.Equal(t, enums.OrderStatusPending, order.Status)
	require.Nil(t, order.PaymentStatus)
	require.Equal(t, enums.PaymentMethodWhatsApp, order.PaymentMethod)
	require.True(t, order.Total.Equal(decimal.NewFromInt(145)))
	require.Equal(t, "Maria", order.CustomerName)
	require.Equal(t, result.CustomerID, order.CustomerID)
	require.NotNil(t, order.WhatsAppMessage)
	require.Len(t, order.Items, 1)
	require.NotNil(t, order.Items[0].ProductID)
	require.Equal(t, "1", *order.Items[0].ProductID)
}

func TestCheckoutManualReusesCustomerByPhone(t *testing.T) {
	f := newFixture(t, &fakeGateway{})
	ctx := context.Background()
	existing := &models.Customer{Name: "Old Name", Phone: "11988887777"}
	require.NoError(t, f.conn.Create(existing).Error)

	result, err := f.svc.CheckoutManual(ctx, sampleInput(enums.PaymentMethodWhatsApp))
	require.NoError(t, err)
	require.Equal(t, existing.ID, result.CustomerID)

	var reloaded models.Customer
	require.NoError(t, f.conn.First(&reloaded, "id = ?", existing.ID).Error)
	require.Equal(t, "Maria", reloaded.Name)

	var count int64
	require.NoError(t, f.conn.Model(&models.Customer{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCheckoutManualRejectsInvalidCart(t *testing.T) {
	f := newFixture(t, &fakeGateway{})
	ctx := context.Background()

	cases := map[string]Input{
		"empty cart": {Customer: ContactInput{Name: "Maria", Phone: "1"}},
		"missing phone": {
			Customer: ContactInput{Name: "Maria"},
			Items:    []CartItem{{ProductName: "Teste", ProductPrice: decimal.NewFromInt(1), Quantity: 1}},
		},
		"zero quantity": {
			Customer: ContactInput{Name: "Maria", Phone: "1"},
			Items:    []CartItem{{ProductName: "Teste", ProductPrice: decimal.NewFromInt(1), Quantity: 0}},
		},
		"card method": sampleInput(enums.PaymentMethodCard),
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.CheckoutManual(ctx, input)
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}

	var count int64
	require.NoError(t, f.conn.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCreateSessionStoresSessionID(t *testing.T) {
	gateway := &fakeGateway{configured: true}
	f := newFixture(t, gateway)
	ctx := context.Background()

	input := sampleInput(enums.PaymentMethodPix)
	email := "maria@example.com"
	input.Customer.Email = &email
	result, err := f.svc.CreateSession(ctx, input)
	require.NoError(t, err)
	require.Equal(t, "cs_test_123", result.SessionID)
	require.Equal(t, "https://checkout.stripe.test/cs_test_123", result.CheckoutURL)

	require.Len(t, gateway.requests, 1)
	req := gateway.requests[0]
	require.Equal(t, result.OrderID.String(), req.OrderID)
	require.Equal(t, enums.PaymentMethodPix, req.Method)
	require.Equal(t, email, req.CustomerEmail)
	require.Len(t, req.Items, 1)
	require.EqualValues(t, 1, req.Items[0].Quantity)

	var order models.Order
	require.NoError(t, f.conn.First(&order, "id = ?", result.OrderID).Error)
	require.Equal(t, enums.OrderStatusAwaitingPayment, order.Status)
	require.NotNil(t, order.PaymentStatus)
	require.Equal(t, enums.PaymentStatusAwaitingPayment, *order.PaymentStatus)
	require.NotNil(t, order.StripeSessionID)
	require.Equal(t, "cs_test_123", *order.StripeSessionID)
	require.Nil(t, order.WhatsAppMessage)
}

func TestCreateSessionUnconfiguredCreatesNothing(t *testing.T) {
	f := newFixture(t, &fakeGateway{configured: false})

	_, err := f.svc.CreateSession(context.Background(), sampleInput(enums.PaymentMethodCard))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUpstream))

	var count int64
	require.NoError(t, f.conn.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, f.conn.Model(&models.Customer{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCreateSessionRejectsManualMethod(t *testing.T) {
	f := newFixture(t, &fakeGateway{configured: true})
	_, err := f.svc.CreateSession(context.Background(), sampleInput(enums.PaymentMethodWhatsApp))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateSessionGatewayFailureMarksOrderFailed(t *testing.T) {
	f := newFixture(t, &fakeGateway{configured: true, createErr: errors.New("stripe down")})

	_, err := f.svc.CreateSession(context.Background(), sampleInput(enums.PaymentMethodCard))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUpstream))

	var order models.Order
	require.NoError(t, f.conn.First(&order).Error)
	require.Equal(t, enums.OrderStatusPaymentFailed, order.Status)
	require.Equal(t, enums.PaymentStatusFailed, *order.PaymentStatus)
	require.Nil(t, order.StripeSessionID)
}

func TestPaymentStatus(t *testing.T) {
	gateway := &fakeGateway{configured: true, session: &stripe.Session{ID: "cs_test_123", PaymentStatus: "unpaid"}}
	f := newFixture(t, gateway)
	ctx := context.Background()

	created, err := f.svc.CreateSession(ctx, sampleInput(enums.PaymentMethodCard))
	require.NoError(t, err)

	status, err := f.svc.PaymentStatus(ctx, created.OrderID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusAwaitingPayment, status.Status)
	require.NotNil(t, status.StripeStatus)
	require.Equal(t, "unpaid", *status.StripeStatus)

	gateway.getErr = errors.New("timeout")
	status, err = f.svc.PaymentStatus(ctx, created.OrderID)
	require.NoError(t, err)
	require.Nil(t, status.StripeStatus)

	_, err = f.svc.PaymentStatus(ctx, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
