package orders

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	internalorders "github.com/angelmondragon/detailshop-backend/internal/orders"
	"github.com/angelmondragon/detailshop-backend/pkg/db/dbtest"
	"github.com/angelmondragon/detailshop-backend/pkg/db/models"
	"github.com/angelmondragon/detailshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
)

func newRouter(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := internalorders.NewService(internalorders.NewRepository(conn))
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/orders", List(svc, nil))
	r.Get("/orders/{orderId}", Detail(svc, nil))
	r.Patch("/orders/{orderId}/status", UpdateStatus(svc, nil))
	return r, conn
}

func seedOrder(t *testing.T, conn *gorm.DB, method enums.PaymentMethod, status enums.OrderStatus) *models.Order {
	t.Helper()
	customer := &models.Customer{Name: "Bia", Phone: "11988887777"}
	require.NoError(t, conn.Create(customer).Error)
	order := &models.Order{
		CustomerID:    customer.ID,
		Status:        status,
		Total:         decimal.NewFromInt(80),
		CustomerName:  customer.Name,
		CustomerPhone: customer.Phone,
		PaymentMethod: method,
		Items: []models.OrderItem{
			{ProductName: "Cera", ProductPrice: decimal.NewFromInt(40), Quantity: 2},
		},
	}
	require.NoError(t, conn.Create(order).Error)
	return order
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload.Error.Code
}

func TestUpdateStatusCompletesManualOrder(t *testing.T) {
	router, conn := newRouter(t)
	order := seedOrder(t, conn, enums.PaymentMethodWhatsApp, enums.OrderStatusPending)

	req := httptest.NewRequest(http.MethodPatch, "/orders/"+order.ID.String()+"/status", strings.NewReader(`{"status":"completed"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stored models.Order
	require.NoError(t, conn.First(&stored, "id = ?", order.ID).Error)
	require.Equal(t, enums.OrderStatusCompleted, stored.Status)
}

func TestUpdateStatusRejectsIllegalMoves(t *testing.T) {
	router, conn := newRouter(t)
	completed := seedOrder(t, conn, enums.PaymentMethodWhatsApp, enums.OrderStatusCompleted)
	gateway := seedOrder(t, conn, enums.PaymentMethodCard, enums.OrderStatusAwaitingPayment)

	for _, id := range []string{completed.ID.String(), gateway.ID.String()} {
		req := httptest.NewRequest(http.MethodPatch, "/orders/"+id+"/status", strings.NewReader(`{"status":"cancelled"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.Equal(t, string(pkgerrors.CodeStateConflict), errorCode(t, rec))
	}

	req := httptest.NewRequest(http.MethodPatch, "/orders/"+completed.ID.String()+"/status", strings.NewReader(`{"status":"shipped"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDetailAndList(t *testing.T) {
	router, conn := newRouter(t)
	order := seedOrder(t, conn, enums.PaymentMethodWhatsApp, enums.OrderStatusPending)
	seedOrder(t, conn, enums.PaymentMethodWhatsApp, enums.OrderStatusCancelled)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/"+order.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Data internalorders.OrderDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	require.Len(t, detail.Data.Items, 1)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders?status=pending", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data internalorders.ListResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data.Orders, 1)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/not-a-uuid", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
