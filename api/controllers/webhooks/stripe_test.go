package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/angelmondragon/detailshop-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	pkgstripe "github.com/angelmondragon/detailshop-backend/pkg/stripe"
)

const testSecret = "whsec_test"

func TestStripeWebhook_Success(t *testing.T) {
	payload, header := buildSignedEvent(t)
	service := &fakeStripeWebhookService{outcome: "applied"}
	handler := StripeWebhook(service, secretVerifier{secret: testSecret}, nil)

	rec := serve(handler, payload, header)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if service.calls != 1 {
		t.Fatalf("expected service called once, got %d", service.calls)
	}
	if !strings.Contains(rec.Body.String(), `"received":true`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestStripeWebhookRejectsBeforeDispatch(t *testing.T) {
	payload, header := buildSignedEvent(t)
	oversized := append(bytes.Repeat([]byte(" "), maxPayloadBytes), payload...)
	cases := []struct {
		name    string
		payload []byte
		header  string
	}{
		{"missing signature", payload, ""},
		{"invalid signature", payload, "t=1,v1=invalid"},
		{"signed for another body", []byte(`{"id":"evt_other"}`), header},
		{"oversized body", oversized, header},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := &fakeStripeWebhookService{}
			rec := serve(StripeWebhook(service, secretVerifier{secret: testSecret}, nil), tc.payload, tc.header)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if service.calls != 0 {
				t.Fatalf("service must not run, got %d calls", service.calls)
			}
		})
	}
}

func TestStripeWebhook_NotConfigured(t *testing.T) {
	payload, header := buildSignedEvent(t)
	handler := StripeWebhook(&fakeStripeWebhookService{}, pkgstripe.NewGateway(nil, config.StripeConfig{}, "https://shop.test"), nil)

	rec := serve(handler, payload, header)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when unconfigured, got %d", rec.Code)
	}
}

func TestStripeWebhook_HandlerFailure(t *testing.T) {
	payload, header := buildSignedEvent(t)
	service := &fakeStripeWebhookService{err: pkgerrors.New(pkgerrors.CodeInternal, "update order")}
	handler := StripeWebhook(service, secretVerifier{secret: testSecret}, nil)

	rec := serve(handler, payload, header)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func serve(handler http.Handler, payload []byte, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	if header != "" {
		req.Header.Set("Stripe-Signature", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func buildSignedEvent(t *testing.T) ([]byte, string) {
	t.Helper()
	session := map[string]any{
		"id":       "cs_test_" + uuid.NewString(),
		"object":   "checkout.session",
		"metadata": map[string]string{"order_id": uuid.NewString()},
	}
	rawSession, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("marshal session: %v", err)
	}
	event := &stripe.Event{
		ID:         "evt_" + uuid.NewString(),
		Type:       stripe.EventTypeCheckoutSessionCompleted,
		Object:     "event",
		APIVersion: stripe.APIVersion,
		Data:       &stripe.EventData{Raw: rawSession},
	}
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    testSecret,
		Timestamp: time.Now(),
	})
	return payload, signed.Header
}

type secretVerifier struct {
	secret string
}

func (v secretVerifier) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}

type fakeStripeWebhookService struct {
	calls   int
	outcome string
	err     error
}

func (f *fakeStripeWebhookService) HandleEvent(ctx context.Context, event stripe.Event) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if event.ID == "" {
		return "", errors.New("event id missing")
	}
	return f.outcome, nil
}
