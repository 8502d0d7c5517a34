package webhooks

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/detailshop-backend/api/responses"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
	pkgstripe "github.com/angelmondragon/detailshop-backend/pkg/stripe"
)

// maxPayloadBytes matches the upper bound Stripe documents for event bodies.
const maxPayloadBytes = 65536

type StripeWebhookService interface {
	HandleEvent(ctx context.Context, event stripe.Event) (string, error)
}

type EventVerifier interface {
	ConstructEvent(payload []byte, signature string) (stripe.Event, error)
}

// StripeWebhook verifies and applies hosted-checkout payment events.
func StripeWebhook(svc StripeWebhookService, verifier EventVerifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || verifier == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "webhook service unavailable"))
			return
		}

		signature := r.Header.Get("Stripe-Signature")
		if signature == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "stripe signature missing"))
			return
		}
		payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes+1))
		switch {
		case err != nil:
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
			return
		case len(payload) > maxPayloadBytes:
			// a truncated body would only fail signature checks with a misleading error
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "webhook payload too large"))
			return
		}

		event, err := verifier.ConstructEvent(payload, signature)
		if err != nil {
			if errors.Is(err, pkgstripe.ErrNotConfigured) {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment gateway not configured"))
				return
			}
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stripe signature"))
			return
		}

		outcome, err := svc.HandleEvent(ctx, event)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			ctx = logg.WithFields(ctx, map[string]any{"event_id": event.ID, "outcome": outcome})
			logg.Info(ctx, "stripe.webhook.handled")
		}
		responses.WriteSuccess(w, map[string]bool{"received": true})
	}
}
