package controllers

import (
	"io"
	"net/http"

	"github.com/davidfales/soccertraining-backend/api/responses"
	stripewebhook "github.com/davidfales/soccertraining-backend/internal/webhooks/stripe"
	"github.com/davidfales/soccertraining-backend/pkg/config"
	pkgerrors "github.com/davidfales/soccertraining-backend/pkg/errors"
	"github.com/davidfales/soccertraining-backend/pkg/logger"
	"github.com/stripe/stripe-go/v84/webhook"
)

// Stripe event payloads stay well under this.
const stripeWebhookMaxBody = 64 * 1024

// StripeWebhook verifies and dispatches Stripe event deliveries.
func StripeWebhook(svc stripewebhook.Service, cfg config.StripeConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, stripeWebhookMaxBody))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable webhook payload"))
			return
		}

		event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), cfg.WebhookSecret)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid webhook signature"))
			return
		}

		if err := svc.Handle(r.Context(), event); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"received": true})
	}
}
