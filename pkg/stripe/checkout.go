package stripe

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	checkoutsession "github.com/stripe/stripe-go/v84/checkout/session"
	"github.com/stripe/stripe-go/v84/paymentintent"
)

// CheckoutClient exposes the subset of Stripe operations used by the
// booking flow, wrapped so services can be tested with fakes.
type CheckoutClient interface {
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	RetrievePaymentIntent(ctx context.Context, id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type checkoutClientWrapper struct{}

// NewCheckoutClient wraps the initialized Stripe client for the booking flow.
func NewCheckoutClient(api *Client) CheckoutClient {
	if api == nil {
		return nil
	}
	return &checkoutClientWrapper{}
}

func (w *checkoutClientWrapper) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	if params != nil {
		params.Context = ctx
	}
	return checkoutsession.New(params)
}

func (w *checkoutClientWrapper) RetrievePaymentIntent(ctx context.Context, id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	if params == nil {
		params = &stripe.PaymentIntentParams{}
	}
	params.Context = ctx
	return paymentintent.Get(id, params)
}
