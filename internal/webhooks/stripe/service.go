package stripewebhook

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/davidfales/soccertraining-backend/internal/checkout"
	"github.com/davidfales/soccertraining-backend/internal/sessions"
	"github.com/davidfales/soccertraining-backend/pkg/config"
	"github.com/davidfales/soccertraining-backend/pkg/email"
	pkgerrors "github.com/davidfales/soccertraining-backend/pkg/errors"
	"github.com/davidfales/soccertraining-backend/pkg/logger"
	stripeclient "github.com/davidfales/soccertraining-backend/pkg/stripe"
	"github.com/stripe/stripe-go/v84"
)

// EventCheckoutSessionCompleted is the only event type this service
// acts on. Other events are acknowledged and dropped.
const EventCheckoutSessionCompleted = "checkout.session.completed"

// Service processes verified Stripe webhook events.
type Service interface {
	Handle(ctx context.Context, event stripe.Event) error
}

type service struct {
	repo     checkout.Repository
	sessions sessions.Service
	stripe   stripeclient.CheckoutClient
	sender   email.Sender
	guard    *EventGuard
	site     config.SiteConfig
	mail     config.EmailConfig
	logg     *logger.Logger
	now      func() time.Time
}

// Params wires webhook dependencies. Stripe and Sender may be nil in
// local development; payment detail enrichment and emails are then
// skipped.
type Params struct {
	Repo     checkout.Repository
	Sessions sessions.Service
	Stripe   stripeclient.CheckoutClient
	Sender   email.Sender
	Guard    *EventGuard
	Site     config.SiteConfig
	Email    config.EmailConfig
	Logger   *logger.Logger
	Now      func() time.Time
}

// NewService builds the Stripe webhook service.
func NewService(params Params) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "signup repository required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sessions service required")
	}
	if params.Guard == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "event guard required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "webhook logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		sessions: params.Sessions,
		stripe:   params.Stripe,
		sender:   params.Sender,
		guard:    params.Guard,
		site:     params.Site,
		mail:     params.Email,
		logg:     params.Logger,
		now:      now,
	}, nil
}

func (s *service) Handle(ctx context.Context, event stripe.Event) error {
	if string(event.Type) != EventCheckoutSessionCompleted {
		return nil
	}

	claimed, err := s.guard.CheckAndMark(ctx, event.ID)
	if err != nil {
		return err
	}
	if !claimed {
		s.logg.Info(s.logg.WithField(ctx, "event_id", event.ID), "duplicate webhook delivery dropped")
		return nil
	}

	if err := s.handleCheckoutCompleted(ctx, event); err != nil {
		// Free the claim so Stripe's retry can run the handler again.
		if releaseErr := s.guard.Release(ctx, event.ID); releaseErr != nil {
			s.logg.Error(ctx, "failed to release webhook event claim", releaseErr)
		}
		return err
	}
	return nil
}

func (s *service) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var checkoutSession stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &checkoutSession); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session")
	}
	if checkoutSession.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id missing")
	}

	ctx = s.logg.WithField(ctx, "checkout_session_id", checkoutSession.ID)

	details := s.paymentDetails(ctx, &checkoutSession)
	flipped, err := s.repo.MarkPaid(ctx, checkoutSession.ID, details)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark signup paid")
	}
	if flipped == 0 {
		s.logg.Info(ctx, "signup already paid or unknown, skipping")
		return nil
	}

	// Emails are best effort. The payment is recorded either way.
	s.sendEmails(ctx, &checkoutSession)
	return nil
}

// paymentDetails pulls the payment intent, charge and receipt from
// Stripe. Enrichment failures are logged and tolerated.
func (s *service) paymentDetails(ctx context.Context, checkoutSession *stripe.CheckoutSession) checkout.PaymentDetails {
	details := checkout.PaymentDetails{}
	if checkoutSession.PaymentIntent == nil {
		return details
	}
	details.PaymentIntentID = checkoutSession.PaymentIntent.ID

	if s.stripe == nil || details.PaymentIntentID == "" {
		return details
	}

	params := &stripe.PaymentIntentParams{}
	params.AddExpand("latest_charge")
	intent, err := s.stripe.RetrievePaymentIntent(ctx, details.PaymentIntentID, params)
	if err != nil {
		s.logg.Error(ctx, "failed to retrieve payment intent", err)
		return details
	}
	if intent.LatestCharge != nil {
		details.ChargeID = intent.LatestCharge.ID
		details.ReceiptURL = intent.LatestCharge.ReceiptURL
	}
	return details
}

func (s *service) sendEmails(ctx context.Context, checkoutSession *stripe.CheckoutSession) {
	if s.sender == nil || !s.sender.Enabled() {
		return
	}

	signup, err := s.repo.FindByCheckoutSession(ctx, checkoutSession.ID)
	if err != nil {
		s.logg.Error(ctx, "failed to load signup for emails", err)
		return
	}
	session, err := s.sessions.GetByID(ctx, signup.GroupSessionID)
	if err != nil {
		s.logg.Error(ctx, "failed to load session for emails", err)
		return
	}

	loc, err := time.LoadLocation(s.site.TimeZone)
	if err != nil {
		loc = time.UTC
	}
	dateLine, timeLine := sessions.FormatSchedule(&session.GroupSession, loc)
	details := sessionDetails{
		Title:    session.Title,
		DateLine: dateLine,
		TimeLine: timeLine,
	}
	if session.Location != nil {
		details.Location = *session.Location
	}

	portal := portalCredentials{
		Email:    checkoutSession.Metadata[checkout.MetaParentPortalEmail],
		Password: checkoutSession.Metadata[checkout.MetaParentPortalPassword],
		IsNew:    checkoutSession.Metadata[checkout.MetaParentPortalIsNew] == "true",
	}
	if portal.Email == "" {
		portal.Email = signup.ContactEmail
	}

	base := strings.TrimSuffix(s.site.BaseURL, "/")
	if _, err := s.sender.Send(ctx, email.Message{
		To:      signup.ContactEmail,
		Subject: confirmationSubject(details),
		HTML:    confirmationHTML(signup, details, portal, base),
	}); err != nil {
		s.logg.Error(ctx, "failed to send confirmation email", err)
	}

	if s.mail.OwnerAddress != "" {
		if _, err := s.sender.Send(ctx, email.Message{
			To:      s.mail.OwnerAddress,
			ReplyTo: signup.ContactEmail,
			Subject: ownerAlertSubject(signup, details),
			HTML:    ownerAlertHTML(signup, details),
		}); err != nil {
			s.logg.Error(ctx, "failed to send owner alert email", err)
		}
	}
}
