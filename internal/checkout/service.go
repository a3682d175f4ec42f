package checkout

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/davidfales/soccertraining-backend/internal/crm"
	"github.com/davidfales/soccertraining-backend/internal/sessions"
	"github.com/davidfales/soccertraining-backend/pkg/config"
	"github.com/davidfales/soccertraining-backend/pkg/db/models"
	pkgerrors "github.com/davidfales/soccertraining-backend/pkg/errors"
	"github.com/davidfales/soccertraining-backend/pkg/logger"
	stripeclient "github.com/davidfales/soccertraining-backend/pkg/stripe"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
)

// Metadata keys attached to the Stripe checkout session so the webhook
// can correlate the payment and email portal credentials.
const (
	MetaGroupSessionID       = "group_session_id"
	MetaPlayerSignupID       = "player_signup_id"
	MetaParentPortalEmail    = "parent_portal_email"
	MetaParentPortalPassword = "parent_portal_password"
	MetaParentPortalIsNew    = "parent_portal_is_new"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Input carries one booking submission.
type Input struct {
	GroupSessionID int64

	FirstName     string
	LastName      string
	Age           int
	Birthday      string
	PreferredFoot string
	Team          string
	Notes         string

	EmergencyContact string
	ContactEmail     string
	ContactPhone     string
	ParentName       string
}

// Result points the browser at the hosted Stripe payment page.
type Result struct {
	CheckoutSessionID string `json:"checkout_session_id"`
	CheckoutURL       string `json:"checkout_url"`
	PlayerSignupID    int64  `json:"player_signup_id"`
}

// Provisioner creates or refreshes the parent and player records behind
// a booking.
type Provisioner interface {
	Provision(ctx context.Context, input crm.ProvisionInput) (*crm.ProvisionResult, error)
}

// Service starts the paid booking flow for a group session.
type Service interface {
	Start(ctx context.Context, input Input) (*Result, error)
}

type service struct {
	repo        Repository
	sessions    sessions.Service
	provisioner Provisioner
	stripe      stripeclient.CheckoutClient
	site        config.SiteConfig
	logg        *logger.Logger
	now         func() time.Time
}

// Params wires checkout dependencies.
type Params struct {
	Repo        Repository
	Sessions    sessions.Service
	Provisioner Provisioner
	Stripe      stripeclient.CheckoutClient
	Site        config.SiteConfig
	Logger      *logger.Logger
	Now         func() time.Time
}

// NewService builds the checkout service.
func NewService(params Params) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "signup repository required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sessions service required")
	}
	if params.Provisioner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "account provisioner required")
	}
	if params.Stripe == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stripe client required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "checkout logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:        params.Repo,
		sessions:    params.Sessions,
		provisioner: params.Provisioner,
		stripe:      params.Stripe,
		site:        params.Site,
		logg:        params.Logger,
		now:         now,
	}, nil
}

func (s *service) Start(ctx context.Context, input Input) (*Result, error) {
	birthday, err := s.validate(&input)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByID(ctx, input.GroupSessionID)
	if err != nil {
		return nil, err
	}
	if !session.SessionDate.After(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "this session has already started")
	}
	if session.SpotsLeft <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "this session is full")
	}
	if !session.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "this session is not open for paid booking")
	}

	// The emergency contact doubles as the parent's name when the form
	// leaves the dedicated field empty.
	parentName := strings.TrimSpace(input.ParentName)
	if parentName == "" {
		parentName = input.EmergencyContact
	}

	dateLine, _ := sessions.FormatSchedule(&session.GroupSession, s.location())
	noteContext := fmt.Sprintf("Session booked via group checkout (%s on %s)", session.Title, dateLine)

	provisioned, err := s.provisioner.Provision(ctx, crm.ProvisionInput{
		ContactEmail:  input.ContactEmail,
		ContactPhone:  input.ContactPhone,
		ParentName:    parentName,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		PlayerAge:     input.Age,
		Birthdate:     birthday,
		PreferredFoot: input.PreferredFoot,
		Team:          input.Team,
		Notes:         input.Notes,
		NoteContext:   noteContext,
	})
	if err != nil {
		return nil, err
	}

	signup := &models.PlayerSignup{
		GroupSessionID:   session.ID,
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		Age:              input.Age,
		Birthday:         birthday,
		EmergencyContact: input.EmergencyContact,
		ContactEmail:     provisioned.ParentEmail,
	}
	signup.PreferredFoot = nilIfEmpty(input.PreferredFoot)
	signup.Team = nilIfEmpty(input.Team)
	signup.Notes = nilIfEmpty(input.Notes)
	signup.ContactPhone = nilIfEmpty(input.ContactPhone)

	if err := s.repo.CreateSignup(ctx, signup); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create signup")
	}

	checkoutSession, err := s.stripe.CreateCheckoutSession(ctx, s.buildParams(session, signup, provisioned))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe checkout session")
	}

	var paymentIntentID string
	if checkoutSession.PaymentIntent != nil {
		paymentIntentID = checkoutSession.PaymentIntent.ID
	}
	if err := s.repo.AttachCheckoutSession(ctx, signup.ID, checkoutSession.ID, paymentIntentID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach checkout session")
	}

	return &Result{
		CheckoutSessionID: checkoutSession.ID,
		CheckoutURL:       checkoutSession.URL,
		PlayerSignupID:    signup.ID,
	}, nil
}

func (s *service) validate(input *Input) (*time.Time, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.EmergencyContact = strings.TrimSpace(input.EmergencyContact)
	input.ContactEmail = strings.TrimSpace(input.ContactEmail)

	if input.GroupSessionID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid session id")
	}
	if input.FirstName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "player first name is required")
	}
	if input.LastName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "player last name is required")
	}
	if input.EmergencyContact == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "emergency contact is required")
	}
	if input.ContactEmail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact email is required")
	}
	if !emailPattern.MatchString(input.ContactEmail) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid contact email")
	}
	birthday, err := parseBirthday(input.Birthday)
	if err != nil {
		return nil, err
	}

	// A parseable birthday is authoritative; the client-computed age is
	// only trusted on the birthday-less form.
	if birthday != nil {
		derived := ageOn(*birthday, s.now())
		if derived < 1 || derived > 99 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "birthday must give an age between 1 and 99")
		}
		input.Age = derived
	} else if input.Age < 1 || input.Age > 99 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "player age must be between 1 and 99")
	}
	return birthday, nil
}

// ageOn reports full years lived at the given instant.
func ageOn(birthday, at time.Time) int {
	years := at.Year() - birthday.Year()
	if birthday.AddDate(years, 0, 0).After(at) {
		years--
	}
	return years
}

// parseBirthday accepts the date-picker format first, then a full
// timestamp from older clients.
func parseBirthday(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return &t, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid birthday")
}

func (s *service) location() *time.Location {
	loc, err := time.LoadLocation(s.site.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (s *service) buildParams(session *sessions.SessionWithAvailability, signup *models.PlayerSignup, provisioned *crm.ProvisionResult) *stripe.CheckoutSessionParams {
	dateLine, timeLine := sessions.FormatSchedule(&session.GroupSession, s.location())
	description := dateLine + ", " + timeLine
	if session.Location != nil && *session.Location != "" {
		description += " at " + *session.Location
	}

	unitAmount := session.Price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	base := strings.TrimSuffix(s.site.BaseURL, "/")

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(string(stripe.CurrencyUSD)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(session.Title),
					Description: stripe.String(description),
				},
				UnitAmount: stripe.Int64(unitAmount),
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL:    stripe.String(base + "/?checkout=success"),
		CancelURL:     stripe.String(base + "/?checkout=cancelled"),
		CustomerEmail: stripe.String(provisioned.ParentEmail),
	}
	params.AddMetadata(MetaGroupSessionID, strconv.FormatInt(session.ID, 10))
	params.AddMetadata(MetaPlayerSignupID, strconv.FormatInt(signup.ID, 10))
	params.AddMetadata(MetaParentPortalEmail, provisioned.ParentEmail)
	params.AddMetadata(MetaParentPortalIsNew, strconv.FormatBool(provisioned.ParentWasCreated))
	if provisioned.GeneratedPassword != "" {
		params.AddMetadata(MetaParentPortalPassword, provisioned.GeneratedPassword)
	}
	return params
}

func nilIfEmpty(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
