package checkout

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/davidfales/soccertraining-backend/internal/crm"
	"github.com/davidfales/soccertraining-backend/internal/sessions"
	"github.com/davidfales/soccertraining-backend/pkg/config"
	"github.com/davidfales/soccertraining-backend/pkg/db/models"
	pkgerrors "github.com/davidfales/soccertraining-backend/pkg/errors"
	"github.com/davidfales/soccertraining-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type fakeProvisioner struct {
	result *crm.ProvisionResult
	err    error
	inputs []crm.ProvisionInput
}

func (f *fakeProvisioner) Provision(_ context.Context, input crm.ProvisionInput) (*crm.ProvisionResult, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeStripe struct {
	params  *stripe.CheckoutSessionParams
	session *stripe.CheckoutSession
	err     error
}

func (f *fakeStripe) CreateCheckoutSession(_ context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeStripe) RetrievePaymentIntent(_ context.Context, _ string, _ *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return nil, nil
}

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{
		`CREATE TABLE group_sessions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  description TEXT,
  session_date DATETIME NOT NULL,
  session_date_end DATETIME,
  location TEXT,
  price NUMERIC NOT NULL DEFAULT 0,
  max_players INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE player_signups (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  group_session_id INTEGER NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  age INTEGER NOT NULL,
  birthday DATETIME,
  preferred_foot TEXT,
  team TEXT,
  notes TEXT,
  emergency_contact TEXT NOT NULL,
  contact_email TEXT NOT NULL,
  contact_phone TEXT,
  has_paid INTEGER NOT NULL DEFAULT 0,
  stripe_checkout_session_id TEXT UNIQUE,
  stripe_payment_intent_id TEXT,
  stripe_charge_id TEXT,
  stripe_receipt_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type checkoutFixture struct {
	db          *gorm.DB
	svc         Service
	stripe      *fakeStripe
	provisioner *fakeProvisioner
	now         time.Time
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	db := setupCheckoutTestDB(t)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	sessionsSvc, err := sessions.NewService(sessions.Params{
		Repo: sessions.NewRepository(db),
		Now:  func() time.Time { return now },
	})
	require.NoError(t, err)

	provisioner := &fakeProvisioner{
		result: &crm.ProvisionResult{
			ParentID:          uuid.New(),
			PlayerID:          uuid.New(),
			ParentEmail:       "parent@example.com",
			ParentWasCreated:  true,
			GeneratedPassword: "Xk3mRp7Qw2",
		},
	}
	stripeFake := &fakeStripe{
		session: &stripe.CheckoutSession{
			ID:  "cs_test_123",
			URL: "https://checkout.stripe.com/c/pay/cs_test_123",
		},
	}

	svc, err := NewService(Params{
		Repo:        NewRepository(db),
		Sessions:    sessionsSvc,
		Provisioner: provisioner,
		Stripe:      stripeFake,
		Site:        config.SiteConfig{BaseURL: "https://soccertraining.example.com", TimeZone: "America/Phoenix"},
		Logger:      logger.New(logger.Options{ServiceName: "checkout-test", Output: io.Discard}),
		Now:         func() time.Time { return now },
	})
	require.NoError(t, err)

	return &checkoutFixture{db: db, svc: svc, stripe: stripeFake, provisioner: provisioner, now: now}
}

func (f *checkoutFixture) seedSession(t *testing.T, price string, maxPlayers int, startsIn time.Duration) *models.GroupSession {
	t.Helper()

	session := &models.GroupSession{
		Title:       "Summer Shooting Clinic",
		SessionDate: f.now.Add(startsIn),
		Price:       decimal.RequireFromString(price),
		MaxPlayers:  maxPlayers,
	}
	require.NoError(t, f.db.Create(session).Error)
	return session
}

func validInput(sessionID int64) Input {
	return Input{
		GroupSessionID:   sessionID,
		FirstName:        "Jamie",
		LastName:         "Jones",
		Age:              10,
		Birthday:         "2015-03-14",
		EmergencyContact: "Sam Jones 555-0100",
		ContactEmail:     "parent@example.com",
		ContactPhone:     "555-0100",
		ParentName:       "Sam Jones",
	}
}

func TestStartCreatesSignupAndCheckoutSession(t *testing.T) {
	f := newCheckoutFixture(t)
	session := f.seedSession(t, "45.00", 8, 72*time.Hour)

	result, err := f.svc.Start(context.Background(), validInput(session.ID))
	require.NoError(t, err)
	require.Equal(t, "cs_test_123", result.CheckoutSessionID)
	require.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_123", result.CheckoutURL)

	var signup models.PlayerSignup
	require.NoError(t, f.db.First(&signup, "id = ?", result.PlayerSignupID).Error)
	require.Equal(t, "Jamie", signup.FirstName)
	require.False(t, signup.HasPaid)
	require.NotNil(t, signup.StripeCheckoutSessionID)
	require.Equal(t, "cs_test_123", *signup.StripeCheckoutSessionID)

	require.NotNil(t, f.stripe.params)
	require.Equal(t, int64(4500), *f.stripe.params.LineItems[0].PriceData.UnitAmount)
	require.Equal(t, "https://soccertraining.example.com/?checkout=success", *f.stripe.params.SuccessURL)
	require.Equal(t, "parent@example.com", *f.stripe.params.CustomerEmail)

	meta := f.stripe.params.Metadata
	require.Equal(t, "parent@example.com", meta[MetaParentPortalEmail])
	require.Equal(t, "true", meta[MetaParentPortalIsNew])
	require.Equal(t, "Xk3mRp7Qw2", meta[MetaParentPortalPassword])
	require.Equal(t, "1", meta[MetaGroupSessionID])
}

func TestStartOmitsPasswordForExistingParent(t *testing.T) {
	f := newCheckoutFixture(t)
	f.provisioner.result.ParentWasCreated = false
	f.provisioner.result.GeneratedPassword = ""
	session := f.seedSession(t, "45.00", 8, 72*time.Hour)

	_, err := f.svc.Start(context.Background(), validInput(session.ID))
	require.NoError(t, err)

	meta := f.stripe.params.Metadata
	require.Equal(t, "false", meta[MetaParentPortalIsNew])
	require.NotContains(t, meta, MetaParentPortalPassword)
}

func TestStartRejectsPastSession(t *testing.T) {
	f := newCheckoutFixture(t)
	session := f.seedSession(t, "45.00", 8, -time.Hour)

	_, err := f.svc.Start(context.Background(), validInput(session.ID))
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestStartRejectsFullSession(t *testing.T) {
	f := newCheckoutFixture(t)
	session := f.seedSession(t, "45.00", 1, 72*time.Hour)

	csID := "cs_existing"
	require.NoError(t, f.db.Create(&models.PlayerSignup{
		GroupSessionID:          session.ID,
		FirstName:               "Taken",
		LastName:                "Spot",
		Age:                     9,
		EmergencyContact:        "someone",
		ContactEmail:            "other@example.com",
		HasPaid:                 true,
		StripeCheckoutSessionID: &csID,
	}).Error)

	_, err := f.svc.Start(context.Background(), validInput(session.ID))
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeConflict, coded.Code())
}

func TestStartRejectsFreeSession(t *testing.T) {
	f := newCheckoutFixture(t)
	session := f.seedSession(t, "0", 8, 72*time.Hour)

	_, err := f.svc.Start(context.Background(), validInput(session.ID))
	require.Error(t, err)
}

func TestStartBuildsSessionSpecificNoteContext(t *testing.T) {
	f := newCheckoutFixture(t)
	first := f.seedSession(t, "45.00", 8, 72*time.Hour)
	second := &models.GroupSession{
		Title:       "Fall Finishing Camp",
		SessionDate: f.now.Add(240 * time.Hour),
		Price:       decimal.RequireFromString("55.00"),
		MaxPlayers:  8,
	}
	require.NoError(t, f.db.Create(second).Error)

	_, err := f.svc.Start(context.Background(), validInput(first.ID))
	require.NoError(t, err)

	f.stripe.session = &stripe.CheckoutSession{
		ID:  "cs_test_456",
		URL: "https://checkout.stripe.com/c/pay/cs_test_456",
	}
	_, err = f.svc.Start(context.Background(), validInput(second.ID))
	require.NoError(t, err)

	require.Len(t, f.provisioner.inputs, 2)
	require.Contains(t, f.provisioner.inputs[0].NoteContext, "Summer Shooting Clinic")
	require.Contains(t, f.provisioner.inputs[1].NoteContext, "Fall Finishing Camp")
	require.Contains(t, f.provisioner.inputs[0].NoteContext, "Session booked via group checkout")
	require.NotEqual(t, f.provisioner.inputs[0].NoteContext, f.provisioner.inputs[1].NoteContext)
}

func TestStartDerivesAgeFromBirthday(t *testing.T) {
	f := newCheckoutFixture(t)
	session := f.seedSession(t, "45.00", 8, 72*time.Hour)

	input := validInput(session.ID)
	input.Age = 5

	result, err := f.svc.Start(context.Background(), input)
	require.NoError(t, err)

	var signup models.PlayerSignup
	require.NoError(t, f.db.First(&signup, "id = ?", result.PlayerSignupID).Error)
	require.Equal(t, 10, signup.Age)

	require.Len(t, f.provisioner.inputs, 1)
	require.Equal(t, 10, f.provisioner.inputs[0].PlayerAge)
}

func TestStartKeepsClientAgeWithoutBirthday(t *testing.T) {
	f := newCheckoutFixture(t)
	session := f.seedSession(t, "45.00", 8, 72*time.Hour)

	input := validInput(session.ID)
	input.Birthday = ""
	input.Age = 12

	result, err := f.svc.Start(context.Background(), input)
	require.NoError(t, err)

	var signup models.PlayerSignup
	require.NoError(t, f.db.First(&signup, "id = ?", result.PlayerSignupID).Error)
	require.Equal(t, 12, signup.Age)
	require.Nil(t, signup.Birthday)
}

func TestStartStoresPaymentIntentWhenPresent(t *testing.T) {
	f := newCheckoutFixture(t)
	f.stripe.session.PaymentIntent = &stripe.PaymentIntent{ID: "pi_at_create"}
	session := f.seedSession(t, "45.00", 8, 72*time.Hour)

	result, err := f.svc.Start(context.Background(), validInput(session.ID))
	require.NoError(t, err)

	var signup models.PlayerSignup
	require.NoError(t, f.db.First(&signup, "id = ?", result.PlayerSignupID).Error)
	require.NotNil(t, signup.StripePaymentIntentID)
	require.Equal(t, "pi_at_create", *signup.StripePaymentIntentID)
}

func TestStartParentNameFallsBackToEmergencyContact(t *testing.T) {
	f := newCheckoutFixture(t)
	session := f.seedSession(t, "45.00", 8, 72*time.Hour)

	input := validInput(session.ID)
	input.ParentName = ""

	_, err := f.svc.Start(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, f.provisioner.inputs, 1)
	require.Equal(t, "Sam Jones 555-0100", f.provisioner.inputs[0].ParentName)
}

func TestStartValidation(t *testing.T) {
	f := newCheckoutFixture(t)
	session := f.seedSession(t, "45.00", 8, 72*time.Hour)

	cases := []struct {
		name   string
		mutate func(*Input)
	}{
		{"missing first name", func(in *Input) { in.FirstName = " " }},
		{"missing last name", func(in *Input) { in.LastName = "" }},
		{"missing emergency contact", func(in *Input) { in.EmergencyContact = "" }},
		{"missing email", func(in *Input) { in.ContactEmail = "" }},
		{"bad email", func(in *Input) { in.ContactEmail = "not-an-email" }},
		{"age too low", func(in *Input) { in.Age = 0; in.Birthday = "" }},
		{"age too high", func(in *Input) { in.Age = 120; in.Birthday = "" }},
		{"bad birthday", func(in *Input) { in.Birthday = "2015-02-30" }},
		{"birthday in the future", func(in *Input) { in.Birthday = "2026-01-01" }},
		{"birthday over a century back", func(in *Input) { in.Birthday = "1901-01-01" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput(session.ID)
			tc.mutate(&input)

			_, err := f.svc.Start(context.Background(), input)
			require.Error(t, err)
			coded := pkgerrors.As(err)
			require.NotNil(t, coded)
			require.Equal(t, pkgerrors.CodeValidation, coded.Code())
		})
	}
}
