package checkout

import (
	"context"

	"github.com/davidfales/soccertraining-backend/pkg/db/models"
	"gorm.io/gorm"
)

// PaymentDetails is what the webhook records when a signup is paid.
type PaymentDetails struct {
	PaymentIntentID string
	ChargeID        string
	ReceiptURL      string
}

// Repository persists player signups through the booking and payment flow.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateSignup(ctx context.Context, signup *models.PlayerSignup) error
	AttachCheckoutSession(ctx context.Context, signupID int64, checkoutSessionID, paymentIntentID string) error
	FindByCheckoutSession(ctx context.Context, checkoutSessionID string) (*models.PlayerSignup, error)
	MarkPaid(ctx context.Context, checkoutSessionID string, details PaymentDetails) (int64, error)
	ListBySession(ctx context.Context, groupSessionID int64, paidOnly bool) ([]models.PlayerSignup, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a signup repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateSignup(ctx context.Context, signup *models.PlayerSignup) error {
	return r.db.WithContext(ctx).Create(signup).Error
}

// AttachCheckoutSession records the Stripe identifiers known at
// checkout creation time. The payment intent is usually absent until
// the webhook fires, but Stripe sometimes includes it up front.
func (r *repositoryImpl) AttachCheckoutSession(ctx context.Context, signupID int64, checkoutSessionID, paymentIntentID string) error {
	fields := map[string]any{"stripe_checkout_session_id": checkoutSessionID}
	if paymentIntentID != "" {
		fields["stripe_payment_intent_id"] = paymentIntentID
	}
	return r.db.WithContext(ctx).
		Model(&models.PlayerSignup{}).
		Where("id = ?", signupID).
		UpdateColumns(fields).Error
}

func (r *repositoryImpl) FindByCheckoutSession(ctx context.Context, checkoutSessionID string) (*models.PlayerSignup, error) {
	var signup models.PlayerSignup
	err := r.db.WithContext(ctx).
		Where("stripe_checkout_session_id = ?", checkoutSessionID).
		First(&signup).Error
	if err != nil {
		return nil, err
	}
	return &signup, nil
}

// MarkPaid flips an unpaid signup exactly once. A zero rows-affected
// result means the signup was already paid or does not exist.
func (r *repositoryImpl) MarkPaid(ctx context.Context, checkoutSessionID string, details PaymentDetails) (int64, error) {
	fields := map[string]any{"has_paid": true}
	if details.PaymentIntentID != "" {
		fields["stripe_payment_intent_id"] = gorm.Expr("COALESCE(stripe_payment_intent_id, ?)", details.PaymentIntentID)
	}
	if details.ChargeID != "" {
		fields["stripe_charge_id"] = gorm.Expr("COALESCE(stripe_charge_id, ?)", details.ChargeID)
	}
	if details.ReceiptURL != "" {
		fields["stripe_receipt_url"] = gorm.Expr("COALESCE(stripe_receipt_url, ?)", details.ReceiptURL)
	}

	result := r.db.WithContext(ctx).
		Model(&models.PlayerSignup{}).
		Where("stripe_checkout_session_id = ? AND has_paid = ?", checkoutSessionID, false).
		Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) ListBySession(ctx context.Context, groupSessionID int64, paidOnly bool) ([]models.PlayerSignup, error) {
	query := r.db.WithContext(ctx).Where("group_session_id = ?", groupSessionID)
	if paidOnly {
		query = query.Where("has_paid = ?", true)
	}
	var signups []models.PlayerSignup
	if err := query.Order("created_at ASC").Find(&signups).Error; err != nil {
		return nil, err
	}
	return signups, nil
}
