package models

import "time"

// PlayerSignup is one registration for a group session. Rows are created
// unpaid when checkout starts and flipped exactly once by the Stripe
// webhook after payment.
type PlayerSignup struct {
	ID                      int64      `gorm:"primaryKey;autoIncrement"`
	GroupSessionID          int64      `gorm:"column:group_session_id;not null;index"`
	FirstName               string     `gorm:"column:first_name;not null"`
	LastName                string     `gorm:"column:last_name;not null"`
	Age                     int        `gorm:"column:age;not null"`
	Birthday                *time.Time `gorm:"column:birthday;type:date"`
	PreferredFoot           *string    `gorm:"column:preferred_foot"`
	Team                    *string    `gorm:"column:team"`
	Notes                   *string    `gorm:"column:notes"`
	EmergencyContact        string     `gorm:"column:emergency_contact;not null"`
	ContactEmail            string     `gorm:"column:contact_email;not null"`
	ContactPhone            *string    `gorm:"column:contact_phone"`
	HasPaid                 bool       `gorm:"column:has_paid;not null;default:false"`
	StripeCheckoutSessionID *string    `gorm:"column:stripe_checkout_session_id;uniqueIndex"`
	StripePaymentIntentID   *string    `gorm:"column:stripe_payment_intent_id"`
	StripeChargeID          *string    `gorm:"column:stripe_charge_id"`
	StripeReceiptURL        *string    `gorm:"column:stripe_receipt_url"`
	CreatedAt               time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt               time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
