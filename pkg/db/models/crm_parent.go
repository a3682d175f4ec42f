package models

import "time"

// CRMParent is the coaching CRM record that mirrors a portal parent.
// CRM rows survive portal account churn, so they keep their own ids.
type CRMParent struct {
	ID             int64      `gorm:"primaryKey;autoIncrement"`
	Name           string     `gorm:"column:name;not null"`
	Email          *string    `gorm:"column:email;index"`
	Phone          *string    `gorm:"column:phone;index"`
	Notes          *string    `gorm:"column:notes"`
	IsDead         bool       `gorm:"column:is_dead;not null;default:false"`
	LastActivityAt *time.Time `gorm:"column:last_activity_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (CRMParent) TableName() string { return "crm_parents" }
