package models

import (
	"time"

	"github.com/google/uuid"
)

// Parent is a portal account holder. One parent can own several players.
type Parent struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string     `gorm:"type:text;not null;uniqueIndex"`
	Name         *string    `gorm:"column:name"`
	Phone        *string    `gorm:"column:phone;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	CRMParentID  *int64     `gorm:"column:crm_parent_id;index"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
