package models

import (
	"time"

	"github.com/google/uuid"
)

// Player belongs to a parent account. Names are unique per parent,
// compared case-insensitively by the repository.
type Player struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ParentID      uuid.UUID  `gorm:"column:parent_id;type:uuid;not null;index"`
	Name          string     `gorm:"column:name;not null"`
	Age           int        `gorm:"column:age;not null"`
	Birthdate     *time.Time `gorm:"column:birthdate;type:date"`
	PreferredFoot *string    `gorm:"column:preferred_foot"`
	Team          *string    `gorm:"column:team"`
	Notes         *string    `gorm:"column:notes"`
	CRMPlayerID   *int64     `gorm:"column:crm_player_id;index"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
