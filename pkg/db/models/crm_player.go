package models

import "time"

// CRMPlayer is the coaching CRM record for a player, keyed to a CRM parent.
type CRMPlayer struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	CRMParentID int64      `gorm:"column:crm_parent_id;not null;index"`
	Name        string     `gorm:"column:name;not null"`
	Age         int        `gorm:"column:age;not null"`
	Birthday    *time.Time `gorm:"column:birthday;type:date"`
	Team        *string    `gorm:"column:team"`
	Notes       *string    `gorm:"column:notes"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (CRMPlayer) TableName() string { return "crm_players" }
