package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GroupSession is a bookable training event with a capacity cap.
type GroupSession struct {
	ID             int64           `gorm:"primaryKey;autoIncrement"`
	Title          string          `gorm:"column:title;not null"`
	Description    *string         `gorm:"column:description"`
	SessionDate    time.Time       `gorm:"column:session_date;not null;index"`
	SessionDateEnd *time.Time      `gorm:"column:session_date_end"`
	Location       *string         `gorm:"column:location"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	MaxPlayers     int             `gorm:"column:max_players;not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
