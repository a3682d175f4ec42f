package models

import (
	"time"

	"github.com/google/uuid"
)

// BlogComment is a reader comment. New comments sit unapproved until the
// site owner moderates them.
type BlogComment struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PostID      uuid.UUID `gorm:"column:post_id;type:uuid;not null;index"`
	AuthorName  string    `gorm:"column:author_name;not null;default:'Anonymous'"`
	AuthorEmail *string   `gorm:"column:author_email"`
	Content     string    `gorm:"column:content;not null"`
	Approved    bool      `gorm:"column:approved;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
