package models

import (
	"time"

	"github.com/google/uuid"
)

// BlogLike records one like per client address per post.
type BlogLike struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PostID    uuid.UUID `gorm:"column:post_id;type:uuid;not null;index:idx_blog_likes_post_ip,unique"`
	IPAddress string    `gorm:"column:ip_address;not null;index:idx_blog_likes_post_ip,unique"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
