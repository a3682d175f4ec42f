package models

import (
	"time"

	"github.com/google/uuid"
)

// BlogPost is an article. Drafts keep a NULL published_at; the first
// publish stamps it and unpublishing clears it again.
type BlogPost struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title            string     `gorm:"column:title;not null"`
	Slug             string     `gorm:"column:slug;not null;uniqueIndex"`
	Excerpt          *string    `gorm:"column:excerpt"`
	Content          *string    `gorm:"column:content"`
	ContentHTML      *string    `gorm:"column:content_html"`
	FeaturedImageURL *string    `gorm:"column:featured_image_url"`
	AuthorName       string     `gorm:"column:author_name;not null;default:'David Fales'"`
	Published        bool       `gorm:"column:published;not null;default:false"`
	PublishedAt      *time.Time `gorm:"column:published_at"`
	MetaTitle        *string    `gorm:"column:meta_title"`
	MetaDescription  *string    `gorm:"column:meta_description"`
	ViewCount        int        `gorm:"column:view_count;not null;default:0"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
