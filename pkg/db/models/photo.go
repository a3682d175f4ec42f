package models

import (
	"time"

	"github.com/google/uuid"
)

// Photo is a gallery image. Public ordering is featured first, then
// display_order, then newest.
type Photo struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title           string     `gorm:"column:title;not null"`
	Slug            string     `gorm:"column:slug;not null;uniqueIndex"`
	Description     *string    `gorm:"column:description"`
	ImageURL        string     `gorm:"column:image_url;not null"`
	AltText         string     `gorm:"column:alt_text;not null"`
	MetaTitle       *string    `gorm:"column:meta_title"`
	MetaDescription *string    `gorm:"column:meta_description"`
	Keywords        *string    `gorm:"column:keywords"`
	PhotoDate       *time.Time `gorm:"column:photo_date;type:date"`
	Photographer    *string    `gorm:"column:photographer"`
	Location        *string    `gorm:"column:location"`
	Category        *string    `gorm:"column:category"`
	Width           *int       `gorm:"column:width"`
	Height          *int       `gorm:"column:height"`
	FileSize        *int       `gorm:"column:file_size"`
	Featured        bool       `gorm:"column:featured;not null;default:false"`
	Published       bool       `gorm:"column:published;not null;default:true"`
	DisplayOrder    int        `gorm:"column:display_order;not null;default:0"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
