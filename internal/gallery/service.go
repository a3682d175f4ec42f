package gallery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/davidfales/soccertraining-backend/pkg/config"
	"github.com/davidfales/soccertraining-backend/pkg/db/models"
	pkgerrors "github.com/davidfales/soccertraining-backend/pkg/errors"
	"github.com/davidfales/soccertraining-backend/pkg/logger"
	"github.com/davidfales/soccertraining-backend/pkg/storage/gcs"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100

	// FeaturedCount is how many photos the homepage strip shows.
	FeaturedCount = 3
)

// CreateInput carries a new photo's fields.
type CreateInput struct {
	Title           string
	Slug            string
	Description     string
	ImageURL        string
	AltText         string
	MetaTitle       string
	MetaDescription string
	Keywords        string
	PhotoDate       *time.Time
	Photographer    string
	Location        string
	Category        string
	Width           *int
	Height          *int
	FileSize        *int
	Featured        bool
	Published       *bool
	DisplayOrder    int
}

// UpdatePhotoPatch carries partial photo updates. Nil fields keep their
// current values.
type UpdatePhotoPatch struct {
	Title           *string
	Slug            *string
	Description     *string
	ImageURL        *string
	AltText         *string
	MetaTitle       *string
	MetaDescription *string
	Keywords        *string
	PhotoDate       *time.Time
	Photographer    *string
	Location        *string
	Category        *string
	Width           *int
	Height          *int
	FileSize        *int
	Featured        *bool
	Published       *bool
	DisplayOrder    *int
}

// UploadInput carries a raw image upload.
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult reports where an uploaded image landed.
type UploadResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Service exposes the public gallery reads plus the owner-facing
// management and upload operations.
type Service interface {
	ListPublished(ctx context.Context, limit, offset int) ([]models.Photo, error)
	ListFeatured(ctx context.Context) ([]models.Photo, error)
	GetBySlug(ctx context.Context, slug string) (*models.Photo, error)

	GetByID(ctx context.Context, id uuid.UUID) (*models.Photo, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.Photo, error)
	Create(ctx context.Context, input CreateInput) (*models.Photo, error)
	Update(ctx context.Context, id uuid.UUID, patch UpdatePhotoPatch) (*models.Photo, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SlugAvailable(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
}

type service struct {
	repo     Repository
	uploader gcs.Uploader
	cfg      config.GCSConfig
	logg     *logger.Logger
	now      func() time.Time
}

// Params wires gallery dependencies. Uploader may be nil when object
// storage is not configured; uploads then fail with a dependency error.
type Params struct {
	Repo     Repository
	Uploader gcs.Uploader
	Config   config.GCSConfig
	Logger   *logger.Logger
	Now      func() time.Time
}

// NewService builds the gallery service.
func NewService(params Params) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gallery repository required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gallery logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		uploader: params.Uploader,
		cfg:      params.Config,
		logg:     params.Logger,
		now:      now,
	}, nil
}

func (s *service) ListPublished(ctx context.Context, limit, offset int) ([]models.Photo, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	photos, err := s.repo.ListPublished(ctx, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list published photos")
	}
	return photos, nil
}

func (s *service) ListFeatured(ctx context.Context) ([]models.Photo, error) {
	photos, err := s.repo.ListPublished(ctx, FeaturedCount, 0)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list featured photos")
	}
	return photos, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Photo, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}

	photo, err := s.repo.GetPublishedBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "photo not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load photo")
	}
	return photo, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid photo id")
	}

	photo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "photo not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load photo")
	}
	return photo, nil
}

func (s *service) ListAll(ctx context.Context, limit, offset int) ([]models.Photo, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	photos, err := s.repo.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list photos")
	}
	return photos, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Photo, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Slug = strings.TrimSpace(input.Slug)
	input.ImageURL = strings.TrimSpace(input.ImageURL)
	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.Slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	if input.ImageURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image url is required")
	}

	taken, err := s.repo.SlugExists(ctx, input.Slug, uuid.Nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a photo with this slug already exists")
	}

	published := true
	if input.Published != nil {
		published = *input.Published
	}
	altText := strings.TrimSpace(input.AltText)
	if altText == "" {
		altText = input.Title
	}

	photo := &models.Photo{
		Title:        input.Title,
		Slug:         input.Slug,
		ImageURL:     input.ImageURL,
		AltText:      altText,
		PhotoDate:    input.PhotoDate,
		Width:        input.Width,
		Height:       input.Height,
		FileSize:     input.FileSize,
		Featured:     input.Featured,
		Published:    published,
		DisplayOrder: input.DisplayOrder,
	}
	photo.Description = nilIfEmpty(input.Description)
	photo.MetaTitle = nilIfEmpty(input.MetaTitle)
	photo.MetaDescription = nilIfEmpty(input.MetaDescription)
	photo.Keywords = nilIfEmpty(input.Keywords)
	photo.Photographer = nilIfEmpty(input.Photographer)
	photo.Location = nilIfEmpty(input.Location)
	photo.Category = nilIfEmpty(input.Category)

	if err := s.repo.Create(ctx, photo); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create photo")
	}
	return photo, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, patch UpdatePhotoPatch) (*models.Photo, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid photo id")
	}

	fields := map[string]any{}
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		fields["title"] = strings.TrimSpace(*patch.Title)
	}
	if patch.Slug != nil {
		slug := strings.TrimSpace(*patch.Slug)
		if slug == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug cannot be empty")
		}
		taken, err := s.repo.SlugExists(ctx, slug, id)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
		}
		if taken {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a photo with this slug already exists")
		}
		fields["slug"] = slug
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.ImageURL != nil {
		fields["image_url"] = *patch.ImageURL
	}
	if patch.AltText != nil {
		fields["alt_text"] = *patch.AltText
	}
	if patch.MetaTitle != nil {
		fields["meta_title"] = *patch.MetaTitle
	}
	if patch.MetaDescription != nil {
		fields["meta_description"] = *patch.MetaDescription
	}
	if patch.Keywords != nil {
		fields["keywords"] = *patch.Keywords
	}
	if patch.PhotoDate != nil {
		fields["photo_date"] = *patch.PhotoDate
	}
	if patch.Photographer != nil {
		fields["photographer"] = *patch.Photographer
	}
	if patch.Location != nil {
		fields["location"] = *patch.Location
	}
	if patch.Category != nil {
		fields["category"] = *patch.Category
	}
	if patch.Width != nil {
		fields["width"] = *patch.Width
	}
	if patch.Height != nil {
		fields["height"] = *patch.Height
	}
	if patch.FileSize != nil {
		fields["file_size"] = *patch.FileSize
	}
	if patch.Featured != nil {
		fields["featured"] = *patch.Featured
	}
	if patch.Published != nil {
		fields["published"] = *patch.Published
	}
	if patch.DisplayOrder != nil {
		fields["display_order"] = *patch.DisplayOrder
	}

	if len(fields) == 0 {
		return s.GetByID(ctx, id)
	}

	affected, err := s.repo.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update photo")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "photo not found")
	}
	return s.GetByID(ctx, id)
}

// Delete removes the photo row, then best-effort deletes the stored
// object when the image lives in our bucket.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid photo id")
	}

	photo, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete photo")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "photo not found")
	}

	if s.uploader != nil {
		if key, ok := s.objectKey(photo.ImageURL); ok {
			if err := s.uploader.Delete(ctx, key); err != nil {
				s.logg.Error(s.logg.WithField(ctx, "key", key), "failed to delete stored image", err)
			}
		}
	}
	return nil
}

func (s *service) SlugAvailable(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}

	taken, err := s.repo.SlugExists(ctx, slug, excludeID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
	}
	return !taken, nil
}

// Upload stores an image in object storage under a generated key.
func (s *service) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if s.uploader == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "object storage is not configured")
	}
	if input.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file body is required")
	}
	if !strings.HasPrefix(input.ContentType, "image/") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only image uploads are allowed")
	}
	maxBytes := int64(s.cfg.MaxUploadMB) * 1024 * 1024
	if maxBytes > 0 && input.Size > maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("file exceeds the %dMB upload limit", s.cfg.MaxUploadMB))
	}

	ext := strings.ToLower(path.Ext(input.Filename))
	if ext == "" {
		ext = extensionFor(input.ContentType)
	}
	key := fmt.Sprintf("photos/%d-%s%s", s.now().UnixMilli(), uuid.NewString()[:8], ext)

	body := input.Body
	if maxBytes > 0 {
		body = io.LimitReader(body, maxBytes+1)
	}
	url, err := s.uploader.Upload(ctx, key, input.ContentType, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload image")
	}
	return &UploadResult{Key: key, URL: url}, nil
}

// objectKey extracts the storage key when the URL points at our bucket.
func (s *service) objectKey(imageURL string) (string, bool) {
	if s.cfg.BucketName == "" {
		return "", false
	}
	prefix := "https://storage.googleapis.com/" + s.cfg.BucketName + "/"
	if !strings.HasPrefix(imageURL, prefix) {
		return "", false
	}
	return strings.TrimPrefix(imageURL, prefix), true
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

func nilIfEmpty(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
