package gallery

import (
	"context"

	"github.com/davidfales/soccertraining-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const publicOrder = "featured DESC, display_order ASC, created_at DESC"

// Repository exposes persistence helpers for gallery photos.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	ListPublished(ctx context.Context, limit, offset int) ([]models.Photo, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*models.Photo, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Photo, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.Photo, error)
	Create(ctx context.Context, photo *models.Photo) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a gallery repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) ListPublished(ctx context.Context, limit, offset int) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.db.WithContext(ctx).
		Where("published = ?", true).
		Order(publicOrder).
		Limit(limit).
		Offset(offset).
		Find(&photos).Error
	if err != nil {
		return nil, err
	}
	return photos, nil
}

func (r *repositoryImpl) GetPublishedBySlug(ctx context.Context, slug string) (*models.Photo, error) {
	var photo models.Photo
	err := r.db.WithContext(ctx).
		Where("slug = ? AND published = ?", slug, true).
		First(&photo).Error
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	var photo models.Photo
	if err := r.db.WithContext(ctx).First(&photo, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &photo, nil
}

func (r *repositoryImpl) ListAll(ctx context.Context, limit, offset int) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&photos).Error
	if err != nil {
		return nil, err
	}
	return photos, nil
}

func (r *repositoryImpl) Create(ctx context.Context, photo *models.Photo) error {
	if photo.ID == uuid.Nil {
		photo.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(photo).Error
}

func (r *repositoryImpl) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Photo{}).
		Where("id = ?", id).
		Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Photo{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Photo{}).Where("slug = ?", slug)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
