package gallery

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/davidfales/soccertraining-backend/pkg/config"
	"github.com/davidfales/soccertraining-backend/pkg/db/models"
	pkgerrors "github.com/davidfales/soccertraining-backend/pkg/errors"
	"github.com/davidfales/soccertraining-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type fakeUploader struct {
	bucket   string
	uploaded map[string]string
	deleted  []string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{bucket: "test-bucket", uploaded: map[string]string{}}
}

func (f *fakeUploader) Upload(_ context.Context, key, contentType string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.uploaded[key] = contentType + ":" + string(data)
	return f.ObjectURL(key), nil
}

func (f *fakeUploader) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeUploader) ObjectURL(key string) string {
	return "https://storage.googleapis.com/" + f.bucket + "/" + key
}

func setupGalleryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE photos (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  image_url TEXT NOT NULL,
  alt_text TEXT NOT NULL,
  meta_title TEXT,
  meta_description TEXT,
  keywords TEXT,
  photo_date DATETIME,
  photographer TEXT,
  location TEXT,
  category TEXT,
  width INTEGER,
  height INTEGER,
  file_size INTEGER,
  featured INTEGER NOT NULL DEFAULT 0,
  published INTEGER NOT NULL DEFAULT 1,
  display_order INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`).Error)
	return db
}

func newGalleryService(t *testing.T, db *gorm.DB, uploader *fakeUploader) Service {
	t.Helper()

	cfg := config.GCSConfig{MaxUploadMB: 20}
	if uploader != nil {
		cfg.BucketName = uploader.bucket
	}
	params := Params{
		Repo:   NewRepository(db),
		Config: cfg,
		Logger: logger.New(logger.Options{ServiceName: "gallery-test", Output: io.Discard}),
		Now:    func() time.Time { return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC) },
	}
	if uploader != nil {
		params.Uploader = uploader
	}
	svc, err := NewService(params)
	require.NoError(t, err)
	return svc
}

func seedPhoto(t *testing.T, db *gorm.DB, title, slug string, featured, published bool, displayOrder int, createdAt time.Time) *models.Photo {
	t.Helper()

	photo := &models.Photo{
		ID:           uuid.New(),
		Title:        title,
		Slug:         slug,
		ImageURL:     "https://example.com/" + slug + ".jpg",
		AltText:      title,
		Featured:     featured,
		Published:    published,
		DisplayOrder: displayOrder,
		CreatedAt:    createdAt,
	}
	require.NoError(t, db.Create(photo).Error)
	return photo
}

func TestListPublishedOrdering(t *testing.T) {
	db := setupGalleryTestDB(t)
	svc := newGalleryService(t, db, nil)
	ctx := context.Background()
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	seedPhoto(t, db, "Plain Old", "plain-old", false, true, 1, base)
	seedPhoto(t, db, "Plain New", "plain-new", false, true, 1, base.Add(24*time.Hour))
	seedPhoto(t, db, "Featured", "featured", true, true, 5, base)
	seedPhoto(t, db, "Hidden", "hidden", true, false, 0, base)
	seedPhoto(t, db, "Ordered First", "ordered-first", false, true, 0, base)

	photos, err := svc.ListPublished(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, photos, 4)
	require.Equal(t, "featured", photos[0].Slug)
	require.Equal(t, "ordered-first", photos[1].Slug)
	require.Equal(t, "plain-new", photos[2].Slug)
	require.Equal(t, "plain-old", photos[3].Slug)
}

func TestListFeaturedReturnsTopThree(t *testing.T) {
	db := setupGalleryTestDB(t)
	svc := newGalleryService(t, db, nil)
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	for i, slug := range []string{"one", "two", "three", "four", "five"} {
		seedPhoto(t, db, slug, slug, false, true, i, base)
	}

	photos, err := svc.ListFeatured(context.Background())
	require.NoError(t, err)
	require.Len(t, photos, FeaturedCount)
}

func TestGetBySlugHidesUnpublished(t *testing.T) {
	db := setupGalleryTestDB(t)
	svc := newGalleryService(t, db, nil)
	ctx := context.Background()

	seedPhoto(t, db, "Hidden", "hidden", false, false, 0, time.Now())
	visible := seedPhoto(t, db, "Visible", "visible", false, true, 0, time.Now())

	got, err := svc.GetBySlug(ctx, "visible")
	require.NoError(t, err)
	require.Equal(t, visible.ID, got.ID)

	_, err = svc.GetBySlug(ctx, "hidden")
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestCreateDefaultsAndSlugConflict(t *testing.T) {
	db := setupGalleryTestDB(t)
	svc := newGalleryService(t, db, nil)
	ctx := context.Background()

	photo, err := svc.Create(ctx, CreateInput{
		Title:    "Spring Tournament",
		Slug:     "spring-tournament",
		ImageURL: "https://example.com/spring.jpg",
	})
	require.NoError(t, err)
	require.True(t, photo.Published)
	require.Equal(t, "Spring Tournament", photo.AltText)

	_, err = svc.Create(ctx, CreateInput{
		Title:    "Duplicate",
		Slug:     "spring-tournament",
		ImageURL: "https://example.com/dup.jpg",
	})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeConflict, coded.Code())
}

func TestUpdateAppliesPartialPatch(t *testing.T) {
	db := setupGalleryTestDB(t)
	svc := newGalleryService(t, db, nil)
	ctx := context.Background()

	photo := seedPhoto(t, db, "Original", "original", false, true, 0, time.Now())

	title := "Renamed"
	featured := true
	updated, err := svc.Update(ctx, photo.ID, UpdatePhotoPatch{Title: &title, Featured: &featured})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Title)
	require.True(t, updated.Featured)
	require.Equal(t, "original", updated.Slug)
}

func TestDeleteRemovesStoredObject(t *testing.T) {
	db := setupGalleryTestDB(t)
	uploader := newFakeUploader()
	svc := newGalleryService(t, db, uploader)
	ctx := context.Background()

	photo := &models.Photo{
		ID:       uuid.New(),
		Title:    "Stored",
		Slug:     "stored",
		ImageURL: uploader.ObjectURL("photos/abc.jpg"),
		AltText:  "Stored",
	}
	require.NoError(t, db.Create(photo).Error)

	require.NoError(t, svc.Delete(ctx, photo.ID))
	require.Equal(t, []string{"photos/abc.jpg"}, uploader.deleted)

	_, err := svc.GetByID(ctx, photo.ID)
	require.Error(t, err)
}

func TestUploadValidatesAndStores(t *testing.T) {
	db := setupGalleryTestDB(t)
	uploader := newFakeUploader()
	svc := newGalleryService(t, db, uploader)
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadInput{
		Filename:    "notes.txt",
		ContentType: "text/plain",
		Size:        10,
		Body:        strings.NewReader("hello"),
	})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeValidation, coded.Code())

	_, err = svc.Upload(ctx, UploadInput{
		Filename:    "huge.jpg",
		ContentType: "image/jpeg",
		Size:        21 * 1024 * 1024,
		Body:        strings.NewReader("x"),
	})
	require.Error(t, err)

	result, err := svc.Upload(ctx, UploadInput{
		Filename:    "team.jpg",
		ContentType: "image/jpeg",
		Size:        5,
		Body:        strings.NewReader("bytes"),
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(result.Key, "photos/"))
	require.True(t, strings.HasSuffix(result.Key, ".jpg"))
	require.Contains(t, result.URL, uploader.bucket)
	require.Contains(t, uploader.uploaded, result.Key)
}
