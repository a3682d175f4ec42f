package controllers

import (
	"net/http"
	"time"

	"github.com/davidfales/soccertraining-backend/api/responses"
	"github.com/davidfales/soccertraining-backend/api/validators"
	gallerysvc "github.com/davidfales/soccertraining-backend/internal/gallery"
	"github.com/davidfales/soccertraining-backend/pkg/config"
	pkgerrors "github.com/davidfales/soccertraining-backend/pkg/errors"
	"github.com/davidfales/soccertraining-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ListPhotos serves the public gallery, featured photos first.
func ListPhotos(svc gallerysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 100000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		photos, err := svc.ListPublished(r.Context(), limit, offset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, photos)
	}
}

// ListFeaturedPhotos serves the homepage strip.
func ListFeaturedPhotos(svc gallerysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		photos, err := svc.ListFeatured(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, photos)
	}
}

// GetPhotoBySlug serves a single published photo.
func GetPhotoBySlug(svc gallerysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		photo, err := svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, photo)
	}
}

// AdminListPhotos serves every photo, hidden ones included.
func AdminListPhotos(svc gallerysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 100000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		photos, err := svc.ListAll(r.Context(), limit, offset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, photos)
	}
}

// AdminGetPhoto serves one photo by id.
func AdminGetPhoto(svc gallerysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(chi.URLParam(r, "photoID"), "photoID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		photo, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, photo)
	}
}

type createPhotoRequest struct {
	Title           string     `json:"title" validate:"required"`
	Slug            string     `json:"slug" validate:"required"`
	Description     string     `json:"description"`
	ImageURL        string     `json:"image_url" validate:"required"`
	AltText         string     `json:"alt_text"`
	MetaTitle       string     `json:"meta_title"`
	MetaDescription string     `json:"meta_description"`
	Keywords        string     `json:"keywords"`
	PhotoDate       *time.Time `json:"photo_date"`
	Photographer    string     `json:"photographer"`
	Location        string     `json:"location"`
	Category        string     `json:"category"`
	Width           *int       `json:"width"`
	Height          *int       `json:"height"`
	FileSize        *int       `json:"file_size"`
	Featured        bool       `json:"featured"`
	Published       *bool      `json:"published"`
	DisplayOrder    int        `json:"display_order"`
}

// AdminCreatePhoto records a gallery photo.
func AdminCreatePhoto(svc gallerysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createPhotoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		photo, err := svc.Create(r.Context(), gallerysvc.CreateInput{
			Title:           payload.Title,
			Slug:            payload.Slug,
			Description:     payload.Description,
			ImageURL:        payload.ImageURL,
			AltText:         payload.AltText,
			MetaTitle:       payload.MetaTitle,
			MetaDescription: payload.MetaDescription,
			Keywords:        payload.Keywords,
			PhotoDate:       payload.PhotoDate,
			Photographer:    payload.Photographer,
			Location:        payload.Location,
			Category:        payload.Category,
			Width:           payload.Width,
			Height:          payload.Height,
			FileSize:        payload.FileSize,
			Featured:        payload.Featured,
			Published:       payload.Published,
			DisplayOrder:    payload.DisplayOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, photo)
	}
}

type updatePhotoRequest struct {
	Title           *string    `json:"title"`
	Slug            *string    `json:"slug"`
	Description     *string    `json:"description"`
	ImageURL        *string    `json:"image_url"`
	AltText         *string    `json:"alt_text"`
	MetaTitle       *string    `json:"meta_title"`
	MetaDescription *string    `json:"meta_description"`
	Keywords        *string    `json:"keywords"`
	PhotoDate       *time.Time `json:"photo_date"`
	Photographer    *string    `json:"photographer"`
	Location        *string    `json:"location"`
	Category        *string    `json:"category"`
	Width           *int       `json:"width"`
	Height          *int       `json:"height"`
	FileSize        *int       `json:"file_size"`
	Featured        *bool      `json:"featured"`
	Published       *bool      `json:"published"`
	DisplayOrder    *int       `json:"display_order"`
}

// AdminUpdatePhoto applies a partial update to a photo.
func AdminUpdatePhoto(svc gallerysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(chi.URLParam(r, "photoID"), "photoID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updatePhotoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		photo, err := svc.Update(r.Context(), id, gallerysvc.UpdatePhotoPatch{
			Title:           payload.Title,
			Slug:            payload.Slug,
			Description:     payload.Description,
			ImageURL:        payload.ImageURL,
			AltText:         payload.AltText,
			MetaTitle:       payload.MetaTitle,
			MetaDescription: payload.MetaDescription,
			Keywords:        payload.Keywords,
			PhotoDate:       payload.PhotoDate,
			Photographer:    payload.Photographer,
			Location:        payload.Location,
			Category:        payload.Category,
			Width:           payload.Width,
			Height:          payload.Height,
			FileSize:        payload.FileSize,
			Featured:        payload.Featured,
			Published:       payload.Published,
			DisplayOrder:    payload.DisplayOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, photo)
	}
}

// AdminDeletePhoto removes a photo and its stored image.
func AdminDeletePhoto(svc gallerysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(chi.URLParam(r, "photoID"), "photoID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": true})
	}
}

// AdminCheckPhotoSlug reports whether a photo slug is free.
func AdminCheckPhotoSlug(svc gallerysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		excludeID := uuid.Nil
		if raw := r.URL.Query().Get("exclude_id"); raw != "" {
			parsed, err := validators.ParseUUIDParam(raw, "exclude_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			excludeID = parsed
		}

		available, err := svc.SlugAvailable(r.Context(), r.URL.Query().Get("slug"), excludeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"available": available})
	}
}

// AdminUploadPhoto accepts a multipart image and stages it in object
// storage. The multipart field is named "file".
func AdminUploadPhoto(svc gallerysvc.Service, cfg config.GCSConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		maxBytes := int64(cfg.MaxUploadMB) * 1024 * 1024
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1024)

		if err := r.ParseMultipartForm(maxBytes); err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart upload"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "missing file field"))
			return
		}
		defer file.Close()

		result, err := svc.Upload(r.Context(), gallerysvc.UploadInput{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        file,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
