package controllers

import (
	"net/http"
	"time"

	"github.com/davidfales/soccertraining-backend/api/middleware"
	"github.com/davidfales/soccertraining-backend/api/responses"
	"github.com/davidfales/soccertraining-backend/api/validators"
	blogsvc "github.com/davidfales/soccertraining-backend/internal/blog"
	"github.com/davidfales/soccertraining-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ListPosts serves the public blog index with engagement counts.
func ListPosts(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		posts, err := svc.ListPublished(r.Context(), limit, offset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, posts)
	}
}

// GetPostBySlug serves a single published post and counts the view.
func GetPostBySlug(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		incrementView := r.URL.Query().Get("count_view") != "false"

		post, err := svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"), incrementView)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, post)
	}
}

// ListPostComments serves the approved comments of a post.
func ListPostComments(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := validators.ParseUUIDParam(chi.URLParam(r, "postID"), "postID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		comments, err := svc.ListApprovedComments(r.Context(), postID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, comments)
	}
}

type createCommentRequest struct {
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
	Content     string `json:"content" validate:"required"`
}

// CreateComment accepts a visitor comment for moderation.
func CreateComment(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := validators.ParseUUIDParam(chi.URLParam(r, "postID"), "postID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createCommentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		comment, err := svc.SubmitComment(r.Context(), blogsvc.CommentInput{
			PostID:      postID,
			AuthorName:  payload.AuthorName,
			AuthorEmail: payload.AuthorEmail,
			Content:     payload.Content,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, comment)
	}
}

// ToggleLike flips the caller's like on a post, keyed by client address.
func ToggleLike(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := validators.ParseUUIDParam(chi.URLParam(r, "postID"), "postID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ToggleLike(r.Context(), postID, middleware.ClientIPFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetLikeStatus reports the like count and whether this caller liked.
func GetLikeStatus(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := validators.ParseUUIDParam(chi.URLParam(r, "postID"), "postID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.LikeStatus(r.Context(), postID, middleware.ClientIPFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminListPosts serves all posts, drafts included, newest first.
func AdminListPosts(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		posts, err := svc.ListAll(r.Context(), limit, offset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, posts)
	}
}

// AdminGetPost serves one post by id regardless of publication state.
func AdminGetPost(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(chi.URLParam(r, "postID"), "postID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		post, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, post)
	}
}

type createPostRequest struct {
	Title            string     `json:"title" validate:"required"`
	Slug             string     `json:"slug" validate:"required"`
	Excerpt          string     `json:"excerpt"`
	Content          string     `json:"content" validate:"required"`
	ContentHTML      string     `json:"content_html"`
	FeaturedImageURL string     `json:"featured_image_url"`
	AuthorName       string     `json:"author_name"`
	Published        bool       `json:"published"`
	PublishedAt      *time.Time `json:"published_at"`
	MetaTitle        string     `json:"meta_title"`
	MetaDescription  string     `json:"meta_description"`
}

// AdminCreatePost creates a post, draft or published.
func AdminCreatePost(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createPostRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		post, err := svc.Create(r.Context(), blogsvc.CreateInput{
			Title:            payload.Title,
			Slug:             payload.Slug,
			Excerpt:          payload.Excerpt,
			Content:          payload.Content,
			ContentHTML:      payload.ContentHTML,
			FeaturedImageURL: payload.FeaturedImageURL,
			AuthorName:       payload.AuthorName,
			Published:        payload.Published,
			PublishedAt:      payload.PublishedAt,
			MetaTitle:        payload.MetaTitle,
			MetaDescription:  payload.MetaDescription,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, post)
	}
}

type updatePostRequest struct {
	Title            *string    `json:"title"`
	Slug             *string    `json:"slug"`
	Excerpt          *string    `json:"excerpt"`
	Content          *string    `json:"content"`
	ContentHTML      *string    `json:"content_html"`
	FeaturedImageURL *string    `json:"featured_image_url"`
	AuthorName       *string    `json:"author_name"`
	Published        *bool      `json:"published"`
	PublishedAt      *time.Time `json:"published_at"`
	MetaTitle        *string    `json:"meta_title"`
	MetaDescription  *string    `json:"meta_description"`
}

// AdminUpdatePost applies a partial update to a post.
func AdminUpdatePost(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(chi.URLParam(r, "postID"), "postID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updatePostRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		post, err := svc.Update(r.Context(), id, blogsvc.UpdatePostPatch{
			Title:            payload.Title,
			Slug:             payload.Slug,
			Excerpt:          payload.Excerpt,
			Content:          payload.Content,
			ContentHTML:      payload.ContentHTML,
			FeaturedImageURL: payload.FeaturedImageURL,
			AuthorName:       payload.AuthorName,
			Published:        payload.Published,
			PublishedAt:      payload.PublishedAt,
			MetaTitle:        payload.MetaTitle,
			MetaDescription:  payload.MetaDescription,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, post)
	}
}

// AdminDeletePost removes a post.
func AdminDeletePost(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(chi.URLParam(r, "postID"), "postID")
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

// AdminCheckPostSlug reports whether a slug is free, optionally
// excluding the post being edited.
func AdminCheckPostSlug(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

// AdminListComments serves the moderation queue with post context.
func AdminListComments(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var postID *uuid.UUID
		if raw := r.URL.Query().Get("post_id"); raw != "" {
			parsed, err := validators.ParseUUIDParam(raw, "post_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			postID = &parsed
		}

		comments, err := svc.ListCommentsForAdmin(r.Context(), postID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, comments)
	}
}

// AdminApproveComment publishes a pending comment.
func AdminApproveComment(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(chi.URLParam(r, "commentID"), "commentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ApproveComment(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"approved": true})
	}
}

// AdminDeleteComment removes a comment.
func AdminDeleteComment(svc blogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(chi.URLParam(r, "commentID"), "commentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteComment(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": true})
	}
}
