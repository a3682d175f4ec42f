package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/davidfales/soccertraining-backend/api/middleware"
	blogsvc "github.com/davidfales/soccertraining-backend/internal/blog"
	"github.com/davidfales/soccertraining-backend/pkg/db/models"
	"github.com/davidfales/soccertraining-backend/pkg/logger"
)

type stubBlogService struct {
	blogsvc.Service

	getBySlug     func(ctx context.Context, slug string, incrementView bool) (*blogsvc.PostWithCounts, error)
	submitComment func(ctx context.Context, input blogsvc.CommentInput) (*models.BlogComment, error)
	toggleLike    func(ctx context.Context, postID uuid.UUID, ipAddress string) (*blogsvc.LikeResult, error)
}

func (s *stubBlogService) GetBySlug(ctx context.Context, slug string, incrementView bool) (*blogsvc.PostWithCounts, error) {
	return s.getBySlug(ctx, slug, incrementView)
}

func (s *stubBlogService) SubmitComment(ctx context.Context, input blogsvc.CommentInput) (*models.BlogComment, error) {
	return s.submitComment(ctx, input)
}

func (s *stubBlogService) ToggleLike(ctx context.Context, postID uuid.UUID, ipAddress string) (*blogsvc.LikeResult, error) {
	return s.toggleLike(ctx, postID, ipAddress)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, routeCtx))
}

func TestGetPostBySlugCountsViewByDefault(t *testing.T) {
	var gotIncrement bool
	svc := &stubBlogService{
		getBySlug: func(ctx context.Context, slug string, incrementView bool) (*blogsvc.PostWithCounts, error) {
			gotIncrement = incrementView
			return &blogsvc.PostWithCounts{}, nil
		},
	}

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/blog/posts/first-touch", nil), "slug", "first-touch")
	rec := httptest.NewRecorder()
	GetPostBySlug(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, gotIncrement)
}

func TestGetPostBySlugSkipsViewWhenDisabled(t *testing.T) {
	var gotIncrement bool
	svc := &stubBlogService{
		getBySlug: func(ctx context.Context, slug string, incrementView bool) (*blogsvc.PostWithCounts, error) {
			gotIncrement = incrementView
			return &blogsvc.PostWithCounts{}, nil
		},
	}

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/blog/posts/first-touch?count_view=false", nil), "slug", "first-touch")
	rec := httptest.NewRecorder()
	GetPostBySlug(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, gotIncrement)
}

func TestCreateCommentForwardsPayload(t *testing.T) {
	postID := uuid.New()

	var got blogsvc.CommentInput
	svc := &stubBlogService{
		submitComment: func(ctx context.Context, input blogsvc.CommentInput) (*models.BlogComment, error) {
			got = input
			return &models.BlogComment{}, nil
		},
	}

	body := `{"author_name":"Sam","author_email":"sam@example.com","content":"Great drills"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/blog/comments/"+postID.String(), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withURLParam(req, "postID", postID.String())

	rec := httptest.NewRecorder()
	CreateComment(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, postID, got.PostID)
	require.Equal(t, "Sam", got.AuthorName)
	require.Equal(t, "Great drills", got.Content)
}

func TestCreateCommentRejectsBadPostID(t *testing.T) {
	svc := &stubBlogService{
		submitComment: func(ctx context.Context, input blogsvc.CommentInput) (*models.BlogComment, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/blog/comments/not-a-uuid", strings.NewReader(`{"content":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	req = withURLParam(req, "postID", "not-a-uuid")

	rec := httptest.NewRecorder()
	CreateComment(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToggleLikeUsesClientAddress(t *testing.T) {
	postID := uuid.New()

	var gotIP string
	svc := &stubBlogService{
		toggleLike: func(ctx context.Context, id uuid.UUID, ipAddress string) (*blogsvc.LikeResult, error) {
			gotIP = ipAddress
			return &blogsvc.LikeResult{Liked: true, Count: 1}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/blog/likes/"+postID.String(), nil)
	req = withURLParam(req, "postID", postID.String())
	req = req.WithContext(middleware.WithClientIP(req.Context(), "203.0.113.7"))

	rec := httptest.NewRecorder()
	ToggleLike(svc, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "203.0.113.7", gotIP)
	require.Contains(t, rec.Body.String(), `"liked":true`)
}
