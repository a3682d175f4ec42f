package blog

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/davidfales/soccertraining-backend/pkg/db/models"
	pkgerrors "github.com/davidfales/soccertraining-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100

	// DefaultAuthorName is stamped on posts created without an author.
	DefaultAuthorName = "David Fales"

	// DefaultCommenterName replaces a blank comment author.
	DefaultCommenterName = "Anonymous"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CreateInput carries a new post's fields.
type CreateInput struct {
	Title            string
	Slug             string
	Excerpt          string
	Content          string
	ContentHTML      string
	FeaturedImageURL string
	AuthorName       string
	Published        bool
	PublishedAt      *time.Time
	MetaTitle        string
	MetaDescription  string
}

// CommentInput carries a visitor comment submission.
type CommentInput struct {
	PostID      uuid.UUID
	AuthorName  string
	AuthorEmail string
	Content     string
}

// LikeResult reports the state after a like toggle.
type LikeResult struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}

// Service exposes the public blog reads plus the owner-facing
// publishing and moderation operations.
type Service interface {
	ListPublished(ctx context.Context, limit, offset int) ([]PostListItem, error)
	GetBySlug(ctx context.Context, slug string, incrementView bool) (*PostWithCounts, error)

	GetByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.BlogPost, error)
	Create(ctx context.Context, input CreateInput) (*models.BlogPost, error)
	Update(ctx context.Context, id uuid.UUID, patch UpdatePostPatch) (*models.BlogPost, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SlugAvailable(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)

	ListApprovedComments(ctx context.Context, postID uuid.UUID) ([]models.BlogComment, error)
	ListCommentsForAdmin(ctx context.Context, postID *uuid.UUID) ([]CommentWithPost, error)
	SubmitComment(ctx context.Context, input CommentInput) (*models.BlogComment, error)
	ApproveComment(ctx context.Context, id uuid.UUID) error
	DeleteComment(ctx context.Context, id uuid.UUID) error

	ToggleLike(ctx context.Context, postID uuid.UUID, ipAddress string) (*LikeResult, error)
	LikeStatus(ctx context.Context, postID uuid.UUID, ipAddress string) (*LikeResult, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// Params wires blog dependencies.
type Params struct {
	Repo Repository
	Now  func() time.Time
}

// NewService builds the blog service.
func NewService(params Params) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "blog repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, now: now}, nil
}

func (s *service) ListPublished(ctx context.Context, limit, offset int) ([]PostListItem, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	items, err := s.repo.ListPublished(ctx, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list published posts")
	}
	return items, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string, incrementView bool) (*PostWithCounts, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}

	post, err := s.repo.GetPublishedBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load post")
	}

	if incrementView {
		if err := s.repo.IncrementViewCount(ctx, post.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record post view")
		}
		post.ViewCount++
	}
	return post, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid post id")
	}

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load post")
	}
	return post, nil
}

func (s *service) ListAll(ctx context.Context, limit, offset int) ([]models.BlogPost, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	posts, err := s.repo.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list posts")
	}
	return posts, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.BlogPost, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Slug = strings.TrimSpace(input.Slug)
	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.Slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content is required")
	}

	taken, err := s.repo.SlugExists(ctx, input.Slug, uuid.Nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a post with this slug already exists")
	}

	author := strings.TrimSpace(input.AuthorName)
	if author == "" {
		author = DefaultAuthorName
	}

	post := &models.BlogPost{
		Title:      input.Title,
		Slug:       input.Slug,
		AuthorName: author,
		Published:  input.Published,
	}
	post.Content = nilIfEmpty(input.Content)
	post.Excerpt = nilIfEmpty(input.Excerpt)
	post.ContentHTML = nilIfEmpty(input.ContentHTML)
	post.FeaturedImageURL = nilIfEmpty(input.FeaturedImageURL)
	post.MetaTitle = nilIfEmpty(input.MetaTitle)
	post.MetaDescription = nilIfEmpty(input.MetaDescription)

	if input.Published {
		publishedAt := s.now()
		if input.PublishedAt != nil {
			publishedAt = *input.PublishedAt
		}
		post.PublishedAt = &publishedAt
	}

	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create post")
	}
	return post, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, patch UpdatePostPatch) (*models.BlogPost, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid post id")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
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
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a post with this slug already exists")
		}
		fields["slug"] = slug
	}
	if patch.Excerpt != nil {
		fields["excerpt"] = *patch.Excerpt
	}
	if patch.Content != nil {
		fields["content"] = *patch.Content
	}
	if patch.ContentHTML != nil {
		fields["content_html"] = *patch.ContentHTML
	}
	if patch.FeaturedImageURL != nil {
		fields["featured_image_url"] = *patch.FeaturedImageURL
	}
	if patch.AuthorName != nil {
		fields["author_name"] = *patch.AuthorName
	}
	if patch.MetaTitle != nil {
		fields["meta_title"] = *patch.MetaTitle
	}
	if patch.MetaDescription != nil {
		fields["meta_description"] = *patch.MetaDescription
	}

	// Unpublishing clears the timestamp. Publishing keeps an existing
	// timestamp unless one is supplied, and stamps now on first publish.
	if patch.Published != nil {
		fields["published"] = *patch.Published
		switch {
		case !*patch.Published:
			fields["published_at"] = nil
		case patch.PublishedAt != nil:
			fields["published_at"] = *patch.PublishedAt
		case existing.PublishedAt == nil:
			fields["published_at"] = s.now()
		}
	} else if patch.PublishedAt != nil {
		fields["published_at"] = *patch.PublishedAt
	}

	if len(fields) == 0 {
		return existing, nil
	}

	updated, err := s.repo.UpdatePost(ctx, id, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update post")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid post id")
	}

	affected, err := s.repo.DeletePost(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete post")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
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

func (s *service) ListApprovedComments(ctx context.Context, postID uuid.UUID) ([]models.BlogComment, error) {
	if postID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid post id")
	}

	comments, err := s.repo.ListCommentsByPost(ctx, postID, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list comments")
	}
	return comments, nil
}

func (s *service) ListCommentsForAdmin(ctx context.Context, postID *uuid.UUID) ([]CommentWithPost, error) {
	comments, err := s.repo.ListCommentsWithPost(ctx, postID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list comments")
	}
	return comments, nil
}

// SubmitComment stores a visitor comment awaiting moderation.
func (s *service) SubmitComment(ctx context.Context, input CommentInput) (*models.BlogComment, error) {
	if input.PostID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid post id")
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment content is required")
	}
	email := strings.TrimSpace(input.AuthorEmail)
	if email != "" && !emailPattern.MatchString(email) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email address")
	}

	if _, err := s.repo.GetByID(ctx, input.PostID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load post")
	}

	author := strings.TrimSpace(input.AuthorName)
	if author == "" {
		author = DefaultCommenterName
	}

	comment := &models.BlogComment{
		PostID:     input.PostID,
		AuthorName: author,
		Content:    content,
		Approved:   false,
	}
	if email != "" {
		comment.AuthorEmail = &email
	}

	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create comment")
	}
	return comment, nil
}

func (s *service) ApproveComment(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid comment id")
	}

	affected, err := s.repo.ApproveComment(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve comment")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "comment not found")
	}
	return nil
}

func (s *service) DeleteComment(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid comment id")
	}

	affected, err := s.repo.DeleteComment(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete comment")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "comment not found")
	}
	return nil
}

// ToggleLike removes an existing like from this address or records a new one.
func (s *service) ToggleLike(ctx context.Context, postID uuid.UUID, ipAddress string) (*LikeResult, error) {
	if postID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid post id")
	}
	ipAddress = strings.TrimSpace(ipAddress)
	if ipAddress == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client address is required")
	}

	liked := false
	existing, err := s.repo.FindLike(ctx, postID, ipAddress)
	switch {
	case err == nil:
		if err := s.repo.DeleteLike(ctx, existing.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove like")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		like := &models.BlogLike{PostID: postID, IPAddress: ipAddress}
		if err := s.repo.CreateLike(ctx, like); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record like")
		}
		liked = true
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load like")
	}

	count, err := s.repo.LikeCount(ctx, postID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count likes")
	}
	return &LikeResult{Liked: liked, Count: count}, nil
}

func (s *service) LikeStatus(ctx context.Context, postID uuid.UUID, ipAddress string) (*LikeResult, error) {
	if postID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid post id")
	}

	liked := false
	if ipAddress != "" {
		_, err := s.repo.FindLike(ctx, postID, ipAddress)
		switch {
		case err == nil:
			liked = true
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load like")
		}
	}

	count, err := s.repo.LikeCount(ctx, postID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count likes")
	}
	return &LikeResult{Liked: liked, Count: count}, nil
}

func nilIfEmpty(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
