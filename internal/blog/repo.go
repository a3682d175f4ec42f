package blog

import (
	"context"
	"time"

	"github.com/davidfales/soccertraining-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostListItem is the public list projection with engagement counts.
type PostListItem struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	Excerpt          *string    `json:"excerpt"`
	FeaturedImageURL *string    `json:"featured_image_url"`
	ViewCount        int        `json:"view_count"`
	PublishedAt      *time.Time `json:"published_at"`
	AuthorName       string     `json:"author_name"`
	CommentCount     int        `json:"comment_count"`
	LikeCount        int        `json:"like_count"`
}

// PostWithCounts is a full post plus engagement counts.
type PostWithCounts struct {
	models.BlogPost
	CommentCount int `json:"comment_count" gorm:"->"`
	LikeCount    int `json:"like_count" gorm:"->"`
}

// CommentWithPost joins a comment with its post's title and slug for the
// moderation dashboard.
type CommentWithPost struct {
	models.BlogComment
	PostTitle *string `json:"post_title" gorm:"->"`
	PostSlug  *string `json:"post_slug" gorm:"->"`
}

// UpdatePostPatch carries partial post updates. Nil fields keep their
// current values.
type UpdatePostPatch struct {
	Title            *string
	Slug             *string
	Excerpt          *string
	Content          *string
	ContentHTML      *string
	FeaturedImageURL *string
	AuthorName       *string
	Published        *bool
	PublishedAt      *time.Time
	MetaTitle        *string
	MetaDescription  *string
}

// Repository exposes persistence helpers for posts, comments and likes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	ListPublished(ctx context.Context, limit, offset int) ([]PostListItem, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*PostWithCounts, error)
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.BlogPost, error)
	CreatePost(ctx context.Context, post *models.BlogPost) error
	UpdatePost(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.BlogPost, error)
	DeletePost(ctx context.Context, id uuid.UUID) (int64, error)
	SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)

	ListCommentsByPost(ctx context.Context, postID uuid.UUID, approvedOnly bool) ([]models.BlogComment, error)
	ListCommentsWithPost(ctx context.Context, postID *uuid.UUID) ([]CommentWithPost, error)
	CreateComment(ctx context.Context, comment *models.BlogComment) error
	ApproveComment(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteComment(ctx context.Context, id uuid.UUID) (int64, error)

	LikeCount(ctx context.Context, postID uuid.UUID) (int, error)
	FindLike(ctx context.Context, postID uuid.UUID, ipAddress string) (*models.BlogLike, error)
	CreateLike(ctx context.Context, like *models.BlogLike) error
	DeleteLike(ctx context.Context, id uuid.UUID) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a blog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

const postCountsSelect = `
blog_posts.*,
(SELECT COUNT(*) FROM blog_comments WHERE blog_comments.post_id = blog_posts.id AND blog_comments.approved = true) AS comment_count,
(SELECT COUNT(*) FROM blog_likes WHERE blog_likes.post_id = blog_posts.id) AS like_count`

func (r *repositoryImpl) ListPublished(ctx context.Context, limit, offset int) ([]PostListItem, error) {
	var items []PostListItem
	err := r.db.WithContext(ctx).
		Model(&models.BlogPost{}).
		Select(`blog_posts.id, blog_posts.title, blog_posts.slug, blog_posts.excerpt,
blog_posts.featured_image_url, blog_posts.view_count, blog_posts.published_at, blog_posts.author_name,
(SELECT COUNT(*) FROM blog_comments WHERE blog_comments.post_id = blog_posts.id AND blog_comments.approved = true) AS comment_count,
(SELECT COUNT(*) FROM blog_likes WHERE blog_likes.post_id = blog_posts.id) AS like_count`).
		Where("blog_posts.published = ?", true).
		Order("blog_posts.published_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repositoryImpl) GetPublishedBySlug(ctx context.Context, slug string) (*PostWithCounts, error) {
	var post PostWithCounts
	err := r.db.WithContext(ctx).
		Model(&models.BlogPost{}).
		Select(postCountsSelect).
		Where("blog_posts.slug = ? AND blog_posts.published = ?", slug, true).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *repositoryImpl) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.BlogPost{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *repositoryImpl) ListAll(ctx context.Context, limit, offset int) ([]models.BlogPost, error) {
	var posts []models.BlogPost
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *repositoryImpl) CreatePost(ctx context.Context, post *models.BlogPost) error {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *repositoryImpl) UpdatePost(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.BlogPost, error) {
	if len(fields) > 0 {
		result := r.db.WithContext(ctx).
			Model(&models.BlogPost{}).
			Where("id = ?", id).
			Updates(fields)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.GetByID(ctx, id)
}

func (r *repositoryImpl) DeletePost(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.BlogPost{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.BlogPost{}).Where("slug = ?", slug)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repositoryImpl) ListCommentsByPost(ctx context.Context, postID uuid.UUID, approvedOnly bool) ([]models.BlogComment, error) {
	query := r.db.WithContext(ctx).Where("post_id = ?", postID)
	if approvedOnly {
		query = query.Where("approved = ?", true)
	}
	var comments []models.BlogComment
	if err := query.Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *repositoryImpl) ListCommentsWithPost(ctx context.Context, postID *uuid.UUID) ([]CommentWithPost, error) {
	query := r.db.WithContext(ctx).
		Model(&models.BlogComment{}).
		Select("blog_comments.*, blog_posts.title AS post_title, blog_posts.slug AS post_slug").
		Joins("LEFT JOIN blog_posts ON blog_posts.id = blog_comments.post_id")
	if postID != nil {
		query = query.Where("blog_comments.post_id = ?", *postID)
	}
	var comments []CommentWithPost
	if err := query.Order("blog_comments.created_at DESC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *repositoryImpl) CreateComment(ctx context.Context, comment *models.BlogComment) error {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *repositoryImpl) ApproveComment(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.BlogComment{}).
		Where("id = ?", id).
		UpdateColumn("approved", true)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) DeleteComment(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.BlogComment{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) LikeCount(ctx context.Context, postID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BlogLike{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *repositoryImpl) FindLike(ctx context.Context, postID uuid.UUID, ipAddress string) (*models.BlogLike, error) {
	var like models.BlogLike
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND ip_address = ?", postID, ipAddress).
		First(&like).Error
	if err != nil {
		return nil, err
	}
	return &like, nil
}

func (r *repositoryImpl) CreateLike(ctx context.Context, like *models.BlogLike) error {
	if like.ID == uuid.Nil {
		like.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *repositoryImpl) DeleteLike(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.BlogLike{}, "id = ?", id).Error
}
