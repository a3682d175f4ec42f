package portal

import (
	"context"
	"strings"
	"time"

	"github.com/davidfales/soccertraining-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SignupSummary is one booking row in the portal, joined with its
// session's schedule.
type SignupSummary struct {
	models.PlayerSignup
	SessionTitle    string     `json:"session_title" gorm:"->"`
	SessionDate     time.Time  `json:"session_date" gorm:"->"`
	SessionDateEnd  *time.Time `json:"session_date_end" gorm:"->"`
	SessionLocation *string    `json:"session_location" gorm:"->"`
}

// Repository exposes the parent-facing account reads.
type Repository interface {
	FindParentByEmail(ctx context.Context, emailAddr string) (*models.Parent, error)
	GetParent(ctx context.Context, id uuid.UUID) (*models.Parent, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	ListPlayers(ctx context.Context, parentID uuid.UUID) ([]models.Player, error)
	ListSignupsByEmail(ctx context.Context, emailAddr string) ([]SignupSummary, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a portal repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) FindParentByEmail(ctx context.Context, emailAddr string) (*models.Parent, error) {
	var parent models.Parent
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(emailAddr))).
		First(&parent).Error
	if err != nil {
		return nil, err
	}
	return &parent, nil
}

func (r *repositoryImpl) GetParent(ctx context.Context, id uuid.UUID) (*models.Parent, error) {
	var parent models.Parent
	if err := r.db.WithContext(ctx).First(&parent, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &parent, nil
}

func (r *repositoryImpl) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Parent{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

func (r *repositoryImpl) ListPlayers(ctx context.Context, parentID uuid.UUID) ([]models.Player, error) {
	var players []models.Player
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("name ASC").
		Find(&players).Error
	if err != nil {
		return nil, err
	}
	return players, nil
}

// ListSignupsByEmail returns the bookings made with this contact
// address, newest session first.
func (r *repositoryImpl) ListSignupsByEmail(ctx context.Context, emailAddr string) ([]SignupSummary, error) {
	var signups []SignupSummary
	err := r.db.WithContext(ctx).
		Model(&models.PlayerSignup{}).
		Select(`player_signups.*,
group_sessions.title AS session_title,
group_sessions.session_date AS session_date,
group_sessions.session_date_end AS session_date_end,
group_sessions.location AS session_location`).
		Joins("JOIN group_sessions ON group_sessions.id = player_signups.group_session_id").
		Where("LOWER(player_signups.contact_email) = ?", strings.ToLower(strings.TrimSpace(emailAddr))).
		Order("group_sessions.session_date DESC").
		Find(&signups).Error
	if err != nil {
		return nil, err
	}
	return signups, nil
}
