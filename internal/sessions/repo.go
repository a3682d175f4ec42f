package sessions

import (
	"context"
	"time"

	"github.com/davidfales/soccertraining-backend/pkg/db/models"
	"gorm.io/gorm"
)

// SessionWithAvailability joins a group session with its paid signup
// count. SpotsLeft never goes below zero.
type SessionWithAvailability struct {
	models.GroupSession
	PaidSignups int `json:"paid_signups" gorm:"->"`
	SpotsLeft   int `json:"spots_left" gorm:"-"`
}

// Repository exposes persistence helpers for group sessions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListUpcoming(ctx context.Context, now time.Time, limit int) ([]SessionWithAvailability, error)
	GetByID(ctx context.Context, id int64) (*SessionWithAvailability, error)
	Create(ctx context.Context, session *models.GroupSession) error
	UpdateFields(ctx context.Context, id int64, fields map[string]any) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a sessions repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

const availabilitySelect = `
group_sessions.*,
COALESCE(ps.paid_signups, 0) AS paid_signups`

// spotsLeft clamps remaining capacity at zero.
func (s *SessionWithAvailability) computeSpotsLeft() {
	s.SpotsLeft = s.MaxPlayers - s.PaidSignups
	if s.SpotsLeft < 0 {
		s.SpotsLeft = 0
	}
}

func (r *repositoryImpl) withAvailability(ctx context.Context) *gorm.DB {
	paidCounts := r.db.WithContext(ctx).
		Model(&models.PlayerSignup{}).
		Select("group_session_id, COUNT(*) AS paid_signups").
		Where("has_paid = ?", true).
		Group("group_session_id")

	return r.db.WithContext(ctx).
		Model(&models.GroupSession{}).
		Select(availabilitySelect).
		Joins("LEFT JOIN (?) ps ON ps.group_session_id = group_sessions.id", paidCounts)
}

func (r *repositoryImpl) ListUpcoming(ctx context.Context, now time.Time, limit int) ([]SessionWithAvailability, error) {
	var rows []SessionWithAvailability
	err := r.withAvailability(ctx).
		Where("group_sessions.session_date >= ?", now).
		Order("group_sessions.session_date ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].computeSpotsLeft()
	}
	return rows, nil
}

func (r *repositoryImpl) GetByID(ctx context.Context, id int64) (*SessionWithAvailability, error) {
	var row SessionWithAvailability
	err := r.withAvailability(ctx).
		Where("group_sessions.id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	row.computeSpotsLeft()
	return &row, nil
}

func (r *repositoryImpl) Create(ctx context.Context, session *models.GroupSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *repositoryImpl) UpdateFields(ctx context.Context, id int64, fields map[string]any) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.GroupSession{}).
		Where("id = ?", id).
		Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.GroupSession{}, "id = ?", id)
	return result.RowsAffected, result.Error
}
