package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/davidfales/soccertraining-backend/pkg/db/models"
	pkgerrors "github.com/davidfales/soccertraining-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100

	// DefaultDuration is assumed when a session has no explicit end time.
	DefaultDuration = 75 * time.Minute
)

// Service exposes group session reads plus the owner-facing CRUD.
type Service interface {
	ListUpcoming(ctx context.Context, limit int) ([]SessionWithAvailability, error)
	GetByID(ctx context.Context, id int64) (*SessionWithAvailability, error)
	Create(ctx context.Context, input CreateInput) (*SessionWithAvailability, error)
	Update(ctx context.Context, id int64, fields map[string]any) (*SessionWithAvailability, error)
	Delete(ctx context.Context, id int64) error
}

// CreateInput carries a new session's fields.
type CreateInput struct {
	Title          string
	Description    string
	SessionDate    time.Time
	SessionDateEnd *time.Time
	Location       string
	Price          decimal.Decimal
	MaxPlayers     int
}

type service struct {
	repo Repository
	now  func() time.Time
}

// Params wires session dependencies.
type Params struct {
	Repo Repository
	Now  func() time.Time
}

// NewService builds the group sessions service.
func NewService(params Params) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sessions repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, now: now}, nil
}

func (s *service) ListUpcoming(ctx context.Context, limit int) ([]SessionWithAvailability, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := s.repo.ListUpcoming(ctx, s.now(), limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list upcoming sessions")
	}
	return rows, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*SessionWithAvailability, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid session id")
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "session not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
	}
	return row, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*SessionWithAvailability, error) {
	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.SessionDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session date is required")
	}
	if input.MaxPlayers <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max players must be positive")
	}

	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	session := &models.GroupSession{
		Title:          input.Title,
		SessionDate:    input.SessionDate,
		SessionDateEnd: input.SessionDateEnd,
		Price:          input.Price,
		MaxPlayers:     input.MaxPlayers,
	}
	if input.Description != "" {
		session.Description = &input.Description
	}
	if input.Location != "" {
		session.Location = &input.Location
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}
	return s.GetByID(ctx, session.ID)
}

func (s *service) Update(ctx context.Context, id int64, fields map[string]any) (*SessionWithAvailability, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid session id")
	}
	if len(fields) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	affected, err := s.repo.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update session")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "session not found")
	}
	return s.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid session id")
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete session")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "session not found")
	}
	return nil
}

// EndTime resolves a session's end, falling back to the default duration.
func EndTime(session *models.GroupSession) time.Time {
	if session.SessionDateEnd != nil {
		return *session.SessionDateEnd
	}
	return session.SessionDate.Add(DefaultDuration)
}
