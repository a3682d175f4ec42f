package portal

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/davidfales/soccertraining-backend/pkg/auth"
	"github.com/davidfales/soccertraining-backend/pkg/config"
	"github.com/davidfales/soccertraining-backend/pkg/db/models"
	pkgerrors "github.com/davidfales/soccertraining-backend/pkg/errors"
	"github.com/davidfales/soccertraining-backend/pkg/logger"
	"github.com/davidfales/soccertraining-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ParentProfile is the parent record without credential fields.
type ParentProfile struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        *string    `json:"name"`
	Phone       *string    `json:"phone"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// LoginResult carries the minted access token and its owner.
type LoginResult struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Parent    ParentProfile `json:"parent"`
}

// Overview is everything the portal home screen shows.
type Overview struct {
	Parent  ParentProfile   `json:"parent"`
	Players []models.Player `json:"players"`
	Signups []SignupSummary `json:"signups"`
}

// Service authenticates parents and serves their account overview.
type Service interface {
	Login(ctx context.Context, emailAddr, password string) (*LoginResult, error)
	Me(ctx context.Context, parentID uuid.UUID) (*Overview, error)
}

type service struct {
	repo Repository
	jwt  config.JWTConfig
	logg *logger.Logger
	now  func() time.Time
}

// Params wires portal dependencies.
type Params struct {
	Repo   Repository
	JWT    config.JWTConfig
	Logger *logger.Logger
	Now    func() time.Time
}

// NewService builds the parent portal service.
func NewService(params Params) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "portal repository required")
	}
	if params.JWT.Secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "jwt secret required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "portal logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, jwt: params.JWT, logg: params.Logger, now: now}, nil
}

var errInvalidCredentials = pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")

func (s *service) Login(ctx context.Context, emailAddr, password string) (*LoginResult, error) {
	emailAddr = strings.TrimSpace(emailAddr)
	if emailAddr == "" || password == "" {
		return nil, errInvalidCredentials
	}

	parent, err := s.repo.FindParentByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parent")
	}

	ok, err := security.VerifyPassword(password, parent.PasswordHash)
	if err != nil || !ok {
		return nil, errInvalidCredentials
	}

	now := s.now()
	token, err := auth.MintAccessToken(s.jwt, now, auth.AccessTokenPayload{
		ParentID: parent.ID,
		Email:    parent.Email,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mint access token")
	}

	if err := s.repo.TouchLastLogin(ctx, parent.ID, now); err != nil {
		s.logg.Error(ctx, "failed to record login time", err)
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: now.Add(time.Duration(s.jwt.ExpirationMinutes) * time.Minute),
		Parent:    profileOf(parent),
	}, nil
}

func (s *service) Me(ctx context.Context, parentID uuid.UUID) (*Overview, error) {
	if parentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated")
	}

	parent, err := s.repo.GetParent(ctx, parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parent")
	}

	players, err := s.repo.ListPlayers(ctx, parent.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list players")
	}
	signups, err := s.repo.ListSignupsByEmail(ctx, parent.Email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list signups")
	}

	return &Overview{
		Parent:  profileOf(parent),
		Players: players,
		Signups: signups,
	}, nil
}

func profileOf(parent *models.Parent) ParentProfile {
	return ParentProfile{
		ID:          parent.ID,
		Email:       parent.Email,
		Name:        parent.Name,
		Phone:       parent.Phone,
		LastLoginAt: parent.LastLoginAt,
		CreatedAt:   parent.CreatedAt,
	}
}
