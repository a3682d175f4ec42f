package adminauth

import (
	"context"
	"time"

	"github.com/davidfales/soccertraining-backend/pkg/config"
	pkgerrors "github.com/davidfales/soccertraining-backend/pkg/errors"
)

// Service gates the blog and gallery dashboards behind the shared
// security code.
type Service interface {
	Login(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, token string) error
	SessionTTL() time.Duration
}

type service struct {
	cfg config.AdminConfig
	now func() time.Time
}

// Params wires admin auth dependencies.
type Params struct {
	Config config.AdminConfig
	Now    func() time.Time
}

// NewService builds the admin auth service.
func NewService(params Params) (Service, error) {
	if params.Config.SecurityCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "admin security code required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{cfg: params.Config, now: now}, nil
}

func (s *service) Login(ctx context.Context, password string) (string, error) {
	if !CheckPassword(s.cfg.SecurityCode, password) {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid security code")
	}

	token, err := IssueToken(s.cfg.SecurityCode, s.now(), s.cfg.SessionTTL)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue admin token")
	}
	return token, nil
}

func (s *service) Verify(ctx context.Context, token string) error {
	if err := VerifyToken(s.cfg.SecurityCode, token, s.now()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid admin session")
	}
	return nil
}

func (s *service) SessionTTL() time.Duration {
	if s.cfg.SessionTTL <= 0 {
		return DefaultTTL
	}
	return s.cfg.SessionTTL
}
