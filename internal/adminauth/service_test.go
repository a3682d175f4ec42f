package adminauth

import (
	"context"
	"testing"
	"time"

	"github.com/davidfales/soccertraining-backend/pkg/config"
	pkgerrors "github.com/davidfales/soccertraining-backend/pkg/errors"
)

func newTestService(t *testing.T, now time.Time) Service {
	t.Helper()
	svc, err := NewService(Params{
		Config: config.AdminConfig{SecurityCode: "letmein", SessionTTL: 24 * time.Hour},
		Now:    func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestServiceLoginAndVerify(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)

	token, err := svc.Login(ctx, "letmein")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	if err := svc.Verify(ctx, token); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestServiceLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, time.Now())

	_, err := svc.Login(ctx, "wrong")
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceVerifyGarbage(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, time.Now())

	if err := svc.Verify(ctx, "not-a-token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestNewServiceRequiresSecret(t *testing.T) {
	if _, err := NewService(Params{}); err == nil {
		t.Fatal("expected dependency error without security code")
	}
}
