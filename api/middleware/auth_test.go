package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	pkgAuth "github.com/davidfales/soccertraining-backend/pkg/auth"
	"github.com/davidfales/soccertraining-backend/pkg/config"
	"github.com/davidfales/soccertraining-backend/pkg/logger"
)

func portalTestJWT() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "middleware-test-secret",
		Issuer:            "soccertraining",
		ExpirationMinutes: 60,
	}
}

func TestPortalAuthRejectsMissingHeader(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	handler := PortalAuth(portalTestJWT(), logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/portal/me", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPortalAuthRejectsMalformedToken(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	handler := PortalAuth(portalTestJWT(), logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/portal/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPortalAuthSeedsClaimsIntoContext(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	cfg := portalTestJWT()
	parentID := uuid.New()

	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		ParentID: parentID,
		Email:    "parent@example.com",
	})
	require.NoError(t, err)

	var gotID uuid.UUID
	var gotEmail string
	handler := PortalAuth(cfg, logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = ParentIDFromContext(r.Context())
		gotEmail = ParentEmailFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/portal/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, parentID, gotID)
	require.Equal(t, "parent@example.com", gotEmail)
}
