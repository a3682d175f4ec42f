package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/davidfales/soccertraining-backend/api/responses"
	pkgAuth "github.com/davidfales/soccertraining-backend/pkg/auth"
	"github.com/davidfales/soccertraining-backend/pkg/config"
	pkgerrors "github.com/davidfales/soccertraining-backend/pkg/errors"
	"github.com/davidfales/soccertraining-backend/pkg/logger"
)

// PortalAuth validates a parent bearer token and seeds the request
// context with the claims.
func PortalAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxParentID, claims.ParentID)
			ctx = context.WithValue(ctx, ctxParentEmail, claims.Email)

			if logg != nil {
				ctx = logg.WithParentID(ctx, claims.ParentID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
