package middleware

import (
	"net/http"

	"github.com/davidfales/soccertraining-backend/api/responses"
	"github.com/davidfales/soccertraining-backend/internal/adminauth"
	pkgerrors "github.com/davidfales/soccertraining-backend/pkg/errors"
	"github.com/davidfales/soccertraining-backend/pkg/logger"
)

// Admin session cookie names. The blog and gallery dashboards were
// shipped separately and each set their own cookie; both carry the
// same signed token and either one grants access.
const (
	BlogAdminCookie    = "blogAdminSession"
	GalleryAdminCookie = "galleryAdminSession"
)

// AdminAuth gates owner-only routes behind a valid admin session cookie.
func AdminAuth(svc adminauth.Service, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := adminToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin session required"))
				return
			}

			if err := svc.Verify(r.Context(), token); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func adminToken(r *http.Request) string {
	for _, name := range []string{BlogAdminCookie, GalleryAdminCookie} {
		if cookie, err := r.Cookie(name); err == nil && cookie.Value != "" {
			return cookie.Value
		}
	}
	return ""
}
