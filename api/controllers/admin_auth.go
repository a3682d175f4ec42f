package controllers

import (
	"net/http"

	"github.com/davidfales/soccertraining-backend/api/middleware"
	"github.com/davidfales/soccertraining-backend/api/responses"
	"github.com/davidfales/soccertraining-backend/api/validators"
	"github.com/davidfales/soccertraining-backend/internal/adminauth"
	"github.com/davidfales/soccertraining-backend/pkg/config"
	"github.com/davidfales/soccertraining-backend/pkg/logger"
)

type adminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// AdminLogin exchanges the shared security code for a signed session
// token delivered in both dashboard cookies.
func AdminLogin(svc adminauth.Service, cfg config.AdminConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload adminLoginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := svc.Login(r.Context(), payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		maxAge := int(svc.SessionTTL().Seconds())
		for _, name := range []string{middleware.BlogAdminCookie, middleware.GalleryAdminCookie} {
			http.SetCookie(w, &http.Cookie{
				Name:     name,
				Value:    token,
				Path:     "/",
				MaxAge:   maxAge,
				HttpOnly: true,
				Secure:   cfg.CookieSecure,
				SameSite: http.SameSiteStrictMode,
			})
		}

		responses.WriteSuccess(w, map[string]any{"authenticated": true})
	}
}

// AdminVerify reports whether the current admin session is valid.
func AdminVerify(svc adminauth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := adminCookieToken(r)
		if token == "" {
			responses.WriteSuccess(w, map[string]any{"authenticated": false})
			return
		}
		if err := svc.Verify(r.Context(), token); err != nil {
			responses.WriteSuccess(w, map[string]any{"authenticated": false})
			return
		}
		responses.WriteSuccess(w, map[string]any{"authenticated": true})
	}
}

// AdminLogout clears both dashboard cookies.
func AdminLogout(cfg config.AdminConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, name := range []string{middleware.BlogAdminCookie, middleware.GalleryAdminCookie} {
			http.SetCookie(w, &http.Cookie{
				Name:     name,
				Value:    "",
				Path:     "/",
				MaxAge:   -1,
				HttpOnly: true,
				Secure:   cfg.CookieSecure,
				SameSite: http.SameSiteStrictMode,
			})
		}
		responses.WriteSuccess(w, map[string]any{"authenticated": false})
	}
}

func adminCookieToken(r *http.Request) string {
	for _, name := range []string{middleware.BlogAdminCookie, middleware.GalleryAdminCookie} {
		if cookie, err := r.Cookie(name); err == nil && cookie.Value != "" {
			return cookie.Value
		}
	}
	return ""
}
