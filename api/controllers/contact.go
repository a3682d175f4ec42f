package controllers

import (
	"net/http"

	"github.com/davidfales/soccertraining-backend/api/responses"
	"github.com/davidfales/soccertraining-backend/api/validators"
	contactsvc "github.com/davidfales/soccertraining-backend/internal/contact"
	"github.com/davidfales/soccertraining-backend/pkg/logger"
)

type contactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Phone   string `json:"phone"`
	Message string `json:"message" validate:"required"`
}

// SubmitContact forwards a website inquiry to the owner's inbox.
func SubmitContact(svc contactsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload contactRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Submit(r.Context(), contactsvc.Input{
			Name:    payload.Name,
			Email:   payload.Email,
			Phone:   payload.Phone,
			Message: payload.Message,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"sent": true})
	}
}
