package controllers

import (
	"net/http"

	"github.com/davidfales/soccertraining-backend/api/responses"
	"github.com/davidfales/soccertraining-backend/api/validators"
	checkoutsvc "github.com/davidfales/soccertraining-backend/internal/checkout"
	"github.com/davidfales/soccertraining-backend/pkg/logger"
)

type startCheckoutRequest struct {
	GroupSessionID int64 `json:"group_session_id" validate:"required,min=1"`

	FirstName     string `json:"first_name" validate:"required"`
	LastName      string `json:"last_name" validate:"required"`
	Age           int    `json:"age" validate:"required"`
	Birthday      string `json:"birthday"`
	PreferredFoot string `json:"preferred_foot"`
	Team          string `json:"team"`
	Notes         string `json:"notes"`

	EmergencyContact string `json:"emergency_contact" validate:"required"`
	ContactEmail     string `json:"contact_email" validate:"required"`
	ContactPhone     string `json:"contact_phone"`
	ParentName       string `json:"parent_name"`
}

// StartCheckout books a spot and hands back the Stripe checkout URL.
func StartCheckout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload startCheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Start(r.Context(), checkoutsvc.Input{
			GroupSessionID:   payload.GroupSessionID,
			FirstName:        payload.FirstName,
			LastName:         payload.LastName,
			Age:              payload.Age,
			Birthday:         payload.Birthday,
			PreferredFoot:    payload.PreferredFoot,
			Team:             payload.Team,
			Notes:            payload.Notes,
			EmergencyContact: payload.EmergencyContact,
			ContactEmail:     payload.ContactEmail,
			ContactPhone:     payload.ContactPhone,
			ParentName:       payload.ParentName,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
