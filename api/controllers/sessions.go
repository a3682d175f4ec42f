package controllers

import (
	"net/http"
	"time"

	"github.com/davidfales/soccertraining-backend/api/responses"
	"github.com/davidfales/soccertraining-backend/api/validators"
	sessionssvc "github.com/davidfales/soccertraining-backend/internal/sessions"
	"github.com/davidfales/soccertraining-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// ListSessions serves upcoming group sessions with availability.
func ListSessions(svc sessionssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessions, err := svc.ListUpcoming(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sessions)
	}
}

// GetSession serves one session by id.
func GetSession(svc sessionssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseInt64Param(chi.URLParam(r, "sessionID"), "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

type createSessionRequest struct {
	Title          string          `json:"title" validate:"required"`
	Description    string          `json:"description"`
	SessionDate    time.Time       `json:"session_date" validate:"required"`
	SessionDateEnd *time.Time      `json:"session_date_end"`
	Location       string          `json:"location"`
	Price          decimal.Decimal `json:"price"`
	MaxPlayers     int             `json:"max_players" validate:"required,min=1"`
}

// AdminCreateSession schedules a group session.
func AdminCreateSession(svc sessionssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createSessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Create(r.Context(), sessionssvc.CreateInput{
			Title:          payload.Title,
			Description:    payload.Description,
			SessionDate:    payload.SessionDate,
			SessionDateEnd: payload.SessionDateEnd,
			Location:       payload.Location,
			Price:          payload.Price,
			MaxPlayers:     payload.MaxPlayers,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	}
}

type updateSessionRequest struct {
	Title          *string          `json:"title"`
	Description    *string          `json:"description"`
	SessionDate    *time.Time       `json:"session_date"`
	SessionDateEnd *time.Time       `json:"session_date_end"`
	Location       *string          `json:"location"`
	Price          *decimal.Decimal `json:"price"`
	MaxPlayers     *int             `json:"max_players"`
}

func (req updateSessionRequest) fields() map[string]any {
	fields := map[string]any{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.SessionDate != nil {
		fields["session_date"] = *req.SessionDate
	}
	if req.SessionDateEnd != nil {
		fields["session_date_end"] = *req.SessionDateEnd
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.MaxPlayers != nil {
		fields["max_players"] = *req.MaxPlayers
	}
	return fields
}

// AdminUpdateSession applies a partial update to a session.
func AdminUpdateSession(svc sessionssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseInt64Param(chi.URLParam(r, "sessionID"), "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateSessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Update(r.Context(), id, payload.fields())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

// AdminDeleteSession removes a session.
func AdminDeleteSession(svc sessionssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseInt64Param(chi.URLParam(r, "sessionID"), "sessionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": true})
	}
}
