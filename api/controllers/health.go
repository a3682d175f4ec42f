package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/davidfales/soccertraining-backend/api/responses"
	"github.com/davidfales/soccertraining-backend/pkg/config"
)

// Pinger is the dependency health-check surface.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports per-dependency status. Degraded dependencies are
// named but the endpoint still answers 200 so deploys don't flap on a
// transient outage of an optional backend.
func HealthReady(cfg *config.Config, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"status": "ready"}
		for name, dep := range deps {
			if dep == nil {
				status[name] = "disabled"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				status[name] = "unavailable"
				status["status"] = "degraded"
				continue
			}
			status[name] = "ok"
		}
		responses.WriteSuccess(w, status)
	}
}
