package controllers

import (
	"net/http"

	"github.com/krishimitra/marketplace-backend/api/responses"
	"github.com/krishimitra/marketplace-backend/pkg/config"
	"github.com/krishimitra/marketplace-backend/pkg/db"
	pkgerrors "github.com/krishimitra/marketplace-backend/pkg/errors"
	"github.com/krishimitra/marketplace-backend/pkg/logger"
	"github.com/krishimitra/marketplace-backend/pkg/pubsub"
	"github.com/krishimitra/marketplace-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-KrishiMitra-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when every backing dependency answers a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger, pubsubP pubsub.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-KrishiMitra-Env", cfg.App.Env)

		checks := map[string]string{}

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
			checks["database"] = "ok"
		}

		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
			checks["redis"] = "ok"
		}

		if pubsubP != nil {
			if err := pubsubP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "pubsub unavailable"))
				return
			}
			checks["pubsub"] = "ok"
		}

		checks["status"] = "ready"
		responses.WriteSuccess(w, checks)
	}
}
