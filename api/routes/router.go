package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/krishimitra/marketplace-backend/api/controllers"
	"github.com/krishimitra/marketplace-backend/api/middleware"
	"github.com/krishimitra/marketplace-backend/internal/agreements"
	"github.com/krishimitra/marketplace-backend/internal/auth"
	"github.com/krishimitra/marketplace-backend/internal/deals"
	"github.com/krishimitra/marketplace-backend/internal/history"
	"github.com/krishimitra/marketplace-backend/internal/realtime"
	"github.com/krishimitra/marketplace-backend/pkg/config"
	"github.com/krishimitra/marketplace-backend/pkg/db"
	"github.com/krishimitra/marketplace-backend/pkg/enums"
	"github.com/krishimitra/marketplace-backend/pkg/logger"
	"github.com/krishimitra/marketplace-backend/pkg/metrics"
	"github.com/krishimitra/marketplace-backend/pkg/pubsub"
	"github.com/krishimitra/marketplace-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	pubsubP pubsub.Pinger,
	authService auth.Service,
	dealsService deals.Service,
	historyService history.Service,
	agreementsService agreements.Service,
	hub *realtime.Hub,
	dealMetrics *metrics.DealMetrics,
	registry prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, pubsubP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register/farmer", controllers.AuthRegisterFarmer(authService, logg))
		r.Post("/register/dealer", controllers.AuthRegisterDealer(authService, logg))
		r.Post("/login", controllers.AuthLogin(authService, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/v1/farmer", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.ActorRoleFarmer), logg))
			r.Post("/deals", controllers.DealCreate(dealsService, dealMetrics, logg))
			r.Get("/deals", controllers.FarmerDeals(dealsService, logg))
			r.Get("/deals/stream", controllers.FarmerDealsStream(dealsService, hub, cfg.Realtime, logg))
			r.Get("/history", controllers.FarmerHistory(historyService, logg))
		})

		r.Route("/v1/dealer", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.ActorRoleDealer), logg))
			r.Get("/deals", controllers.OpenDeals(dealsService, logg))
			r.Get("/deals/stream", controllers.OpenDealsStream(dealsService, hub, cfg.Realtime, logg))
			r.Post("/deals/{dealId}/decision", controllers.DealDecision(dealsService, dealMetrics, logg))
			r.Get("/history", controllers.DealerHistory(historyService, logg))
			r.Get("/history/stream", controllers.DealerHistoryStream(historyService, hub, cfg.Realtime, logg))
		})

		r.Route("/v1/deals", func(r chi.Router) {
			r.Get("/{dealId}", controllers.DealDetail(dealsService, logg))
			r.Get("/{dealId}/agreement", controllers.AgreementSnapshot(agreementsService, logg))
			r.Post("/{dealId}/agreement/render", controllers.AgreementRender(agreementsService, logg))
		})
	})

	return r
}
