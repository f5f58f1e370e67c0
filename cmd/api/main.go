package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/krishimitra/marketplace-backend/api/routes"
	"github.com/krishimitra/marketplace-backend/internal/agreements"
	"github.com/krishimitra/marketplace-backend/internal/auth"
	"github.com/krishimitra/marketplace-backend/internal/deals"
	"github.com/krishimitra/marketplace-backend/internal/history"
	"github.com/krishimitra/marketplace-backend/internal/profiles"
	"github.com/krishimitra/marketplace-backend/internal/realtime"
	"github.com/krishimitra/marketplace-backend/internal/seed"
	"github.com/krishimitra/marketplace-backend/pkg/config"
	"github.com/krishimitra/marketplace-backend/pkg/db"
	"github.com/krishimitra/marketplace-backend/pkg/logger"
	"github.com/krishimitra/marketplace-backend/pkg/metrics"
	"github.com/krishimitra/marketplace-backend/pkg/migrate"
	"github.com/krishimitra/marketplace-backend/pkg/outbox"
	"github.com/krishimitra/marketplace-backend/pkg/pubsub"
	"github.com/krishimitra/marketplace-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer pubsubClient.Close()

	registry := prometheus.NewRegistry()
	dealMetrics := metrics.NewDealMetrics(registry)

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	profilesRepo := profiles.NewRepository(dbClient.DB())
	dealsRepo := deals.NewRepository(dbClient.DB())

	dealsService, err := deals.NewService(dealsRepo, dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create deals service", err)
		os.Exit(1)
	}

	historyService, err := history.NewService(
		history.NewRepository(dbClient.DB()),
		dealsRepo,
		history.NewNameResolver(profilesRepo),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create history service", err)
		os.Exit(1)
	}

	agreementsService, err := agreements.NewService(dealsRepo, profilesRepo, pubsubClient, cfg.PubSub.AgreementsTopic, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create agreements service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Profiles:    profilesRepo,
		Tx:          dbClient,
		JWTConfig:   cfg.JWT,
		PasswordCfg: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	if cfg.FeatureFlags.SeedDemoDeals {
		seedService, err := seed.NewService(dbClient, outboxService, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create seed service", err)
			os.Exit(1)
		}
		seeded, err := seedService.SeedDemoDeals(context.Background())
		if err != nil {
			logg.Error(context.Background(), "failed to seed demo deals", err)
			os.Exit(1)
		}
		if seeded {
			logg.Info(context.Background(), "demo deals seeded")
		}
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()

	hub := realtime.NewHub(dealMetrics, logg)
	go func() {
		if err := hub.Run(hubCtx, redisClient, cfg.Realtime.DealsChannel); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(hubCtx, "realtime hub stopped unexpectedly", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		// Request contexts descend from the hub context so open SSE streams
		// unwind as soon as shutdown begins instead of riding out the
		// shutdown timeout.
		BaseContext: func(net.Listener) context.Context { return hubCtx },
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			pubsubClient,
			authService,
			dealsService,
			historyService,
			agreementsService,
			hub,
			dealMetrics,
			registry,
		),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stop:
		logg.Info(ctx, "shutting down api server")
		stopHub()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
