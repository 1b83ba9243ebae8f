package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/boosthq/boosthq-backend/api/routes"
	"github.com/boosthq/boosthq-backend/internal/analytics"
	"github.com/boosthq/boosthq-backend/internal/campaigns"
	"github.com/boosthq/boosthq-backend/internal/eldorado"
	"github.com/boosthq/boosthq-backend/internal/fruits"
	"github.com/boosthq/boosthq-backend/internal/orders"
	"github.com/boosthq/boosthq-backend/internal/users"
	"github.com/boosthq/boosthq-backend/pkg/config"
	"github.com/boosthq/boosthq-backend/pkg/db"
	"github.com/boosthq/boosthq-backend/pkg/logger"
	"github.com/boosthq/boosthq-backend/pkg/metrics"
	"github.com/boosthq/boosthq-backend/pkg/migrate"
	pkgredis "github.com/boosthq/boosthq-backend/pkg/redis"
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

	redisClient, err := pkgredis.New(cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gormDB := dbClient.DB()

	usersService, err := users.NewService(users.NewRepository(gormDB), cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	fruitsService, err := fruits.NewService(fruits.NewRepository(gormDB), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create fruits service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.NewRepository(gormDB), dbClient, fruitsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	eldoradoService, err := eldorado.NewService(eldorado.NewRepository(gormDB), dbClient, ordersService)
	if err != nil {
		logg.Error(context.Background(), "failed to create eldorado service", err)
		os.Exit(1)
	}

	campaignsService, err := campaigns.NewService(campaigns.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create campaigns service", err)
		os.Exit(1)
	}

	analyticsService, err := analytics.NewService(analytics.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

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
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			httpMetrics,
			usersService,
			ordersService,
			fruitsService,
			eldoradoService,
			campaignsService,
			analyticsService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
