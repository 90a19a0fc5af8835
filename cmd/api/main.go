package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/wicaksonohadi/sipupuk-backend/api/routes"
	"github.com/wicaksonohadi/sipupuk-backend/internal/auth"
	"github.com/wicaksonohadi/sipupuk-backend/internal/events"
	"github.com/wicaksonohadi/sipupuk-backend/internal/farmers"
	"github.com/wicaksonohadi/sipupuk-backend/internal/harvests"
	"github.com/wicaksonohadi/sipupuk-backend/internal/reports"
	"github.com/wicaksonohadi/sipupuk-backend/internal/requests"
	"github.com/wicaksonohadi/sipupuk-backend/internal/stock"
	"github.com/wicaksonohadi/sipupuk-backend/internal/users"
	"github.com/wicaksonohadi/sipupuk-backend/internal/verifications"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/auth/session"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/config"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/db"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/logger"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/metrics"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/migrate"
	"github.com/wicaksonohadi/sipupuk-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gorm := dbClient.DB()
	userRepo := users.NewRepository(gorm)
	farmerRepo := farmers.NewRepository(gorm)
	harvestRepo := harvests.NewRepository(gorm)
	stockRepo := stock.NewRepository(gorm)
	requestRepo := requests.NewRepository(gorm)
	eventRepo := events.NewRepository(gorm)
	verificationRepo := verifications.NewRepository(gorm)
	reportRepo := reports.NewRepository(gorm)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	exitOnError(logg, "auth service", err)

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		Users:          userRepo,
		Farmers:        farmerRepo,
		Tx:             dbClient,
		PasswordConfig: cfg.Password,
	})
	exitOnError(logg, "register service", err)

	userService, err := users.NewService(users.ServiceParams{
		Repo:           userRepo,
		Tx:             dbClient,
		PasswordConfig: cfg.Password,
	})
	exitOnError(logg, "user service", err)

	farmerService, err := farmers.NewService(farmerRepo, harvestRepo)
	exitOnError(logg, "farmer service", err)

	harvestService, err := harvests.NewService(harvestRepo)
	exitOnError(logg, "harvest service", err)

	stockService, err := stock.NewService(stockRepo, dbClient)
	exitOnError(logg, "stock service", err)

	eventService, err := events.NewService(eventRepo, dbClient, stockRepo, stock.NewDeducter())
	exitOnError(logg, "event service", err)

	requestService, err := requests.NewService(requests.ServiceParams{
		Repo:          requestRepo,
		Tx:            dbClient,
		Stocks:        stockRepo,
		Deducter:      stock.NewDeducter(),
		Farmers:       farmerService,
		Verifications: verificationRepo,
		Events:        eventRepo,
	})
	exitOnError(logg, "request service", err)

	verificationService, err := verifications.NewService(verificationRepo, dbClient, requestRepo)
	exitOnError(logg, "verification service", err)

	reportService, err := reports.NewService(reportRepo)
	exitOnError(logg, "report service", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(registry)

	handler := routes.NewRouter(routes.RouterParams{
		Config:  cfg,
		Logger:  logg,
		DB:      dbClient,
		Redis:   redisClient,
		Session: sessionManager,

		HTTPMetrics: httpMetrics,
		Gatherer:    registry,

		Auth:          authService,
		Register:      registerService,
		Users:         userService,
		Farmers:       farmerService,
		Harvests:      harvestService,
		Stock:         stockService,
		Requests:      requestService,
		Events:        eventService,
		Verifications: verificationService,
		Reports:       reportService,
	})

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
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

func exitOnError(logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+what, err)
	os.Exit(1)
}
