package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/washtrack/washtrack-backend/api/routes"
	"github.com/washtrack/washtrack-backend/internal/admin"
	"github.com/washtrack/washtrack-backend/internal/credentials"
	"github.com/washtrack/washtrack-backend/internal/customers"
	"github.com/washtrack/washtrack-backend/internal/reports"
	"github.com/washtrack/washtrack-backend/internal/sales"
	"github.com/washtrack/washtrack-backend/pkg/config"
	"github.com/washtrack/washtrack-backend/pkg/db"
	"github.com/washtrack/washtrack-backend/pkg/logger"
	"github.com/washtrack/washtrack-backend/pkg/metrics"
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

	if cfg.DB.AutoMigrate {
		if err := dbClient.Migrate(context.Background()); err != nil {
			logg.Error(context.Background(), "failed to migrate schema", err)
			os.Exit(1)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ledgerMetrics := metrics.NewLedgerMetrics(registry)

	credsRepo := credentials.NewRepository(dbClient.DB())
	custsRepo := customers.NewRepository(dbClient.DB())
	salesRepo := sales.NewRepository(dbClient.DB())
	settingsRepo := admin.NewRepository(dbClient.DB())

	credsService, err := credentials.NewService(credsRepo, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create credentials service", err)
		os.Exit(1)
	}

	custsService, err := customers.NewService(custsRepo, logg, ledgerMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create customers service", err)
		os.Exit(1)
	}

	salesService, err := sales.NewService(salesRepo, credsService, custsService, dbClient, cfg.Ledger, logg, ledgerMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create sales service", err)
		os.Exit(1)
	}

	reportsService, err := reports.NewService(salesRepo, custsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create reports service", err)
		os.Exit(1)
	}

	adminService, err := admin.NewService(
		settingsRepo,
		credsRepo,
		custsRepo,
		salesRepo,
		dbClient,
		cfg.JWT,
		cfg.Password,
		cfg.Ledger,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create admin service", err)
		os.Exit(1)
	}

	if err := adminService.Seed(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to seed admin credential", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
		"db":   cfg.DB.Path,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			credsService,
			salesService,
			reportsService,
			adminService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
