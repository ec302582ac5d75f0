package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fulfillmentworks/picksync-backend/api/routes"
	"github.com/fulfillmentworks/picksync-backend/internal/audit"
	"github.com/fulfillmentworks/picksync-backend/internal/backorders"
	"github.com/fulfillmentworks/picksync-backend/internal/erp"
	"github.com/fulfillmentworks/picksync-backend/internal/pickqueue"
	"github.com/fulfillmentworks/picksync-backend/internal/scanning"
	"github.com/fulfillmentworks/picksync-backend/internal/shipmentlines"
	"github.com/fulfillmentworks/picksync-backend/internal/trips"
	"github.com/fulfillmentworks/picksync-backend/pkg/config"
	"github.com/fulfillmentworks/picksync-backend/pkg/db"
	"github.com/fulfillmentworks/picksync-backend/pkg/logger"
	"github.com/fulfillmentworks/picksync-backend/pkg/metrics"
	"github.com/fulfillmentworks/picksync-backend/pkg/migrate"
	"github.com/fulfillmentworks/picksync-backend/pkg/outbox"
	"github.com/fulfillmentworks/picksync-backend/pkg/redis"
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

	erpClient, err := erp.NewClient(cfg.ERP.BaseURL, erp.WithToken(cfg.ERP.Token))
	if err != nil {
		logg.Error(context.Background(), "failed to create erp client", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	queueRepo := pickqueue.NewRepository(gormDB)
	lineRepo := shipmentlines.NewRepository(gormDB)
	backorderRepo := backorders.NewRepository(gormDB)
	tripRepo := trips.NewRepository(gormDB)
	auditRepo := audit.NewRepository(gormDB)
	outboxSvc := outbox.NewService(outbox.NewRepository(gormDB), logg)

	auditSvc, err := audit.NewService(auditRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit service", err)
		os.Exit(1)
	}

	queueSvc, err := pickqueue.NewService(queueRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create pick queue service", err)
		os.Exit(1)
	}

	lineSvc, err := shipmentlines.NewService(lineRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create shipment line service", err)
		os.Exit(1)
	}

	tripSvc, err := trips.NewService(gormDB, tripRepo, lineRepo, auditSvc, outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create trip service", err)
		os.Exit(1)
	}

	backorderSvc, err := backorders.NewService(backorderRepo, auditSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create backorder service", err)
		os.Exit(1)
	}

	scanSvc, err := scanning.NewService(gormDB, queueRepo, lineRepo, backorderRepo, tripSvc, erpClient, erpClient, auditSvc, outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create scanning service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	router := routes.NewRouter(routes.Deps{
		Cfg:            cfg,
		Logg:           logg,
		DBPinger:       dbClient,
		Redis:          redisClient,
		ScanMetrics:    metrics.NewScanMetrics(prometheus.DefaultRegisterer),
		MetricsHandler: promhttp.Handler(),
		Scanning:       scanSvc,
		PickQueue:      queueSvc,
		Trips:          tripSvc,
		Backorders:     backorderSvc,
		ShipmentLines:  lineSvc,
		Audit:          auditSvc,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}
