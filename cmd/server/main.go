package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/storesync/internal/adapter/api"
	"github.com/user/storesync/internal/adapter/api/handler"
	"github.com/user/storesync/internal/adapter/metrics"
	"github.com/user/storesync/internal/adapter/repository/postgres"
	redisrepo "github.com/user/storesync/internal/adapter/repository/redis"
	"github.com/user/storesync/internal/adapter/shopify"
	"github.com/user/storesync/internal/domain"
	"github.com/user/storesync/internal/pkg/config"
	"github.com/user/storesync/internal/pkg/logger"
	"github.com/user/storesync/internal/scheduler"
	"github.com/user/storesync/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("starting sync server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to reach database", "error", err)
		os.Exit(1)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	m := metrics.NewSyncMetrics()

	// The sync lease is optional: without redis, overlapping syncs for
	// the same tenant are merely redundant, not harmful.
	var leases domain.SyncLeaseRepository
	if cfg.RedisAddr != "" {
		leaseRepo, err := redisrepo.NewLeaseRepository(ctx, cfg.RedisAddr, cfg.SyncLeaseTTL)
		if err != nil {
			log.Warn("redis unavailable, sync overlap protection disabled", "error", err)
		} else {
			defer leaseRepo.Close()
			leases = leaseRepo
		}
	}

	tenantRepo := postgres.NewTenantRepository(db)
	customerRepo := postgres.NewCustomerRepository(db)
	productRepo := postgres.NewProductRepository(db)
	orderRepo := postgres.NewOrderRepository(db)
	runRepo := postgres.NewSyncRunRepository(db)
	keyRepo := postgres.NewAPIKeyRepository(db, cfg.APIKeyCacheTTL, m)

	client := shopify.NewClient(
		&http.Client{Timeout: cfg.ShopifyHTTPTimeout},
		cfg.ShopifyAPIVersion,
		cfg.ShopifyRequestRate,
		log,
	)

	syncSvc := usecase.NewSyncService(client, tenantRepo, customerRepo, productRepo, orderRepo, runRepo, leases, log, m)

	sched := scheduler.New(syncSvc, tenantRepo, scheduler.Intervals{
		Full:    cfg.FullSyncInterval,
		Orders:  cfg.OrderSyncInterval,
		Catalog: cfg.CatalogSyncInterval,
	}, log, m)
	sched.Start(ctx)
	defer sched.Stop()

	router := api.NewRouter(
		handler.NewSyncHandler(syncSvc, log),
		handler.NewJobHandler(sched, tenantRepo, log),
		keyRepo,
		log,
	)

	apiServer := &http.Server{Addr: cfg.APIServerAddr, Handler: router}

	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())
	adminServer := &http.Server{Addr: cfg.AdminServerAddr, Handler: adminMux}

	errCh := make(chan error, 2)
	go func() {
		log.Info("api server listening", "addr", cfg.APIServerAddr)
		if err := apiServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		log.Info("admin server listening", "addr", cfg.AdminServerAddr)
		if err := adminServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		log.Error("server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error("api server shutdown failed", "error", err)
	}
	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		log.Error("admin server shutdown failed", "error", err)
	}

	log.Info("sync server stopped")
}
