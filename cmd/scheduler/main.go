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

// Standalone scheduler runner for deployments that keep the background
// schedules separate from the API servers. Run with redis configured so
// its triggers and the API's manual triggers cannot overlap.
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("starting sync scheduler")

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

	client := shopify.NewClient(
		&http.Client{Timeout: cfg.ShopifyHTTPTimeout},
		cfg.ShopifyAPIVersion,
		cfg.ShopifyRequestRate,
		log,
	)

	syncSvc := usecase.NewSyncService(
		client,
		postgres.NewTenantRepository(db),
		postgres.NewCustomerRepository(db),
		postgres.NewProductRepository(db),
		postgres.NewOrderRepository(db),
		postgres.NewSyncRunRepository(db),
		leases,
		log,
		m,
	)

	sched := scheduler.New(syncSvc, postgres.NewTenantRepository(db), scheduler.Intervals{
		Full:    cfg.FullSyncInterval,
		Orders:  cfg.OrderSyncInterval,
		Catalog: cfg.CatalogSyncInterval,
	}, log, m)
	sched.Start(ctx)

	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())
	adminServer := &http.Server{Addr: cfg.AdminServerAddr, Handler: adminMux}

	errCh := make(chan error, 1)
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
		log.Error("admin server failed", "error", err)
	}

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		log.Error("admin server shutdown failed", "error", err)
	}

	log.Info("sync scheduler stopped")
}
