package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/user/storesync/internal/adapter/metrics"
	"github.com/user/storesync/internal/domain"
)

// PageFetcher streams all pages of one upstream resource collection for
// a tenant. Implementations must be free of persistent side effects.
type PageFetcher interface {
	ForEachPage(ctx context.Context, tenant *domain.Tenant, resource string, fn func(records []json.RawMessage) error) error
}

// reconciler maps one raw upstream record to a local entity and performs
// an idempotent create-or-update keyed by (tenantID, externalID). A
// returned error means the record could not be reconciled; the caller
// counts it as skipped and continues.
type reconciler interface {
	reconcile(ctx context.Context, tenant *domain.Tenant, raw json.RawMessage) (domain.SyncOutcome, error)
}

// TenantSyncStatus is the per-tenant status view exposed to callers.
type TenantSyncStatus struct {
	ShopifyDomain string          `json:"shopify_domain"`
	IsActive      bool            `json:"is_active"`
	LastSyncAt    *time.Time      `json:"last_sync_at"`
	LatestRun     *domain.SyncRun `json:"latest_run,omitempty"`
}

// SyncService orchestrates one tenant's synchronization: it resolves the
// tenant, streams upstream pages, reconciles each record, and records
// the outcome in the sync run audit trail. All per-invocation state is
// local to the call; concurrent invocations for different tenants never
// share anything but the repositories.
type SyncService struct {
	fetcher   PageFetcher
	tenants   domain.TenantRepository
	runs      domain.SyncRunRepository
	leases    domain.SyncLeaseRepository // nil disables overlap protection
	customers *customerReconciler
	products  *productReconciler
	orders    *orderReconciler
	logger    *slog.Logger
	metrics   *metrics.SyncMetrics
}

// NewSyncService creates a SyncService. leases and m may be nil.
func NewSyncService(
	fetcher PageFetcher,
	tenants domain.TenantRepository,
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	runs domain.SyncRunRepository,
	leases domain.SyncLeaseRepository,
	logger *slog.Logger,
	m *metrics.SyncMetrics,
) *SyncService {
	logger = logger.With("component", "sync_service")
	return &SyncService{
		fetcher:   fetcher,
		tenants:   tenants,
		runs:      runs,
		leases:    leases,
		customers: &customerReconciler{repo: customers},
		products:  &productReconciler{repo: products},
		orders:    &orderReconciler{orders: orders, customers: customers, products: products, logger: logger},
		logger:    logger,
		metrics:   m,
	}
}

// SyncCustomers reconciles the tenant's upstream customers.
func (s *SyncService) SyncCustomers(ctx context.Context, tenantID uuid.UUID) (domain.SyncResult, error) {
	tenant, err := s.resolveTenant(ctx, tenantID)
	if err != nil {
		return domain.SyncResult{}, err
	}
	return s.runResourceSync(ctx, tenant, domain.SyncKindCustomers, s.customers)
}

// SyncProducts reconciles the tenant's upstream products.
func (s *SyncService) SyncProducts(ctx context.Context, tenantID uuid.UUID) (domain.SyncResult, error) {
	tenant, err := s.resolveTenant(ctx, tenantID)
	if err != nil {
		return domain.SyncResult{}, err
	}
	return s.runResourceSync(ctx, tenant, domain.SyncKindProducts, s.products)
}

// SyncOrders reconciles the tenant's upstream orders and their line
// items. Customer and product references resolve null-if-absent, so run
// SyncCustomers and SyncProducts first for complete references.
func (s *SyncService) SyncOrders(ctx context.Context, tenantID uuid.UUID) (domain.SyncResult, error) {
	tenant, err := s.resolveTenant(ctx, tenantID)
	if err != nil {
		return domain.SyncResult{}, err
	}
	return s.runResourceSync(ctx, tenant, domain.SyncKindOrders, s.orders)
}

// FullSync runs customers, then products, then orders, in that fixed
// order: order reconciliation resolves references against the customer
// and product state written by the earlier legs. The three sub-syncs are
// wrapped in an outer run of kind full whose counts are the sums; on
// success the tenant's last-sync timestamp is updated. Sub-syncs that
// completed before a failure are not rolled back.
func (s *SyncService) FullSync(ctx context.Context, tenantID uuid.UUID) (domain.FullSyncResult, error) {
	tenant, err := s.resolveTenant(ctx, tenantID)
	if err != nil {
		return domain.FullSyncResult{}, err
	}

	release, err := s.acquireLease(ctx, tenant.ID, domain.SyncKindFull)
	if err != nil {
		return domain.FullSyncResult{}, err
	}
	defer release()

	run, err := s.beginRun(ctx, tenant.ID, domain.SyncKindFull)
	if err != nil {
		return domain.FullSyncResult{}, err
	}

	s.logger.Info("starting full sync", "tenant_id", tenant.ID)

	var results domain.FullSyncResult
	steps := []struct {
		dest *domain.SyncResult
		sync func(context.Context, uuid.UUID) (domain.SyncResult, error)
	}{
		{&results.Customers, s.SyncCustomers},
		{&results.Products, s.SyncProducts},
		{&results.Orders, s.SyncOrders},
	}
	for _, step := range steps {
		res, err := step.sync(ctx, tenantID)
		if err != nil {
			s.completeRun(ctx, run, domain.RunStatusFailed, results.Combined(), err.Error())
			return results, err
		}
		*step.dest = res
	}

	if err := s.tenants.UpdateLastSync(ctx, tenant.ID); err != nil {
		s.logger.Error("failed to update tenant last sync time", "tenant_id", tenant.ID, "error", err)
	}

	s.completeRun(ctx, run, domain.RunStatusCompleted, results.Combined(), "")
	s.logger.Info("full sync completed", "tenant_id", tenant.ID)
	return results, nil
}

// LatestRun returns the most recent sync run for the tenant, optionally
// filtered by kind. Returns (nil, nil) when the tenant has never synced.
func (s *SyncService) LatestRun(ctx context.Context, tenantID uuid.UUID, kind *domain.SyncKind) (*domain.SyncRun, error) {
	return s.runs.LatestByTenant(ctx, tenantID, kind)
}

// RecentRuns returns up to limit recent sync runs for the tenant, newest
// first.
func (s *SyncService) RecentRuns(ctx context.Context, tenantID uuid.UUID, limit int) ([]domain.SyncRun, error) {
	return s.runs.ListByTenant(ctx, tenantID, limit)
}

// Status returns the tenant's sync status for display.
func (s *SyncService) Status(ctx context.Context, tenantID uuid.UUID) (*TenantSyncStatus, error) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.ErrTenantNotFound
	}

	latest, err := s.runs.LatestByTenant(ctx, tenantID, nil)
	if err != nil {
		return nil, err
	}

	return &TenantSyncStatus{
		ShopifyDomain: tenant.ShopifyDomain,
		IsActive:      tenant.IsActive,
		LastSyncAt:    tenant.LastSyncAt,
		LatestRun:     latest,
	}, nil
}

// resolveTenant loads the tenant and enforces the configuration
// preconditions. Failures here happen before any network call or audit
// row is written.
func (s *SyncService) resolveTenant(ctx context.Context, tenantID uuid.UUID) (*domain.Tenant, error) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.ErrTenantNotFound
	}
	if !tenant.IsActive {
		return nil, domain.ErrTenantInactive
	}
	return tenant, nil
}

// acquireLease takes the per-(tenant, kind) lease when a lease
// repository is configured. The returned release func is always safe to
// call.
func (s *SyncService) acquireLease(ctx context.Context, tenantID uuid.UUID, kind domain.SyncKind) (func(), error) {
	if s.leases == nil {
		return func() {}, nil
	}

	ok, err := s.leases.Acquire(ctx, tenantID, kind)
	if err != nil {
		// Lease storage being down should not stop syncs; overlap
		// protection degrades to the upsert idempotency guarantee.
		s.logger.Warn("sync lease unavailable, proceeding unguarded", "tenant_id", tenantID, "kind", kind, "error", err)
		return func() {}, nil
	}
	if !ok {
		return nil, domain.ErrSyncInProgress
	}

	return func() {
		if err := s.leases.Release(context.WithoutCancel(ctx), tenantID, kind); err != nil {
			s.logger.Warn("failed to release sync lease", "tenant_id", tenantID, "kind", kind, "error", err)
		}
	}, nil
}

// runResourceSync is the shared fetch-and-reconcile loop: it opens a
// sync run, folds every upstream record through the reconciler while
// tallying outcomes, and closes the run exactly once. Per-record errors
// are contained as skips; a fetch-phase error fails the whole run and
// propagates.
func (s *SyncService) runResourceSync(ctx context.Context, tenant *domain.Tenant, kind domain.SyncKind, rec reconciler) (domain.SyncResult, error) {
	release, err := s.acquireLease(ctx, tenant.ID, kind)
	if err != nil {
		return domain.SyncResult{}, err
	}
	defer release()

	run, err := s.beginRun(ctx, tenant.ID, kind)
	if err != nil {
		return domain.SyncResult{}, err
	}

	s.logger.Info("starting sync", "tenant_id", tenant.ID, "kind", kind)

	var result domain.SyncResult
	fetchErr := s.fetcher.ForEachPage(ctx, tenant, string(kind), func(records []json.RawMessage) error {
		for _, raw := range records {
			outcome, recErr := rec.reconcile(ctx, tenant, raw)
			if recErr != nil {
				result.Tally(domain.OutcomeSkipped)
				s.logger.Error("failed to reconcile record",
					"tenant_id", tenant.ID,
					"kind", kind,
					"external_id", externalID(raw),
					"error", recErr,
				)
				continue
			}
			result.Tally(outcome)
		}
		return nil
	})

	if fetchErr != nil {
		s.completeRun(ctx, run, domain.RunStatusFailed, result, fetchErr.Error())
		return result, fetchErr
	}

	s.completeRun(ctx, run, domain.RunStatusCompleted, result, "")
	s.logger.Info("sync completed",
		"tenant_id", tenant.ID,
		"kind", kind,
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
	)
	return result, nil
}

func (s *SyncService) beginRun(ctx context.Context, tenantID uuid.UUID, kind domain.SyncKind) (*domain.SyncRun, error) {
	run := &domain.SyncRun{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Kind:      kind,
		Status:    domain.RunStatusStarted,
		StartedAt: time.Now().UTC(),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// completeRun transitions a run to its terminal status. The audit row
// must reach a terminal state even when the sync itself failed, so
// persistence errors here are logged rather than propagated.
func (s *SyncService) completeRun(ctx context.Context, run *domain.SyncRun, status domain.RunStatus, result domain.SyncResult, errMsg string) {
	now := time.Now().UTC()
	run.Status = status
	run.RecordsProcessed = result.Total
	run.RecordsCreated = result.Created
	run.RecordsUpdated = result.Updated
	run.RecordsSkipped = result.Skipped
	run.ErrorMessage = errMsg
	run.CompletedAt = &now
	run.DurationMS = now.Sub(run.StartedAt).Milliseconds()

	if err := s.runs.Complete(ctx, run); err != nil {
		s.logger.Error("failed to record sync run completion", "run_id", run.ID, "tenant_id", run.TenantID, "error", err)
	}

	if s.metrics != nil {
		s.metrics.RunsTotal.WithLabelValues(string(run.Kind), string(status)).Inc()
		s.metrics.RunDuration.WithLabelValues(string(run.Kind)).Observe(now.Sub(run.StartedAt).Seconds())
		s.metrics.RecordsTotal.WithLabelValues(string(run.Kind), "created").Add(float64(result.Created))
		s.metrics.RecordsTotal.WithLabelValues(string(run.Kind), "updated").Add(float64(result.Updated))
		s.metrics.RecordsTotal.WithLabelValues(string(run.Kind), "skipped").Add(float64(result.Skipped))
	}
}

// externalID extracts the upstream id from a raw record for diagnostics.
func externalID(raw json.RawMessage) int64 {
	var probe struct {
		ID int64 `json:"id"`
	}
	_ = json.Unmarshal(raw, &probe)
	return probe.ID
}
