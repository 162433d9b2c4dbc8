package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/user/storesync/internal/adapter/metrics"
	"github.com/user/storesync/internal/domain"
)

// Syncer is the subset of the sync service the scheduler drives.
type Syncer interface {
	SyncCustomers(ctx context.Context, tenantID uuid.UUID) (domain.SyncResult, error)
	SyncProducts(ctx context.Context, tenantID uuid.UUID) (domain.SyncResult, error)
	SyncOrders(ctx context.Context, tenantID uuid.UUID) (domain.SyncResult, error)
	FullSync(ctx context.Context, tenantID uuid.UUID) (domain.FullSyncResult, error)
}

// JobKey identifies one recurring per-tenant sync job. At most one job
// exists per key; registering again replaces the previous schedule.
type JobKey struct {
	TenantID uuid.UUID       `json:"tenant_id"`
	Kind     domain.SyncKind `json:"kind"`
}

// Job is the externally visible description of a registered job.
type Job struct {
	Key      JobKey        `json:"key"`
	Interval time.Duration `json:"interval"`
}

// Intervals configures the global background schedules that cover every
// active tenant.
type Intervals struct {
	Full    time.Duration
	Orders  time.Duration
	Catalog time.Duration
}

type registerCmd struct {
	job   Job
	reply chan struct{}
}

type deregisterCmd struct {
	key   JobKey
	reply chan bool
}

type listCmd struct {
	reply chan []Job
}

type runningJob struct {
	job    Job
	cancel context.CancelFunc
}

// Scheduler owns recurring sync schedules: three global schedules over
// all active tenants plus ad-hoc per-tenant jobs managed at runtime. All
// job state is confined to the control loop goroutine; the exported
// methods communicate with it over channels.
type Scheduler struct {
	syncer    Syncer
	tenants   domain.TenantRepository
	intervals Intervals
	logger    *slog.Logger
	metrics   *metrics.SyncMetrics

	cmds   chan any
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Scheduler. m may be nil.
func New(syncer Syncer, tenants domain.TenantRepository, intervals Intervals, logger *slog.Logger, m *metrics.SyncMetrics) *Scheduler {
	return &Scheduler{
		syncer:    syncer,
		tenants:   tenants,
		intervals: intervals,
		logger:    logger.With("component", "scheduler"),
		metrics:   m,
		cmds:      make(chan any),
	}
}

// Start launches the control loop and the global schedules. It returns
// immediately; Stop shuts everything down.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.controlLoop(ctx)

	globals := []struct {
		kind     domain.SyncKind
		interval time.Duration
	}{
		{domain.SyncKindFull, s.intervals.Full},
		{domain.SyncKindOrders, s.intervals.Orders},
		{domain.SyncKindCustomers, s.intervals.Catalog},
		{domain.SyncKindProducts, s.intervals.Catalog},
	}
	for _, g := range globals {
		if g.interval <= 0 {
			continue
		}
		s.wg.Add(1)
		go s.runGlobal(ctx, g.kind, g.interval)
	}

	s.logger.Info("scheduler started",
		"full_interval", s.intervals.Full,
		"order_interval", s.intervals.Orders,
		"catalog_interval", s.intervals.Catalog,
	)
}

// Stop shuts the scheduler down: it cancels every schedule and any
// in-flight sync invocations, then waits for their goroutines to
// return. Only process shutdown interrupts running invocations;
// deregistering or replacing a single job never does.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

// Register schedules a recurring sync for one (tenant, kind). An
// existing job under the same key is replaced and its old schedule
// stopped.
func (s *Scheduler) Register(ctx context.Context, tenantID uuid.UUID, kind domain.SyncKind, interval time.Duration) {
	cmd := registerCmd{
		job:   Job{Key: JobKey{TenantID: tenantID, Kind: kind}, Interval: interval},
		reply: make(chan struct{}),
	}
	select {
	case s.cmds <- cmd:
		<-cmd.reply
	case <-ctx.Done():
	}
}

// Deregister stops a per-tenant job. It reports whether a job existed;
// deregistering an absent job is a no-op.
func (s *Scheduler) Deregister(ctx context.Context, tenantID uuid.UUID, kind domain.SyncKind) bool {
	cmd := deregisterCmd{key: JobKey{TenantID: tenantID, Kind: kind}, reply: make(chan bool)}
	select {
	case s.cmds <- cmd:
		return <-cmd.reply
	case <-ctx.Done():
		return false
	}
}

// List returns the currently registered per-tenant jobs.
func (s *Scheduler) List(ctx context.Context) []Job {
	cmd := listCmd{reply: make(chan []Job)}
	select {
	case s.cmds <- cmd:
		return <-cmd.reply
	case <-ctx.Done():
		return nil
	}
}

func (s *Scheduler) controlLoop(ctx context.Context) {
	defer s.wg.Done()

	jobs := make(map[JobKey]*runningJob)
	defer func() {
		for _, j := range jobs {
			j.cancel()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case raw := <-s.cmds:
			switch cmd := raw.(type) {
			case registerCmd:
				if existing, ok := jobs[cmd.job.Key]; ok {
					existing.cancel()
					s.gaugeJobs(-1)
				}
				jobCtx, cancel := context.WithCancel(ctx)
				jobs[cmd.job.Key] = &runningJob{job: cmd.job, cancel: cancel}
				s.wg.Add(1)
				go s.runJob(jobCtx, ctx, cmd.job)
				s.gaugeJobs(1)
				s.logger.Info("job registered",
					"tenant_id", cmd.job.Key.TenantID, "kind", cmd.job.Key.Kind, "interval", cmd.job.Interval)
				close(cmd.reply)

			case deregisterCmd:
				existing, ok := jobs[cmd.key]
				if ok {
					existing.cancel()
					delete(jobs, cmd.key)
					s.gaugeJobs(-1)
					s.logger.Info("job deregistered", "tenant_id", cmd.key.TenantID, "kind", cmd.key.Kind)
				}
				cmd.reply <- ok

			case listCmd:
				out := make([]Job, 0, len(jobs))
				for _, j := range jobs {
					out = append(out, j.job)
				}
				cmd.reply <- out
			}
		}
	}
}

// runJob drives one per-tenant schedule until its job context is
// cancelled. Triggers execute on runCtx, the scheduler's root context,
// which outlives the job: stopping or replacing a job only prevents
// future triggers and never interrupts an invocation already running.
func (s *Scheduler) runJob(jobCtx, runCtx context.Context, job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-jobCtx.Done():
			return
		case <-ticker.C:
			s.runSync(runCtx, job.Key.TenantID, job.Key.Kind)
		}
	}
}

// runGlobal drives one global schedule, re-reading the active tenant
// set on every trigger so newly added tenants are picked up without a
// restart. Each tenant syncs in its own goroutine: a slow tenant must
// not hold up the others. The sync lease keeps a tenant that outlasts
// the interval from overlapping itself.
func (s *Scheduler) runGlobal(ctx context.Context, kind domain.SyncKind, interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tenants, err := s.tenants.ListActive(ctx)
			if err != nil {
				s.logger.Error("failed to list active tenants", "kind", kind, "error", err)
				continue
			}
			for _, tenant := range tenants {
				s.wg.Add(1)
				go func(tenantID uuid.UUID) {
					defer s.wg.Done()
					s.runSync(ctx, tenantID, kind)
				}(tenant.ID)
			}
		}
	}
}

// runSync executes one trigger. Failures are contained here: a broken
// tenant must not take down the schedule or affect other tenants.
func (s *Scheduler) runSync(ctx context.Context, tenantID uuid.UUID, kind domain.SyncKind) {
	var err error
	switch kind {
	case domain.SyncKindCustomers:
		_, err = s.syncer.SyncCustomers(ctx, tenantID)
	case domain.SyncKindProducts:
		_, err = s.syncer.SyncProducts(ctx, tenantID)
	case domain.SyncKindOrders:
		_, err = s.syncer.SyncOrders(ctx, tenantID)
	case domain.SyncKindFull:
		_, err = s.syncer.FullSync(ctx, tenantID)
	}

	switch {
	case err == nil:
	case errors.Is(err, domain.ErrSyncInProgress):
		s.logger.Info("sync already in progress, skipping trigger", "tenant_id", tenantID, "kind", kind)
	case errors.Is(err, context.Canceled):
	default:
		s.logger.Error("scheduled sync failed", "tenant_id", tenantID, "kind", kind, "error", err)
	}
}

func (s *Scheduler) gaugeJobs(delta float64) {
	if s.metrics != nil {
		s.metrics.ActiveJobs.Add(delta)
	}
}
