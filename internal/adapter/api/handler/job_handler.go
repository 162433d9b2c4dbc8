package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/user/storesync/internal/domain"
	"github.com/user/storesync/internal/scheduler"
)

// JobScheduler is the part of the scheduler the HTTP layer needs.
type JobScheduler interface {
	Register(ctx context.Context, tenantID uuid.UUID, kind domain.SyncKind, interval time.Duration)
	Deregister(ctx context.Context, tenantID uuid.UUID, kind domain.SyncKind) bool
	List(ctx context.Context) []scheduler.Job
}

// JobHandler manages per-tenant recurring sync jobs.
type JobHandler struct {
	sched   JobScheduler
	tenants domain.TenantRepository
	logger  *slog.Logger
}

func NewJobHandler(sched JobScheduler, tenants domain.TenantRepository, logger *slog.Logger) *JobHandler {
	return &JobHandler{sched: sched, tenants: tenants, logger: logger.With("component", "job_handler")}
}

type registerJobRequest struct {
	Interval string `json:"interval"`
}

// Register handles POST /jobs/{tenantID}/{kind}.
func (h *JobHandler) Register(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := parseTenantID(w, r)
	if !ok {
		return
	}
	kind, ok := domain.ParseSyncKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown sync kind")
		return
	}

	var req registerJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	interval, err := time.ParseDuration(req.Interval)
	if err != nil || interval < time.Minute {
		writeError(w, http.StatusBadRequest, "interval must be a duration of at least 1m")
		return
	}

	tenant, err := h.tenants.FindByID(r.Context(), tenantID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if tenant == nil {
		writeDomainError(w, domain.ErrTenantNotFound)
		return
	}

	h.sched.Register(r.Context(), tenantID, kind, interval)
	writeJSON(w, http.StatusCreated, scheduler.Job{
		Key:      scheduler.JobKey{TenantID: tenantID, Kind: kind},
		Interval: interval,
	})
}

// Deregister handles DELETE /jobs/{tenantID}/{kind}. Deregistration is
// idempotent: deleting an absent job is a successful no-op.
func (h *JobHandler) Deregister(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := parseTenantID(w, r)
	if !ok {
		return
	}
	kind, ok := domain.ParseSyncKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown sync kind")
		return
	}

	if !h.sched.Deregister(r.Context(), tenantID, kind) {
		h.logger.Info("deregister of absent job", "tenant_id", tenantID, "kind", kind)
	}
	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /jobs.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs := h.sched.List(r.Context())
	if jobs == nil {
		jobs = []scheduler.Job{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}
