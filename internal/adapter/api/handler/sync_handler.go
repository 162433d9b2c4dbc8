package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/user/storesync/internal/domain"
	"github.com/user/storesync/internal/usecase"
)

// SyncService is the part of the sync service the HTTP layer needs.
type SyncService interface {
	SyncCustomers(ctx context.Context, tenantID uuid.UUID) (domain.SyncResult, error)
	SyncProducts(ctx context.Context, tenantID uuid.UUID) (domain.SyncResult, error)
	SyncOrders(ctx context.Context, tenantID uuid.UUID) (domain.SyncResult, error)
	FullSync(ctx context.Context, tenantID uuid.UUID) (domain.FullSyncResult, error)
	Status(ctx context.Context, tenantID uuid.UUID) (*usecase.TenantSyncStatus, error)
	LatestRun(ctx context.Context, tenantID uuid.UUID, kind *domain.SyncKind) (*domain.SyncRun, error)
	RecentRuns(ctx context.Context, tenantID uuid.UUID, limit int) ([]domain.SyncRun, error)
}

// SyncHandler serves manual sync triggers and sync history.
type SyncHandler struct {
	svc    SyncService
	logger *slog.Logger
}

func NewSyncHandler(svc SyncService, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{svc: svc, logger: logger.With("component", "sync_handler")}
}

// Trigger handles POST /sync/{tenantID}/{kind}.
func (h *SyncHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := parseTenantID(w, r)
	if !ok {
		return
	}
	kind, ok := domain.ParseSyncKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown sync kind")
		return
	}

	ctx := r.Context()
	var payload any
	var err error
	switch kind {
	case domain.SyncKindCustomers:
		payload, err = h.svc.SyncCustomers(ctx, tenantID)
	case domain.SyncKindProducts:
		payload, err = h.svc.SyncProducts(ctx, tenantID)
	case domain.SyncKindOrders:
		payload, err = h.svc.SyncOrders(ctx, tenantID)
	case domain.SyncKindFull:
		payload, err = h.svc.FullSync(ctx, tenantID)
	}
	if err != nil {
		h.logger.Error("manual sync failed", "tenant_id", tenantID, "kind", kind, "error", err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payload)
}

// Status handles GET /sync/{tenantID}/status.
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := parseTenantID(w, r)
	if !ok {
		return
	}

	status, err := h.svc.Status(r.Context(), tenantID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// Runs handles GET /sync/{tenantID}/runs. With ?kind= it returns only
// the latest run of that kind.
func (h *SyncHandler) Runs(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := parseTenantID(w, r)
	if !ok {
		return
	}

	if raw := r.URL.Query().Get("kind"); raw != "" {
		kind, ok := domain.ParseSyncKind(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown sync kind")
			return
		}
		run, err := h.svc.LatestRun(r.Context(), tenantID, &kind)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		runs := []domain.SyncRun{}
		if run != nil {
			runs = append(runs, *run)
		}
		writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, 100)
	}

	runs, err := h.svc.RecentRuns(r.Context(), tenantID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func parseTenantID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	tenantID, err := uuid.Parse(chi.URLParam(r, "tenantID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tenant id")
		return uuid.Nil, false
	}
	return tenantID, true
}
