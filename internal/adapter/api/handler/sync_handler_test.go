package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/user/storesync/internal/domain"
	"github.com/user/storesync/internal/usecase"
)

type stubSyncService struct {
	result   domain.SyncResult
	full     domain.FullSyncResult
	status   *usecase.TenantSyncStatus
	runs     []domain.SyncRun
	err      error
	lastKind domain.SyncKind
}

func (s *stubSyncService) SyncCustomers(ctx context.Context, tenantID uuid.UUID) (domain.SyncResult, error) {
	s.lastKind = domain.SyncKindCustomers
	return s.result, s.err
}

func (s *stubSyncService) SyncProducts(ctx context.Context, tenantID uuid.UUID) (domain.SyncResult, error) {
	s.lastKind = domain.SyncKindProducts
	return s.result, s.err
}

func (s *stubSyncService) SyncOrders(ctx context.Context, tenantID uuid.UUID) (domain.SyncResult, error) {
	s.lastKind = domain.SyncKindOrders
	return s.result, s.err
}

func (s *stubSyncService) FullSync(ctx context.Context, tenantID uuid.UUID) (domain.FullSyncResult, error) {
	s.lastKind = domain.SyncKindFull
	return s.full, s.err
}

func (s *stubSyncService) Status(ctx context.Context, tenantID uuid.UUID) (*usecase.TenantSyncStatus, error) {
	return s.status, s.err
}

func (s *stubSyncService) LatestRun(ctx context.Context, tenantID uuid.UUID, kind *domain.SyncKind) (*domain.SyncRun, error) {
	if s.err != nil || len(s.runs) == 0 {
		return nil, s.err
	}
	return &s.runs[0], nil
}

func (s *stubSyncService) RecentRuns(ctx context.Context, tenantID uuid.UUID, limit int) ([]domain.SyncRun, error) {
	return s.runs, s.err
}

func newSyncTestServer(svc SyncService) *httptest.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewSyncHandler(svc, logger)

	r := chi.NewRouter()
	r.Post("/sync/{tenantID}/{kind}", h.Trigger)
	r.Get("/sync/{tenantID}/status", h.Status)
	r.Get("/sync/{tenantID}/runs", h.Runs)
	return httptest.NewServer(r)
}

func TestSyncHandler_Trigger(t *testing.T) {
	tenantID := uuid.New()

	t.Run("Returns Sync Counts", func(t *testing.T) {
		svc := &stubSyncService{result: domain.SyncResult{Created: 3, Updated: 2, Total: 5}}
		server := newSyncTestServer(svc)
		defer server.Close()

		resp, err := http.Post(server.URL+"/sync/"+tenantID.String()+"/customers", "application/json", nil)
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		if svc.lastKind != domain.SyncKindCustomers {
			t.Errorf("dispatched kind = %s, want customers", svc.lastKind)
		}

		var result domain.SyncResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if result.Created != 3 || result.Updated != 2 {
			t.Errorf("result = %+v", result)
		}
	})

	t.Run("Full Sync Returns Per Kind Counts", func(t *testing.T) {
		svc := &stubSyncService{full: domain.FullSyncResult{
			Customers: domain.SyncResult{Created: 1, Total: 1},
			Orders:    domain.SyncResult{Updated: 2, Total: 2},
		}}
		server := newSyncTestServer(svc)
		defer server.Close()

		resp, err := http.Post(server.URL+"/sync/"+tenantID.String()+"/full", "application/json", nil)
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}

		var result domain.FullSyncResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if result.Customers.Created != 1 || result.Orders.Updated != 2 {
			t.Errorf("result = %+v", result)
		}
	})

	t.Run("Error Mapping", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
			want int
		}{
			{"Tenant Not Found", domain.ErrTenantNotFound, http.StatusNotFound},
			{"Tenant Inactive", domain.ErrTenantInactive, http.StatusConflict},
			{"Sync In Progress", domain.ErrSyncInProgress, http.StatusConflict},
			{"Upstream Failure", &domain.UpstreamError{StatusCode: 500, Resource: "orders"}, http.StatusBadGateway},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server := newSyncTestServer(&stubSyncService{err: tt.err})
				defer server.Close()

				resp, err := http.Post(server.URL+"/sync/"+tenantID.String()+"/orders", "application/json", nil)
				if err != nil {
					t.Fatalf("post: %v", err)
				}
				resp.Body.Close()

				if resp.StatusCode != tt.want {
					t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
				}
			})
		}
	})

	t.Run("Bad Inputs", func(t *testing.T) {
		server := newSyncTestServer(&stubSyncService{})
		defer server.Close()

		resp, err := http.Post(server.URL+"/sync/not-a-uuid/customers", "application/json", nil)
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("invalid tenant id: status = %d, want 400", resp.StatusCode)
		}

		resp, err = http.Post(server.URL+"/sync/"+tenantID.String()+"/inventory", "application/json", nil)
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("unknown kind: status = %d, want 400", resp.StatusCode)
		}
	})
}

func TestSyncHandler_Runs(t *testing.T) {
	tenantID := uuid.New()

	t.Run("Returns Run History", func(t *testing.T) {
		svc := &stubSyncService{runs: []domain.SyncRun{
			{ID: uuid.New(), TenantID: tenantID, Kind: domain.SyncKindOrders, Status: domain.RunStatusCompleted},
		}}
		server := newSyncTestServer(svc)
		defer server.Close()

		resp, err := http.Get(server.URL + "/sync/" + tenantID.String() + "/runs")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		var body struct {
			Runs []domain.SyncRun `json:"runs"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(body.Runs) != 1 || body.Runs[0].Kind != domain.SyncKindOrders {
			t.Errorf("runs = %+v", body.Runs)
		}
	})

	t.Run("Kind Filter Returns Latest Of Kind", func(t *testing.T) {
		svc := &stubSyncService{runs: []domain.SyncRun{
			{ID: uuid.New(), TenantID: tenantID, Kind: domain.SyncKindFull, Status: domain.RunStatusCompleted},
		}}
		server := newSyncTestServer(svc)
		defer server.Close()

		resp, err := http.Get(server.URL + "/sync/" + tenantID.String() + "/runs?kind=full")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		defer resp.Body.Close()

		var body struct {
			Runs []domain.SyncRun `json:"runs"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(body.Runs) != 1 || body.Runs[0].Kind != domain.SyncKindFull {
			t.Errorf("runs = %+v", body.Runs)
		}

		resp, err = http.Get(server.URL + "/sync/" + tenantID.String() + "/runs?kind=everything")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("unknown kind filter: status = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("Rejects Invalid Limit", func(t *testing.T) {
		server := newSyncTestServer(&stubSyncService{})
		defer server.Close()

		resp, err := http.Get(server.URL + "/sync/" + tenantID.String() + "/runs?limit=zero")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})
}
