package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/user/storesync/internal/adapter/api/handler"
	"github.com/user/storesync/internal/domain"
	"github.com/user/storesync/internal/domain/mocks"
	"github.com/user/storesync/internal/scheduler"
	"github.com/user/storesync/internal/usecase"
)

type stubKeys struct {
	valid map[string]bool
}

func (s *stubKeys) IsValid(ctx context.Context, key string) (bool, error) {
	return s.valid[key], nil
}

type stubService struct{}

func (stubService) SyncCustomers(context.Context, uuid.UUID) (domain.SyncResult, error) {
	return domain.SyncResult{}, nil
}
func (stubService) SyncProducts(context.Context, uuid.UUID) (domain.SyncResult, error) {
	return domain.SyncResult{}, nil
}
func (stubService) SyncOrders(context.Context, uuid.UUID) (domain.SyncResult, error) {
	return domain.SyncResult{}, nil
}
func (stubService) FullSync(context.Context, uuid.UUID) (domain.FullSyncResult, error) {
	return domain.FullSyncResult{}, nil
}
func (stubService) Status(context.Context, uuid.UUID) (*usecase.TenantSyncStatus, error) {
	return &usecase.TenantSyncStatus{}, nil
}
func (stubService) LatestRun(context.Context, uuid.UUID, *domain.SyncKind) (*domain.SyncRun, error) {
	return nil, nil
}
func (stubService) RecentRuns(context.Context, uuid.UUID, int) ([]domain.SyncRun, error) {
	return nil, nil
}

type stubScheduler struct {
	registered   []scheduler.Job
	deregistered []scheduler.JobKey
}

func (s *stubScheduler) Register(ctx context.Context, tenantID uuid.UUID, kind domain.SyncKind, interval time.Duration) {
	s.registered = append(s.registered, scheduler.Job{
		Key:      scheduler.JobKey{TenantID: tenantID, Kind: kind},
		Interval: interval,
	})
}

func (s *stubScheduler) Deregister(ctx context.Context, tenantID uuid.UUID, kind domain.SyncKind) bool {
	s.deregistered = append(s.deregistered, scheduler.JobKey{TenantID: tenantID, Kind: kind})
	return len(s.registered) > 0
}

func (s *stubScheduler) List(ctx context.Context) []scheduler.Job {
	return s.registered
}

func newTestRouter(t *testing.T, tenants domain.TenantRepository, sched *stubScheduler) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(
		handler.NewSyncHandler(stubService{}, logger),
		handler.NewJobHandler(sched, tenants, logger),
		&stubKeys{valid: map[string]bool{"good-key": true}},
		logger,
	)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func doRequest(t *testing.T, method, url, key string, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func TestRouter_Auth(t *testing.T) {
	server := newTestRouter(t, mocks.NewMockTenantRepository(), &stubScheduler{})

	t.Run("Health Is Open", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, server.URL+"/health", "", "")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
	})

	t.Run("Missing Key Rejected", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, server.URL+"/api/v1/jobs", "", "")
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("Invalid Key Rejected", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, server.URL+"/api/v1/jobs", "bad-key", "")
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("Valid Key Passes", func(t *testing.T) {
		resp := doRequest(t, http.MethodGet, server.URL+"/api/v1/jobs", "good-key", "")
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
	})
}

func TestRouter_Jobs(t *testing.T) {
	tenants := mocks.NewMockTenantRepository()
	tenant := &domain.Tenant{ID: uuid.New(), IsActive: true}
	tenants.Tenants[tenant.ID] = tenant

	t.Run("Register Job", func(t *testing.T) {
		sched := &stubScheduler{}
		server := newTestRouter(t, tenants, sched)

		resp := doRequest(t, http.MethodPost,
			server.URL+"/api/v1/jobs/"+tenant.ID.String()+"/orders", "good-key",
			`{"interval":"30m"}`)
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want 201", resp.StatusCode)
		}
		if len(sched.registered) != 1 || sched.registered[0].Interval != 30*time.Minute {
			t.Errorf("registered = %+v", sched.registered)
		}
	})

	t.Run("Register Rejects Short Interval", func(t *testing.T) {
		sched := &stubScheduler{}
		server := newTestRouter(t, tenants, sched)

		resp := doRequest(t, http.MethodPost,
			server.URL+"/api/v1/jobs/"+tenant.ID.String()+"/orders", "good-key",
			`{"interval":"5s"}`)
		resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
		if len(sched.registered) != 0 {
			t.Errorf("expected no registration, got %+v", sched.registered)
		}
	})

	t.Run("Register Unknown Tenant", func(t *testing.T) {
		sched := &stubScheduler{}
		server := newTestRouter(t, tenants, sched)

		resp := doRequest(t, http.MethodPost,
			server.URL+"/api/v1/jobs/"+uuid.NewString()+"/orders", "good-key",
			`{"interval":"30m"}`)
		resp.Body.Close()

		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
	})

	t.Run("Deregister Is Idempotent", func(t *testing.T) {
		sched := &stubScheduler{}
		server := newTestRouter(t, tenants, sched)

		// No job registered: deleting is still a successful no-op.
		resp := doRequest(t, http.MethodDelete,
			server.URL+"/api/v1/jobs/"+tenant.ID.String()+"/orders", "good-key", "")
		resp.Body.Close()

		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("status = %d, want 204", resp.StatusCode)
		}
		if len(sched.deregistered) != 1 {
			t.Errorf("expected deregister to reach the scheduler, got %+v", sched.deregistered)
		}
	})

	t.Run("List Jobs", func(t *testing.T) {
		sched := &stubScheduler{registered: []scheduler.Job{
			{Key: scheduler.JobKey{TenantID: tenant.ID, Kind: domain.SyncKindOrders}, Interval: time.Hour},
		}}
		server := newTestRouter(t, tenants, sched)

		resp := doRequest(t, http.MethodGet, server.URL+"/api/v1/jobs", "good-key", "")
		defer resp.Body.Close()

		var body struct {
			Jobs []scheduler.Job `json:"jobs"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(body.Jobs) != 1 || body.Jobs[0].Key.Kind != domain.SyncKindOrders {
			t.Errorf("jobs = %+v", body.Jobs)
		}
	})
}
