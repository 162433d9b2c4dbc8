package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/user/storesync/internal/domain"
)

func entityKey(tenantID uuid.UUID, externalID int64) string {
	return fmt.Sprintf("%s/%d", tenantID, externalID)
}

// MockTenantRepository is an in-memory implementation of
// domain.TenantRepository for testing.
type MockTenantRepository struct {
	mu              sync.Mutex
	Tenants         map[uuid.UUID]*domain.Tenant
	LastSyncUpdates []uuid.UUID
	FindErr         error
	ListErr         error
	UpdateErr       error
}

func NewMockTenantRepository() *MockTenantRepository {
	return &MockTenantRepository{Tenants: make(map[uuid.UUID]*domain.Tenant)}
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	t, ok := m.Tenants[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *MockTenantRepository) FindByDomain(ctx context.Context, shopifyDomain string) (*domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	for _, t := range m.Tenants {
		if t.ShopifyDomain == shopifyDomain {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockTenantRepository) ListActive(ctx context.Context) ([]domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []domain.Tenant
	for _, t := range m.Tenants {
		if t.IsActive {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *MockTenantRepository) Store(ctx context.Context, t *domain.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.Tenants[t.ID] = &cp
	return nil
}

func (m *MockTenantRepository) UpdateLastSync(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.LastSyncUpdates = append(m.LastSyncUpdates, id)
	return nil
}

// MockCustomerRepository is an in-memory implementation of
// domain.CustomerRepository for testing.
type MockCustomerRepository struct {
	mu        sync.Mutex
	Customers map[string]*domain.Customer
	Creates   int
	Updates   int
	FindErr   error
	CreateErr error
	UpdateErr error
}

func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{Customers: make(map[string]*domain.Customer)}
}

func (m *MockCustomerRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	c, ok := m.Customers[entityKey(tenantID, externalID)]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *MockCustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Creates++
	cp := *c
	m.Customers[entityKey(c.TenantID, c.ExternalID)] = &cp
	return nil
}

func (m *MockCustomerRepository) Update(ctx context.Context, c *domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.Updates++
	cp := *c
	m.Customers[entityKey(c.TenantID, c.ExternalID)] = &cp
	return nil
}

// MockProductRepository is an in-memory implementation of
// domain.ProductRepository for testing.
type MockProductRepository struct {
	mu        sync.Mutex
	Products  map[string]*domain.Product
	Creates   int
	Updates   int
	FindErr   error
	CreateErr error
	UpdateErr error
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{Products: make(map[string]*domain.Product)}
}

func (m *MockProductRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	p, ok := m.Products[entityKey(tenantID, externalID)]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *MockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Creates++
	cp := *p
	m.Products[entityKey(p.TenantID, p.ExternalID)] = &cp
	return nil
}

func (m *MockProductRepository) Update(ctx context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.Updates++
	cp := *p
	m.Products[entityKey(p.TenantID, p.ExternalID)] = &cp
	return nil
}

// MockOrderRepository is an in-memory implementation of
// domain.OrderRepository for testing.
type MockOrderRepository struct {
	mu         sync.Mutex
	Orders     map[string]*domain.Order
	Items      map[uuid.UUID][]domain.OrderItem
	Creates    int
	Updates    int
	FindErr    error
	CreateErr  error
	UpdateErr  error
	ReplaceErr error
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		Orders: make(map[string]*domain.Order),
		Items:  make(map[uuid.UUID][]domain.OrderItem),
	}
}

func (m *MockOrderRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	o, ok := m.Orders[entityKey(tenantID, externalID)]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (m *MockOrderRepository) Create(ctx context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Creates++
	cp := *o
	m.Orders[entityKey(o.TenantID, o.ExternalID)] = &cp
	return nil
}

func (m *MockOrderRepository) Update(ctx context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.Updates++
	cp := *o
	m.Orders[entityKey(o.TenantID, o.ExternalID)] = &cp
	return nil
}

func (m *MockOrderRepository) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []domain.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReplaceErr != nil {
		return m.ReplaceErr
	}
	m.Items[orderID] = append([]domain.OrderItem(nil), items...)
	return nil
}

func (m *MockOrderRepository) ListItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.OrderItem(nil), m.Items[orderID]...), nil
}

// MockSyncRunRepository is an in-memory implementation of
// domain.SyncRunRepository for testing. Runs holds every created run in
// creation order; Complete mutates the stored run in place.
type MockSyncRunRepository struct {
	mu          sync.Mutex
	Runs        []*domain.SyncRun
	CreateErr   error
	CompleteErr error
}

func NewMockSyncRunRepository() *MockSyncRunRepository {
	return &MockSyncRunRepository{}
}

func (m *MockSyncRunRepository) Create(ctx context.Context, run *domain.SyncRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	cp := *run
	m.Runs = append(m.Runs, &cp)
	return nil
}

func (m *MockSyncRunRepository) Complete(ctx context.Context, run *domain.SyncRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CompleteErr != nil {
		return m.CompleteErr
	}
	for i, r := range m.Runs {
		if r.ID == run.ID {
			cp := *run
			m.Runs[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("sync run %s not found", run.ID)
}

func (m *MockSyncRunRepository) LatestByTenant(ctx context.Context, tenantID uuid.UUID, kind *domain.SyncKind) (*domain.SyncRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Runs) - 1; i >= 0; i-- {
		r := m.Runs[i]
		if r.TenantID != tenantID {
			continue
		}
		if kind != nil && r.Kind != *kind {
			continue
		}
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (m *MockSyncRunRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]domain.SyncRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.SyncRun
	for i := len(m.Runs) - 1; i >= 0 && len(out) < limit; i-- {
		if m.Runs[i].TenantID == tenantID {
			out = append(out, *m.Runs[i])
		}
	}
	return out, nil
}

// MockSyncLeaseRepository is an in-memory implementation of
// domain.SyncLeaseRepository for testing.
type MockSyncLeaseRepository struct {
	mu         sync.Mutex
	Held       map[string]bool
	AcquireErr error
}

func NewMockSyncLeaseRepository() *MockSyncLeaseRepository {
	return &MockSyncLeaseRepository{Held: make(map[string]bool)}
}

func leaseKey(tenantID uuid.UUID, kind domain.SyncKind) string {
	return fmt.Sprintf("%s/%s", tenantID, kind)
}

func (m *MockSyncLeaseRepository) Acquire(ctx context.Context, tenantID uuid.UUID, kind domain.SyncKind) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AcquireErr != nil {
		return false, m.AcquireErr
	}
	key := leaseKey(tenantID, kind)
	if m.Held[key] {
		return false, nil
	}
	m.Held[key] = true
	return true, nil
}

func (m *MockSyncLeaseRepository) Release(ctx context.Context, tenantID uuid.UUID, kind domain.SyncKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Held, leaseKey(tenantID, kind))
	return nil
}
