package domain

import (
	"context"

	"github.com/google/uuid"
)

// TenantRepository defines the interface for tenant persistence.
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindByDomain(ctx context.Context, shopifyDomain string) (*Tenant, error)
	ListActive(ctx context.Context) ([]Tenant, error)
	Store(ctx context.Context, t *Tenant) error
	// UpdateLastSync records the completion time of the tenant's most
	// recent successful full sync.
	UpdateLastSync(ctx context.Context, id uuid.UUID) error
}

// CustomerRepository persists local customer mirrors. FindByExternalID
// returns (nil, nil) when no row exists for (tenantID, externalID).
type CustomerRepository interface {
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*Customer, error)
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
}

// ProductRepository persists local product mirrors.
type ProductRepository interface {
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
}

// OrderRepository persists local order mirrors and their line items.
type OrderRepository interface {
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*Order, error)
	Create(ctx context.Context, o *Order) error
	Update(ctx context.Context, o *Order) error

	// ReplaceItems atomically replaces the full line-item set of an
	// order: all prior items are discarded and the given set inserted
	// in a single transaction, so a concurrent reader never observes a
	// zero-item order.
	ReplaceItems(ctx context.Context, orderID uuid.UUID, items []OrderItem) error
	ListItems(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error)
}

// SyncRunRepository records the append-only sync audit trail.
type SyncRunRepository interface {
	Create(ctx context.Context, run *SyncRun) error
	// Complete writes the terminal state of a run: status, counts,
	// completion time, duration, and error message. Called exactly once
	// per run.
	Complete(ctx context.Context, run *SyncRun) error
	LatestByTenant(ctx context.Context, tenantID uuid.UUID, kind *SyncKind) (*SyncRun, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]SyncRun, error)
}

// SyncLeaseRepository provides mutual exclusion between concurrently
// triggered syncs of the same (tenant, kind), e.g. a manual sync
// overlapping a scheduled one.
type SyncLeaseRepository interface {
	// Acquire attempts to take the lease. It returns false when the
	// lease is already held by another invocation.
	Acquire(ctx context.Context, tenantID uuid.UUID, kind SyncKind) (bool, error)
	Release(ctx context.Context, tenantID uuid.UUID, kind SyncKind) error
}

// APIKeyRepository defines the interface for validating API keys.
type APIKeyRepository interface {
	// IsValid checks if the provided API key is valid and active.
	// Implementations should handle caching to reduce database load.
	IsValid(ctx context.Context, key string) (bool, error)
}
