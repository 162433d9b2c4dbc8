package domain

import (
	"time"

	"github.com/google/uuid"
)

// SyncKind identifies which resource a sync run covers.
type SyncKind string

const (
	SyncKindCustomers SyncKind = "customers"
	SyncKindProducts  SyncKind = "products"
	SyncKindOrders    SyncKind = "orders"
	SyncKindFull      SyncKind = "full"
)

// ParseSyncKind validates a sync kind received from the outside.
func ParseSyncKind(s string) (SyncKind, bool) {
	switch SyncKind(s) {
	case SyncKindCustomers, SyncKindProducts, SyncKindOrders, SyncKindFull:
		return SyncKind(s), true
	}
	return "", false
}

// RunStatus is the lifecycle state of a sync run. A run transitions
// started -> completed or started -> failed exactly once.
type RunStatus string

const (
	RunStatusStarted   RunStatus = "started"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// SyncOutcome is the result of reconciling a single upstream record.
type SyncOutcome int

const (
	OutcomeCreated SyncOutcome = iota
	OutcomeUpdated
	OutcomeSkipped
)

// SyncResult aggregates per-record outcomes for one sync invocation.
type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

// Add merges another result into this one.
func (r *SyncResult) Add(other SyncResult) {
	r.Created += other.Created
	r.Updated += other.Updated
	r.Skipped += other.Skipped
	r.Total += other.Total
}

// Tally records one outcome.
func (r *SyncResult) Tally(outcome SyncOutcome) {
	r.Total++
	switch outcome {
	case OutcomeCreated:
		r.Created++
	case OutcomeUpdated:
		r.Updated++
	case OutcomeSkipped:
		r.Skipped++
	}
}

// FullSyncResult holds the per-kind results of a full sync.
type FullSyncResult struct {
	Customers SyncResult `json:"customers"`
	Products  SyncResult `json:"products"`
	Orders    SyncResult `json:"orders"`
}

// Combined returns the summed counts across all three resource kinds.
func (r FullSyncResult) Combined() SyncResult {
	var out SyncResult
	out.Add(r.Customers)
	out.Add(r.Products)
	out.Add(r.Orders)
	return out
}

// SyncRun is one audited execution of a sync operation. Rows are created
// with status started, updated exactly once to a terminal status, and
// never deleted, forming an append-only audit trail.
type SyncRun struct {
	ID               uuid.UUID  `json:"id"`
	TenantID         uuid.UUID  `json:"tenant_id"`
	Kind             SyncKind   `json:"kind"`
	Status           RunStatus  `json:"status"`
	RecordsProcessed int        `json:"records_processed"`
	RecordsCreated   int        `json:"records_created"`
	RecordsUpdated   int        `json:"records_updated"`
	RecordsSkipped   int        `json:"records_skipped"`
	ErrorMessage     string     `json:"error_message,omitempty"`
	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at"`
	DurationMS       int64      `json:"duration_ms"`
}
