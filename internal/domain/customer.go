package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer is the local mirror of an upstream customer record.
// (TenantID, ExternalID) is the idempotency key for reconciliation.
type Customer struct {
	ID               uuid.UUID `json:"id"`
	TenantID         uuid.UUID `json:"tenant_id"`
	ExternalID       int64     `json:"external_id"`
	Email            string    `json:"email"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Phone            string    `json:"phone"`
	TotalSpent       float64   `json:"total_spent"`
	OrdersCount      int       `json:"orders_count"`
	AcceptsMarketing bool      `json:"accepts_marketing"`
	Tags             string    `json:"tags"`
	State            string    `json:"state"`
	Note             string    `json:"note"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
