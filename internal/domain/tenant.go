package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tenant represents one onboarded store whose data is isolated from all
// others. The Shopify domain is unique across tenants.
type Tenant struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	ShopifyDomain string     `json:"shopify_domain"`
	AccessToken   string     `json:"-"` // Not exposed in API responses
	WebhookSecret string     `json:"-"`
	IsActive      bool       `json:"is_active"`
	LastSyncAt    *time.Time `json:"last_sync_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
