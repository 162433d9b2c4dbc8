package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Product is the local mirror of an upstream product record. Images,
// variants, and options are kept as raw JSON documents; the engine never
// inspects them.
type Product struct {
	ID          uuid.UUID       `json:"id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	ExternalID  int64           `json:"external_id"`
	Title       string          `json:"title"`
	Handle      string          `json:"handle"`
	Description string          `json:"description"`
	Vendor      string          `json:"vendor"`
	ProductType string          `json:"product_type"`
	Tags        string          `json:"tags"`
	Status      string          `json:"status"`
	Images      json.RawMessage `json:"images"`
	Variants    json.RawMessage `json:"variants"`
	Options     json.RawMessage `json:"options"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
