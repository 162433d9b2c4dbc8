package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Order is the local mirror of an upstream order. CustomerID is nil when
// the owning customer has not been reconciled for this tenant yet.
type Order struct {
	ID                uuid.UUID  `json:"id"`
	TenantID          uuid.UUID  `json:"tenant_id"`
	CustomerID        *uuid.UUID `json:"customer_id"`
	ExternalID        int64      `json:"external_id"`
	OrderNumber       string     `json:"order_number"`
	Email             string     `json:"email"`
	FinancialStatus   string     `json:"financial_status"`
	FulfillmentStatus string     `json:"fulfillment_status"`
	Currency          string     `json:"currency"`
	TotalPrice        float64    `json:"total_price"`
	SubtotalPrice     float64    `json:"subtotal_price"`
	TotalTax          float64    `json:"total_tax"`
	TotalDiscounts    float64    `json:"total_discounts"`
	TotalWeight       float64    `json:"total_weight"`
	Tags              string     `json:"tags"`
	Note              string     `json:"note"`
	ProcessedAt       *time.Time `json:"processed_at"`
	CancelledAt       *time.Time `json:"cancelled_at"`
	ClosedAt          *time.Time `json:"closed_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// OrderItem is one line item of an order. Items are owned exclusively by
// their order and are replaced as a set on every order sync, because the
// upstream does not provide a stable line-item identity safe to diff
// against. ProductID is nil when the product has not been reconciled.
type OrderItem struct {
	ID                  uuid.UUID       `json:"id"`
	OrderID             uuid.UUID       `json:"order_id"`
	ProductID           *uuid.UUID      `json:"product_id"`
	ExternalVariantID   int64           `json:"external_variant_id"`
	Title               string          `json:"title"`
	VariantTitle        string          `json:"variant_title"`
	SKU                 string          `json:"sku"`
	Vendor              string          `json:"vendor"`
	Quantity            int             `json:"quantity"`
	Price               float64         `json:"price"`
	TotalDiscount       float64         `json:"total_discount"`
	FulfillableQuantity int             `json:"fulfillable_quantity"`
	FulfillmentStatus   string          `json:"fulfillment_status"`
	RequiresShipping    bool            `json:"requires_shipping"`
	Taxable             bool            `json:"taxable"`
	GiftCard            bool            `json:"gift_card"`
	Properties          json.RawMessage `json:"properties"`
}
