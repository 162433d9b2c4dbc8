package shopify

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Raw record shapes as returned by the Shopify Admin REST API. Only the
// fields the reconcilers map are declared; everything else is ignored.
// Money fields arrive as strings ("199.00") and are parsed with
// ParseAmount.

// CustomerRecord is one element of the customers collection.
type CustomerRecord struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Phone            string    `json:"phone"`
	TotalSpent       string    `json:"total_spent"`
	OrdersCount      int       `json:"orders_count"`
	AcceptsMarketing bool      `json:"accepts_marketing"`
	Tags             string    `json:"tags"`
	State            string    `json:"state"`
	Note             string    `json:"note"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProductRecord is one element of the products collection. Images,
// variants, and options are passed through as raw JSON.
type ProductRecord struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Handle      string          `json:"handle"`
	BodyHTML    string          `json:"body_html"`
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

// OrderRecord is one element of the orders collection.
type OrderRecord struct {
	ID                int64            `json:"id"`
	OrderNumber       int64            `json:"order_number"`
	Email             string           `json:"email"`
	FinancialStatus   string           `json:"financial_status"`
	FulfillmentStatus string           `json:"fulfillment_status"`
	Currency          string           `json:"currency"`
	TotalPrice        string           `json:"total_price"`
	SubtotalPrice     string           `json:"subtotal_price"`
	TotalTax          string           `json:"total_tax"`
	TotalDiscounts    string           `json:"total_discounts"`
	TotalWeight       float64          `json:"total_weight"`
	Tags              string           `json:"tags"`
	Note              string           `json:"note"`
	ProcessedAt       *time.Time       `json:"processed_at"`
	CancelledAt       *time.Time       `json:"cancelled_at"`
	ClosedAt          *time.Time       `json:"closed_at"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	Customer          *CustomerRef     `json:"customer"`
	LineItems         []LineItemRecord `json:"line_items"`
}

// CustomerRef is the embedded customer reference on an order.
type CustomerRef struct {
	ID int64 `json:"id"`
}

// LineItemRecord is one line item of an order. ProductID is nil for
// custom line items that reference no product.
type LineItemRecord struct {
	ID                  int64           `json:"id"`
	VariantID           int64           `json:"variant_id"`
	ProductID           *int64          `json:"product_id"`
	Title               string          `json:"title"`
	VariantTitle        string          `json:"variant_title"`
	SKU                 string          `json:"sku"`
	Vendor              string          `json:"vendor"`
	Quantity            int             `json:"quantity"`
	Price               string          `json:"price"`
	TotalDiscount       string          `json:"total_discount"`
	FulfillableQuantity int             `json:"fulfillable_quantity"`
	FulfillmentStatus   string          `json:"fulfillment_status"`
	RequiresShipping    bool            `json:"requires_shipping"`
	Taxable             bool            `json:"taxable"`
	GiftCard            bool            `json:"gift_card"`
	Properties          json.RawMessage `json:"properties"`
}

// ParseAmount converts a Shopify money string to a float64. Empty
// strings mean zero.
func ParseAmount(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return v, nil
}
