package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/user/storesync/internal/domain"
)

// OrderRepository is the SQL implementation of domain.OrderRepository.
type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, customer_id, external_id, order_number, email,
		       financial_status, fulfillment_status, currency, total_price,
		       subtotal_price, total_tax, total_discounts, total_weight, tags, note,
		       processed_at, cancelled_at, closed_at, created_at, updated_at
		FROM orders WHERE tenant_id = $1 AND external_id = $2`,
		tenantID, externalID)

	var o domain.Order
	var customerID uuid.NullUUID
	var processedAt, cancelledAt, closedAt sql.NullTime
	err := row.Scan(&o.ID, &o.TenantID, &customerID, &o.ExternalID, &o.OrderNumber,
		&o.Email, &o.FinancialStatus, &o.FulfillmentStatus, &o.Currency, &o.TotalPrice,
		&o.SubtotalPrice, &o.TotalTax, &o.TotalDiscounts, &o.TotalWeight, &o.Tags,
		&o.Note, &processedAt, &cancelledAt, &closedAt, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	if customerID.Valid {
		o.CustomerID = &customerID.UUID
	}
	o.ProcessedAt = timePtr(processedAt)
	o.CancelledAt = timePtr(cancelledAt)
	o.ClosedAt = timePtr(closedAt)
	return &o, nil
}

func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (id, tenant_id, customer_id, external_id, order_number, email,
			financial_status, fulfillment_status, currency, total_price, subtotal_price,
			total_tax, total_discounts, total_weight, tags, note, processed_at,
			cancelled_at, closed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		o.ID, o.TenantID, uuidArg(o.CustomerID), o.ExternalID, o.OrderNumber, o.Email,
		o.FinancialStatus, o.FulfillmentStatus, o.Currency, o.TotalPrice, o.SubtotalPrice,
		o.TotalTax, o.TotalDiscounts, o.TotalWeight, o.Tags, o.Note, o.ProcessedAt,
		o.CancelledAt, o.ClosedAt, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *OrderRepository) Update(ctx context.Context, o *domain.Order) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE orders SET customer_id = $1, order_number = $2, email = $3,
			financial_status = $4, fulfillment_status = $5, currency = $6,
			total_price = $7, subtotal_price = $8, total_tax = $9, total_discounts = $10,
			total_weight = $11, tags = $12, note = $13, processed_at = $14,
			cancelled_at = $15, closed_at = $16, created_at = $17, updated_at = $18
		WHERE id = $19`,
		uuidArg(o.CustomerID), o.OrderNumber, o.Email, o.FinancialStatus,
		o.FulfillmentStatus, o.Currency, o.TotalPrice, o.SubtotalPrice, o.TotalTax,
		o.TotalDiscounts, o.TotalWeight, o.Tags, o.Note, o.ProcessedAt, o.CancelledAt,
		o.ClosedAt, o.CreatedAt, o.UpdatedAt, o.ID)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return nil
}

// ReplaceItems swaps the order's entire line-item set inside one
// transaction.
func (r *OrderRepository) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []domain.OrderItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin item replacement: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("clear order items: %w", err)
	}

	for _, it := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, external_variant_id, title,
				variant_title, sku, vendor, quantity, price, total_discount,
				fulfillable_quantity, fulfillment_status, requires_shipping, taxable,
				gift_card, properties)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
			it.ID, orderID, uuidArg(it.ProductID), it.ExternalVariantID, it.Title,
			it.VariantTitle, it.SKU, it.Vendor, it.Quantity, it.Price, it.TotalDiscount,
			it.FulfillableQuantity, it.FulfillmentStatus, it.RequiresShipping, it.Taxable,
			it.GiftCard, jsonArg(it.Properties))
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit item replacement: %w", err)
	}
	return nil
}

func (r *OrderRepository) ListItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, external_variant_id, title, variant_title, sku,
		       vendor, quantity, price, total_discount, fulfillable_quantity,
		       fulfillment_status, requires_shipping, taxable, gift_card, properties
		FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		var productID uuid.NullUUID
		err := rows.Scan(&it.ID, &it.OrderID, &productID, &it.ExternalVariantID, &it.Title,
			&it.VariantTitle, &it.SKU, &it.Vendor, &it.Quantity, &it.Price,
			&it.TotalDiscount, &it.FulfillableQuantity, &it.FulfillmentStatus,
			&it.RequiresShipping, &it.Taxable, &it.GiftCard, &it.Properties)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if productID.Valid {
			it.ProductID = &productID.UUID
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// uuidArg maps a nil UUID pointer to NULL.
func uuidArg(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
