package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/user/storesync/internal/domain"
)

func testOrder(tenantID uuid.UUID, externalID int64) *domain.Order {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Order{
		ID:              uuid.New(),
		TenantID:        tenantID,
		ExternalID:      externalID,
		OrderNumber:     "1001",
		Email:           "jane@example.com",
		FinancialStatus: "paid",
		Currency:        "USD",
		TotalPrice:      59.99,
		SubtotalPrice:   49.99,
		TotalTax:        10,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func testItem(orderID uuid.UUID, title string) domain.OrderItem {
	return domain.OrderItem{
		ID:                uuid.New(),
		OrderID:           orderID,
		ExternalVariantID: 11,
		Title:             title,
		SKU:               "SKU-" + title,
		Quantity:          1,
		Price:             9.99,
		RequiresShipping:  true,
		Taxable:           true,
		Properties:        json.RawMessage(`[{"name":"engraving","value":"JD"}]`),
	}
}

func TestOrderRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create And Find With Customer Ref", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewOrderRepository(db)
		tenant := seedTenant(t, db)

		customer := testCustomer(tenant.ID, 42)
		if err := NewCustomerRepository(db).Create(ctx, customer); err != nil {
			t.Fatalf("create customer: %v", err)
		}

		order := testOrder(tenant.ID, 500)
		order.CustomerID = &customer.ID
		processed := time.Now().UTC().Truncate(time.Second)
		order.ProcessedAt = &processed
		if err := repo.Create(ctx, order); err != nil {
			t.Fatalf("create order: %v", err)
		}

		found, err := repo.FindByExternalID(ctx, tenant.ID, 500)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if found == nil {
			t.Fatal("expected order, got nil")
		}
		if found.CustomerID == nil || *found.CustomerID != customer.ID {
			t.Errorf("customer ref = %v, want %s", found.CustomerID, customer.ID)
		}
		if found.ProcessedAt == nil || !found.ProcessedAt.Equal(processed) {
			t.Errorf("processed at = %v, want %v", found.ProcessedAt, processed)
		}
		if found.CancelledAt != nil {
			t.Errorf("expected nil cancelled at, got %v", found.CancelledAt)
		}
	})

	t.Run("Nil Customer Ref Roundtrips", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewOrderRepository(db)
		tenant := seedTenant(t, db)

		if err := repo.Create(ctx, testOrder(tenant.ID, 501)); err != nil {
			t.Fatalf("create: %v", err)
		}

		found, err := repo.FindByExternalID(ctx, tenant.ID, 501)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if found.CustomerID != nil {
			t.Errorf("expected nil customer ref, got %v", found.CustomerID)
		}
	})

	t.Run("Replace Items Swaps The Set", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewOrderRepository(db)
		tenant := seedTenant(t, db)

		order := testOrder(tenant.ID, 502)
		if err := repo.Create(ctx, order); err != nil {
			t.Fatalf("create: %v", err)
		}

		first := []domain.OrderItem{testItem(order.ID, "A"), testItem(order.ID, "B")}
		if err := repo.ReplaceItems(ctx, order.ID, first); err != nil {
			t.Fatalf("first replace: %v", err)
		}

		second := []domain.OrderItem{testItem(order.ID, "B"), testItem(order.ID, "C")}
		if err := repo.ReplaceItems(ctx, order.ID, second); err != nil {
			t.Fatalf("second replace: %v", err)
		}

		items, err := repo.ListItems(ctx, order.ID)
		if err != nil {
			t.Fatalf("list items: %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
		titles := map[string]bool{}
		for _, it := range items {
			titles[it.Title] = true
		}
		if !titles["B"] || !titles["C"] || titles["A"] {
			t.Errorf("expected items {B, C}, got %v", titles)
		}
	})

	t.Run("Replace With Empty Set Clears Items", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewOrderRepository(db)
		tenant := seedTenant(t, db)

		order := testOrder(tenant.ID, 503)
		if err := repo.Create(ctx, order); err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := repo.ReplaceItems(ctx, order.ID, []domain.OrderItem{testItem(order.ID, "A")}); err != nil {
			t.Fatalf("replace: %v", err)
		}
		if err := repo.ReplaceItems(ctx, order.ID, nil); err != nil {
			t.Fatalf("clear: %v", err)
		}

		items, err := repo.ListItems(ctx, order.ID)
		if err != nil {
			t.Fatalf("list items: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("expected no items, got %d", len(items))
		}
	})

	t.Run("Item Product Ref Roundtrips", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewOrderRepository(db)
		tenant := seedTenant(t, db)

		now := time.Now().UTC().Truncate(time.Second)
		product := &domain.Product{
			ID: uuid.New(), TenantID: tenant.ID, ExternalID: 7, Title: "Shirt",
			CreatedAt: now, UpdatedAt: now,
		}
		if err := NewProductRepository(db).Create(ctx, product); err != nil {
			t.Fatalf("create product: %v", err)
		}

		order := testOrder(tenant.ID, 504)
		if err := repo.Create(ctx, order); err != nil {
			t.Fatalf("create order: %v", err)
		}

		linked := testItem(order.ID, "Linked")
		linked.ProductID = &product.ID
		unlinked := testItem(order.ID, "Unlinked")
		if err := repo.ReplaceItems(ctx, order.ID, []domain.OrderItem{linked, unlinked}); err != nil {
			t.Fatalf("replace: %v", err)
		}

		items, err := repo.ListItems(ctx, order.ID)
		if err != nil {
			t.Fatalf("list items: %v", err)
		}
		for _, it := range items {
			switch it.Title {
			case "Linked":
				if it.ProductID == nil || *it.ProductID != product.ID {
					t.Errorf("linked item product ref = %v, want %s", it.ProductID, product.ID)
				}
			case "Unlinked":
				if it.ProductID != nil {
					t.Errorf("unlinked item product ref = %v, want nil", it.ProductID)
				}
			}
		}
	})

	t.Run("Deleting Order Cascades To Items", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewOrderRepository(db)
		tenant := seedTenant(t, db)

		order := testOrder(tenant.ID, 505)
		if err := repo.Create(ctx, order); err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := repo.ReplaceItems(ctx, order.ID, []domain.OrderItem{testItem(order.ID, "A")}); err != nil {
			t.Fatalf("replace: %v", err)
		}

		if _, err := db.Exec(`DELETE FROM orders WHERE id = $1`, order.ID); err != nil {
			t.Fatalf("delete order: %v", err)
		}

		items, err := repo.ListItems(ctx, order.ID)
		if err != nil {
			t.Fatalf("list items: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("expected cascade delete of items, got %d", len(items))
		}
	})
}
