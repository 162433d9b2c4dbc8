package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/user/storesync/internal/adapter/shopify"
	"github.com/user/storesync/internal/domain"
)

type orderReconciler struct {
	orders    domain.OrderRepository
	customers domain.CustomerRepository
	products  domain.ProductRepository
	logger    *slog.Logger
}

func (r *orderReconciler) reconcile(ctx context.Context, tenant *domain.Tenant, raw json.RawMessage) (domain.SyncOutcome, error) {
	var rec shopify.OrderRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.OutcomeSkipped, fmt.Errorf("decode order record: %w", err)
	}

	order, err := r.buildOrder(ctx, tenant, &rec)
	if err != nil {
		return domain.OutcomeSkipped, err
	}

	existing, err := r.orders.FindByExternalID(ctx, tenant.ID, rec.ID)
	if err != nil {
		return domain.OutcomeSkipped, fmt.Errorf("look up order %d: %w", rec.ID, err)
	}

	outcome := domain.OutcomeCreated
	if existing == nil {
		order.ID = uuid.New()
		if err := r.orders.Create(ctx, order); err != nil {
			return domain.OutcomeSkipped, fmt.Errorf("create order %d: %w", rec.ID, err)
		}
	} else {
		order.ID = existing.ID
		if err := r.orders.Update(ctx, order); err != nil {
			return domain.OutcomeSkipped, fmt.Errorf("update order %d: %w", rec.ID, err)
		}
		outcome = domain.OutcomeUpdated
	}

	items := r.buildItems(ctx, tenant, order.ID, rec.LineItems)
	if err := r.orders.ReplaceItems(ctx, order.ID, items); err != nil {
		return domain.OutcomeSkipped, fmt.Errorf("replace items of order %d: %w", rec.ID, err)
	}

	return outcome, nil
}

// buildOrder maps an upstream order to the local entity. The embedded
// customer reference resolves to nil when the customer has not been
// reconciled for this tenant.
func (r *orderReconciler) buildOrder(ctx context.Context, tenant *domain.Tenant, rec *shopify.OrderRecord) (*domain.Order, error) {
	totalPrice, err := shopify.ParseAmount(rec.TotalPrice)
	if err != nil {
		return nil, err
	}
	subtotal, err := shopify.ParseAmount(rec.SubtotalPrice)
	if err != nil {
		return nil, err
	}
	totalTax, err := shopify.ParseAmount(rec.TotalTax)
	if err != nil {
		return nil, err
	}
	totalDiscounts, err := shopify.ParseAmount(rec.TotalDiscounts)
	if err != nil {
		return nil, err
	}

	var customerID *uuid.UUID
	if rec.Customer != nil {
		customer, err := r.customers.FindByExternalID(ctx, tenant.ID, rec.Customer.ID)
		if err != nil {
			return nil, fmt.Errorf("resolve customer %d of order %d: %w", rec.Customer.ID, rec.ID, err)
		}
		if customer != nil {
			customerID = &customer.ID
		}
	}

	return &domain.Order{
		TenantID:          tenant.ID,
		CustomerID:        customerID,
		ExternalID:        rec.ID,
		OrderNumber:       strconv.FormatInt(rec.OrderNumber, 10),
		Email:             rec.Email,
		FinancialStatus:   rec.FinancialStatus,
		FulfillmentStatus: rec.FulfillmentStatus,
		Currency:          rec.Currency,
		TotalPrice:        totalPrice,
		SubtotalPrice:     subtotal,
		TotalTax:          totalTax,
		TotalDiscounts:    totalDiscounts,
		TotalWeight:       rec.TotalWeight,
		Tags:              rec.Tags,
		Note:              rec.Note,
		ProcessedAt:       rec.ProcessedAt,
		CancelledAt:       rec.CancelledAt,
		ClosedAt:          rec.ClosedAt,
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         rec.UpdatedAt,
	}, nil
}

// buildItems maps the order's line items. A line item that cannot be
// mapped is dropped with a log entry rather than failing the whole
// order; product references resolve to nil when the product is unknown.
func (r *orderReconciler) buildItems(ctx context.Context, tenant *domain.Tenant, orderID uuid.UUID, lineItems []shopify.LineItemRecord) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(lineItems))
	for _, li := range lineItems {
		price, err := shopify.ParseAmount(li.Price)
		if err != nil {
			r.logger.Error("dropping unparsable line item", "tenant_id", tenant.ID, "order_id", orderID, "line_item_id", li.ID, "error", err)
			continue
		}
		discount, err := shopify.ParseAmount(li.TotalDiscount)
		if err != nil {
			r.logger.Error("dropping unparsable line item", "tenant_id", tenant.ID, "order_id", orderID, "line_item_id", li.ID, "error", err)
			continue
		}

		var productID *uuid.UUID
		if li.ProductID != nil {
			product, err := r.products.FindByExternalID(ctx, tenant.ID, *li.ProductID)
			if err != nil {
				r.logger.Error("dropping line item, product lookup failed", "tenant_id", tenant.ID, "order_id", orderID, "line_item_id", li.ID, "error", err)
				continue
			}
			if product != nil {
				productID = &product.ID
			}
		}

		items = append(items, domain.OrderItem{
			ID:                  uuid.New(),
			OrderID:             orderID,
			ProductID:           productID,
			ExternalVariantID:   li.VariantID,
			Title:               li.Title,
			VariantTitle:        li.VariantTitle,
			SKU:                 li.SKU,
			Vendor:              li.Vendor,
			Quantity:            li.Quantity,
			Price:               price,
			TotalDiscount:       discount,
			FulfillableQuantity: li.FulfillableQuantity,
			FulfillmentStatus:   li.FulfillmentStatus,
			RequiresShipping:    li.RequiresShipping,
			Taxable:             li.Taxable,
			GiftCard:            li.GiftCard,
			Properties:          li.Properties,
		})
	}
	return items
}
