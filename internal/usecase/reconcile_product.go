package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/user/storesync/internal/adapter/shopify"
	"github.com/user/storesync/internal/domain"
)

type productReconciler struct {
	repo domain.ProductRepository
}

func (r *productReconciler) reconcile(ctx context.Context, tenant *domain.Tenant, raw json.RawMessage) (domain.SyncOutcome, error) {
	var rec shopify.ProductRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.OutcomeSkipped, fmt.Errorf("decode product record: %w", err)
	}

	existing, err := r.repo.FindByExternalID(ctx, tenant.ID, rec.ID)
	if err != nil {
		return domain.OutcomeSkipped, fmt.Errorf("look up product %d: %w", rec.ID, err)
	}

	product := domain.Product{
		TenantID:    tenant.ID,
		ExternalID:  rec.ID,
		Title:       rec.Title,
		Handle:      rec.Handle,
		Description: rec.BodyHTML,
		Vendor:      rec.Vendor,
		ProductType: rec.ProductType,
		Tags:        rec.Tags,
		Status:      rec.Status,
		Images:      rec.Images,
		Variants:    rec.Variants,
		Options:     rec.Options,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}

	if existing == nil {
		product.ID = uuid.New()
		if err := r.repo.Create(ctx, &product); err != nil {
			return domain.OutcomeSkipped, fmt.Errorf("create product %d: %w", rec.ID, err)
		}
		return domain.OutcomeCreated, nil
	}

	product.ID = existing.ID
	if err := r.repo.Update(ctx, &product); err != nil {
		return domain.OutcomeSkipped, fmt.Errorf("update product %d: %w", rec.ID, err)
	}
	return domain.OutcomeUpdated, nil
}
