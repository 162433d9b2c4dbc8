package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/user/storesync/internal/adapter/shopify"
	"github.com/user/storesync/internal/domain"
)

type customerReconciler struct {
	repo domain.CustomerRepository
}

func (r *customerReconciler) reconcile(ctx context.Context, tenant *domain.Tenant, raw json.RawMessage) (domain.SyncOutcome, error) {
	var rec shopify.CustomerRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.OutcomeSkipped, fmt.Errorf("decode customer record: %w", err)
	}

	totalSpent, err := shopify.ParseAmount(rec.TotalSpent)
	if err != nil {
		return domain.OutcomeSkipped, err
	}

	existing, err := r.repo.FindByExternalID(ctx, tenant.ID, rec.ID)
	if err != nil {
		return domain.OutcomeSkipped, fmt.Errorf("look up customer %d: %w", rec.ID, err)
	}

	customer := domain.Customer{
		TenantID:         tenant.ID,
		ExternalID:       rec.ID,
		Email:            rec.Email,
		FirstName:        rec.FirstName,
		LastName:         rec.LastName,
		Phone:            rec.Phone,
		TotalSpent:       totalSpent,
		OrdersCount:      rec.OrdersCount,
		AcceptsMarketing: rec.AcceptsMarketing,
		Tags:             rec.Tags,
		State:            rec.State,
		Note:             rec.Note,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}

	if existing == nil {
		customer.ID = uuid.New()
		if err := r.repo.Create(ctx, &customer); err != nil {
			return domain.OutcomeSkipped, fmt.Errorf("create customer %d: %w", rec.ID, err)
		}
		return domain.OutcomeCreated, nil
	}

	customer.ID = existing.ID
	if err := r.repo.Update(ctx, &customer); err != nil {
		return domain.OutcomeSkipped, fmt.Errorf("update customer %d: %w", rec.ID, err)
	}
	return domain.OutcomeUpdated, nil
}
