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

// TenantRepository is the SQL implementation of domain.TenantRepository.
type TenantRepository struct {
	db *sql.DB
}

func NewTenantRepository(db *sql.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

const tenantColumns = `id, name, shopify_domain, access_token, webhook_secret, is_active, last_sync_at, created_at, updated_at`

func (r *TenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
	return scanTenant(row)
}

func (r *TenantRepository) FindByDomain(ctx context.Context, shopifyDomain string) (*domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE shopify_domain = $1`, shopifyDomain)
	return scanTenant(row)
}

func (r *TenantRepository) ListActive(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE is_active = TRUE ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list active tenants: %w", err)
	}
	defer rows.Close()

	var tenants []domain.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, *t)
	}
	return tenants, rows.Err()
}

func (r *TenantRepository) Store(ctx context.Context, t *domain.Tenant) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tenants (id, name, shopify_domain, access_token, webhook_secret, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.Name, t.ShopifyDomain, t.AccessToken, t.WebhookSecret, t.IsActive, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store tenant: %w", err)
	}
	return nil
}

func (r *TenantRepository) UpdateLastSync(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE tenants SET last_sync_at = $1, updated_at = $2 WHERE id = $3`,
		now, now, id)
	if err != nil {
		return fmt.Errorf("update tenant last sync: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenant(row rowScanner) (*domain.Tenant, error) {
	var t domain.Tenant
	var lastSync sql.NullTime
	err := row.Scan(&t.ID, &t.Name, &t.ShopifyDomain, &t.AccessToken, &t.WebhookSecret,
		&t.IsActive, &lastSync, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan tenant: %w", err)
	}
	if lastSync.Valid {
		t.LastSyncAt = &lastSync.Time
	}
	return &t, nil
}
