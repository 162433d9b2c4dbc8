package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/user/storesync/internal/domain"
)

// ProductRepository is the SQL implementation of
// domain.ProductRepository. Images, variants, and options travel as
// opaque JSON documents.
type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, external_id, title, handle, description, vendor,
		       product_type, tags, status, images, variants, options,
		       created_at, updated_at
		FROM products WHERE tenant_id = $1 AND external_id = $2`,
		tenantID, externalID)

	var p domain.Product
	err := row.Scan(&p.ID, &p.TenantID, &p.ExternalID, &p.Title, &p.Handle, &p.Description,
		&p.Vendor, &p.ProductType, &p.Tags, &p.Status, &p.Images, &p.Variants, &p.Options,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, tenant_id, external_id, title, handle, description,
			vendor, product_type, tags, status, images, variants, options,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		p.ID, p.TenantID, p.ExternalID, p.Title, p.Handle, p.Description, p.Vendor,
		p.ProductType, p.Tags, p.Status, jsonArg(p.Images), jsonArg(p.Variants),
		jsonArg(p.Options), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE products SET title = $1, handle = $2, description = $3, vendor = $4,
			product_type = $5, tags = $6, status = $7, images = $8, variants = $9,
			options = $10, created_at = $11, updated_at = $12
		WHERE id = $13`,
		p.Title, p.Handle, p.Description, p.Vendor, p.ProductType, p.Tags, p.Status,
		jsonArg(p.Images), jsonArg(p.Variants), jsonArg(p.Options),
		p.CreatedAt, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// jsonArg maps an absent JSON document to NULL instead of an empty blob.
func jsonArg(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
