package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/user/storesync/internal/domain"
)

// CustomerRepository is the SQL implementation of
// domain.CustomerRepository.
type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID int64) (*domain.Customer, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, external_id, email, first_name, last_name, phone,
		       total_spent, orders_count, accepts_marketing, tags, state, note,
		       created_at, updated_at
		FROM customers WHERE tenant_id = $1 AND external_id = $2`,
		tenantID, externalID)

	var c domain.Customer
	err := row.Scan(&c.ID, &c.TenantID, &c.ExternalID, &c.Email, &c.FirstName, &c.LastName,
		&c.Phone, &c.TotalSpent, &c.OrdersCount, &c.AcceptsMarketing, &c.Tags, &c.State,
		&c.Note, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}
	return &c, nil
}

func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customers (id, tenant_id, external_id, email, first_name, last_name,
			phone, total_spent, orders_count, accepts_marketing, tags, state, note,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		c.ID, c.TenantID, c.ExternalID, c.Email, c.FirstName, c.LastName, c.Phone,
		c.TotalSpent, c.OrdersCount, c.AcceptsMarketing, c.Tags, c.State, c.Note,
		c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) Update(ctx context.Context, c *domain.Customer) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE customers SET email = $1, first_name = $2, last_name = $3, phone = $4,
			total_spent = $5, orders_count = $6, accepts_marketing = $7, tags = $8,
			state = $9, note = $10, created_at = $11, updated_at = $12
		WHERE id = $13`,
		c.Email, c.FirstName, c.LastName, c.Phone, c.TotalSpent, c.OrdersCount,
		c.AcceptsMarketing, c.Tags, c.State, c.Note, c.CreatedAt, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}
