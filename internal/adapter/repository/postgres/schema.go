package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// The DDL below sticks to types both PostgreSQL and SQLite understand,
// so the repository tests can run against an in-memory database. UUIDs
// are stored as TEXT and generated by the application.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS tenants (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		shopify_domain TEXT NOT NULL UNIQUE,
		access_token   TEXT NOT NULL,
		webhook_secret TEXT NOT NULL DEFAULT '',
		is_active      BOOLEAN NOT NULL DEFAULT TRUE,
		last_sync_at   TIMESTAMP,
		created_at     TIMESTAMP NOT NULL,
		updated_at     TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id                TEXT PRIMARY KEY,
		tenant_id         TEXT NOT NULL REFERENCES tenants(id),
		external_id       BIGINT NOT NULL,
		email             TEXT NOT NULL DEFAULT '',
		first_name        TEXT NOT NULL DEFAULT '',
		last_name         TEXT NOT NULL DEFAULT '',
		phone             TEXT NOT NULL DEFAULT '',
		total_spent       DOUBLE PRECISION NOT NULL DEFAULT 0,
		orders_count      INTEGER NOT NULL DEFAULT 0,
		accepts_marketing BOOLEAN NOT NULL DEFAULT FALSE,
		tags              TEXT NOT NULL DEFAULT '',
		state             TEXT NOT NULL DEFAULT '',
		note              TEXT NOT NULL DEFAULT '',
		created_at        TIMESTAMP NOT NULL,
		updated_at        TIMESTAMP NOT NULL,
		UNIQUE (tenant_id, external_id)
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id           TEXT PRIMARY KEY,
		tenant_id    TEXT NOT NULL REFERENCES tenants(id),
		external_id  BIGINT NOT NULL,
		title        TEXT NOT NULL DEFAULT '',
		handle       TEXT NOT NULL DEFAULT '',
		description  TEXT NOT NULL DEFAULT '',
		vendor       TEXT NOT NULL DEFAULT '',
		product_type TEXT NOT NULL DEFAULT '',
		tags         TEXT NOT NULL DEFAULT '',
		status       TEXT NOT NULL DEFAULT '',
		images       TEXT,
		variants     TEXT,
		options      TEXT,
		created_at   TIMESTAMP NOT NULL,
		updated_at   TIMESTAMP NOT NULL,
		UNIQUE (tenant_id, external_id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id                 TEXT PRIMARY KEY,
		tenant_id          TEXT NOT NULL REFERENCES tenants(id),
		customer_id        TEXT REFERENCES customers(id),
		external_id        BIGINT NOT NULL,
		order_number       TEXT NOT NULL DEFAULT '',
		email              TEXT NOT NULL DEFAULT '',
		financial_status   TEXT NOT NULL DEFAULT '',
		fulfillment_status TEXT NOT NULL DEFAULT '',
		currency           TEXT NOT NULL DEFAULT '',
		total_price        DOUBLE PRECISION NOT NULL DEFAULT 0,
		subtotal_price     DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_tax          DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_discounts    DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_weight       DOUBLE PRECISION NOT NULL DEFAULT 0,
		tags               TEXT NOT NULL DEFAULT '',
		note               TEXT NOT NULL DEFAULT '',
		processed_at       TIMESTAMP,
		cancelled_at       TIMESTAMP,
		closed_at          TIMESTAMP,
		created_at         TIMESTAMP NOT NULL,
		updated_at         TIMESTAMP NOT NULL,
		UNIQUE (tenant_id, external_id)
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id                   TEXT PRIMARY KEY,
		order_id             TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id           TEXT REFERENCES products(id),
		external_variant_id  BIGINT NOT NULL DEFAULT 0,
		title                TEXT NOT NULL DEFAULT '',
		variant_title        TEXT NOT NULL DEFAULT '',
		sku                  TEXT NOT NULL DEFAULT '',
		vendor               TEXT NOT NULL DEFAULT '',
		quantity             INTEGER NOT NULL DEFAULT 0,
		price                DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_discount       DOUBLE PRECISION NOT NULL DEFAULT 0,
		fulfillable_quantity INTEGER NOT NULL DEFAULT 0,
		fulfillment_status   TEXT NOT NULL DEFAULT '',
		requires_shipping    BOOLEAN NOT NULL DEFAULT FALSE,
		taxable              BOOLEAN NOT NULL DEFAULT FALSE,
		gift_card            BOOLEAN NOT NULL DEFAULT FALSE,
		properties           TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS sync_runs (
		id                TEXT PRIMARY KEY,
		tenant_id         TEXT NOT NULL REFERENCES tenants(id),
		kind              TEXT NOT NULL,
		status            TEXT NOT NULL,
		records_processed INTEGER NOT NULL DEFAULT 0,
		records_created   INTEGER NOT NULL DEFAULT 0,
		records_updated   INTEGER NOT NULL DEFAULT 0,
		records_skipped   INTEGER NOT NULL DEFAULT 0,
		error_message     TEXT NOT NULL DEFAULT '',
		started_at        TIMESTAMP NOT NULL,
		completed_at      TIMESTAMP,
		duration_ms       BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS api_keys (
		key         TEXT PRIMARY KEY,
		description TEXT NOT NULL DEFAULT '',
		is_active   BOOLEAN NOT NULL DEFAULT TRUE,
		created_at  TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sync_runs_tenant_started ON sync_runs (tenant_id, started_at)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items (order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders (customer_id)`,
}

// EnsureSchema creates all tables and indexes if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
