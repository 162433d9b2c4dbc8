package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/user/storesync/internal/domain"

	_ "modernc.org/sqlite"
)

// newTestDB opens an in-memory SQLite database with the full schema
// applied. The schema is written in the portable subset both engines
// accept, so these tests exercise the exact queries run against
// PostgreSQL in production.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// One connection only: each new connection would see a fresh,
	// empty in-memory database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return db
}

func seedTenant(t *testing.T, db *sql.DB) *domain.Tenant {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	tenant := &domain.Tenant{
		ID:            uuid.New(),
		Name:          "Acme Apparel",
		ShopifyDomain: "acme-" + uuid.NewString() + ".myshopify.com",
		AccessToken:   "shpat_test",
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := NewTenantRepository(db).Store(context.Background(), tenant); err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	return tenant
}
