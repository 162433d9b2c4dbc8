package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/user/storesync/internal/adapter/metrics"
)

// APIKeyRepository validates API keys against the api_keys table with a
// small in-process TTL cache in front, so every authenticated request
// does not hit the database.
type APIKeyRepository struct {
	db      *sql.DB
	ttl     time.Duration
	metrics *metrics.SyncMetrics

	mu    sync.RWMutex
	cache map[string]cachedKey
}

type cachedKey struct {
	valid     bool
	expiresAt time.Time
}

// NewAPIKeyRepository creates the repository. m may be nil.
func NewAPIKeyRepository(db *sql.DB, cacheTTL time.Duration, m *metrics.SyncMetrics) *APIKeyRepository {
	return &APIKeyRepository{
		db:      db,
		ttl:     cacheTTL,
		metrics: m,
		cache:   make(map[string]cachedKey),
	}
}

// IsValid reports whether the key exists and is active. Negative results
// are cached too, so a rejected key cannot hammer the database.
func (r *APIKeyRepository) IsValid(ctx context.Context, key string) (bool, error) {
	r.mu.RLock()
	entry, ok := r.cache[key]
	r.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		if r.metrics != nil {
			r.metrics.APIKeyCacheHits.Inc()
		}
		return entry.valid, nil
	}
	if r.metrics != nil {
		r.metrics.APIKeyCacheMisses.Inc()
	}

	var isActive bool
	err := r.db.QueryRowContext(ctx,
		`SELECT is_active FROM api_keys WHERE key = $1`, key).Scan(&isActive)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("look up api key: %w", err)
	}
	valid := err == nil && isActive

	r.mu.Lock()
	r.cache[key] = cachedKey{valid: valid, expiresAt: time.Now().Add(r.ttl)}
	r.mu.Unlock()

	return valid, nil
}

// Store inserts a key. Used by provisioning and tests.
func (r *APIKeyRepository) Store(ctx context.Context, key, description string, isActive bool) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO api_keys (key, description, is_active, created_at)
		VALUES ($1, $2, $3, $4)`,
		key, description, isActive, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store api key: %w", err)
	}
	return nil
}
