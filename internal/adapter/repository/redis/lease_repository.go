package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/user/storesync/internal/domain"
)

// LeaseRepository implements domain.SyncLeaseRepository on Redis.
// A lease is a SETNX key with a TTL: the TTL bounds how long a crashed
// sync can block its (tenant, kind) slot.
type LeaseRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLeaseRepository creates the repository and verifies connectivity.
func NewLeaseRepository(ctx context.Context, addr string, ttl time.Duration) (*LeaseRepository, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return &LeaseRepository{client: client, ttl: ttl}, nil
}

func leaseKey(tenantID uuid.UUID, kind domain.SyncKind) string {
	return fmt.Sprintf("storesync:lease:%s:%s", tenantID, kind)
}

func (r *LeaseRepository) Acquire(ctx context.Context, tenantID uuid.UUID, kind domain.SyncKind) (bool, error) {
	ok, err := r.client.SetNX(ctx, leaseKey(tenantID, kind), time.Now().UTC().Format(time.RFC3339), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire sync lease: %w", err)
	}
	return ok, nil
}

func (r *LeaseRepository) Release(ctx context.Context, tenantID uuid.UUID, kind domain.SyncKind) error {
	if err := r.client.Del(ctx, leaseKey(tenantID, kind)).Err(); err != nil {
		return fmt.Errorf("release sync lease: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *LeaseRepository) Close() error {
	return r.client.Close()
}
