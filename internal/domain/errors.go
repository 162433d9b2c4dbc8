package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Configuration errors: surfaced before any network call or sync run row
// is written.
var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrTenantInactive = errors.New("tenant is not active")
)

// ErrSyncInProgress is returned when a sync lease for the same
// (tenant, kind) is already held by another invocation.
var ErrSyncInProgress = errors.New("a sync for this tenant and kind is already in progress")

// UpstreamError is a transport or authentication failure reaching the
// upstream API. It is fatal to the current sync invocation.
type UpstreamError struct {
	TenantID   uuid.UUID
	StatusCode int
	Resource   string
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream request for %s failed with status %d (tenant %s)", e.Resource, e.StatusCode, e.TenantID)
}
