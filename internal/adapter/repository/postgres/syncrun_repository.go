package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/user/storesync/internal/domain"
)

// SyncRunRepository is the SQL implementation of
// domain.SyncRunRepository. Rows are append-only: Create inserts the
// started row, Complete writes the terminal state once, nothing deletes.
type SyncRunRepository struct {
	db *sql.DB
}

func NewSyncRunRepository(db *sql.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

func (r *SyncRunRepository) Create(ctx context.Context, run *domain.SyncRun) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_runs (id, tenant_id, kind, status, started_at)
		VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.TenantID, string(run.Kind), string(run.Status), run.StartedAt)
	if err != nil {
		return fmt.Errorf("create sync run: %w", err)
	}
	return nil
}

func (r *SyncRunRepository) Complete(ctx context.Context, run *domain.SyncRun) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sync_runs SET status = $1, records_processed = $2, records_created = $3,
			records_updated = $4, records_skipped = $5, error_message = $6,
			completed_at = $7, duration_ms = $8
		WHERE id = $9`,
		string(run.Status), run.RecordsProcessed, run.RecordsCreated, run.RecordsUpdated,
		run.RecordsSkipped, run.ErrorMessage, run.CompletedAt, run.DurationMS, run.ID)
	if err != nil {
		return fmt.Errorf("complete sync run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("sync run %s not found", run.ID)
	}
	return nil
}

func (r *SyncRunRepository) LatestByTenant(ctx context.Context, tenantID uuid.UUID, kind *domain.SyncKind) (*domain.SyncRun, error) {
	var row *sql.Row
	if kind != nil {
		row = r.db.QueryRowContext(ctx, `
			SELECT `+syncRunColumns+` FROM sync_runs
			WHERE tenant_id = $1 AND kind = $2
			ORDER BY started_at DESC LIMIT 1`, tenantID, string(*kind))
	} else {
		row = r.db.QueryRowContext(ctx, `
			SELECT `+syncRunColumns+` FROM sync_runs
			WHERE tenant_id = $1
			ORDER BY started_at DESC LIMIT 1`, tenantID)
	}

	run, err := scanSyncRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return run, err
}

func (r *SyncRunRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit int) ([]domain.SyncRun, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+syncRunColumns+` FROM sync_runs
		WHERE tenant_id = $1
		ORDER BY started_at DESC LIMIT $2`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.SyncRun
	for rows.Next() {
		run, err := scanSyncRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

const syncRunColumns = `id, tenant_id, kind, status, records_processed, records_created,
	records_updated, records_skipped, error_message, started_at, completed_at, duration_ms`

func scanSyncRun(row rowScanner) (*domain.SyncRun, error) {
	var run domain.SyncRun
	var kind, status string
	var completedAt sql.NullTime
	err := row.Scan(&run.ID, &run.TenantID, &kind, &status, &run.RecordsProcessed,
		&run.RecordsCreated, &run.RecordsUpdated, &run.RecordsSkipped, &run.ErrorMessage,
		&run.StartedAt, &completedAt, &run.DurationMS)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan sync run: %w", err)
	}
	run.Kind = domain.SyncKind(kind)
	run.Status = domain.RunStatus(status)
	run.CompletedAt = timePtr(completedAt)
	return &run, nil
}
