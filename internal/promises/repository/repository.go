package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studio_portal_backend/internal/promises/domain"
	"studio_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ── Domain Models ─────────────────────────────────────────────────────────────

// Promise is the database model for a sales promise (the aggregate root for
// routing and pipeline stage purposes).
type Promise struct {
	ID              uuid.UUID  `db:"id"`
	TenantID        uuid.UUID  `db:"tenant_id"`
	PipelineStageID *uuid.UUID `db:"pipeline_stage_id"`
	PublicToken     string     `db:"public_token"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

// PromiseRef is a lightweight (tenant, promise) pair used by the reconciler.
type PromiseRef struct {
	ID       uuid.UUID `db:"id"`
	TenantID uuid.UUID `db:"tenant_id"`
}

// PipelineStage is a tenant-catalog entry.
type PipelineStage struct {
	ID       uuid.UUID `db:"id"`
	TenantID uuid.UUID `db:"tenant_id"`
	Slug     string    `db:"slug"`
	Name     string    `db:"name"`
	IsActive bool      `db:"is_active"`
}

// ── Repository ────────────────────────────────────────────────────────────────

const promiseNotFoundMsg = "promise not found"

// Repository provides database operations for promises
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new promises repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetPromise loads a promise scoped to a tenant.
func (r *Repository) GetPromise(ctx context.Context, tenantID, promiseID uuid.UUID) (*Promise, error) {
	query := `
		SELECT id, tenant_id, pipeline_stage_id, public_token, created_at, updated_at
		FROM promises
		WHERE id = $1 AND tenant_id = $2`

	var p Promise
	err := r.pool.QueryRow(ctx, query, promiseID, tenantID).Scan(
		&p.ID, &p.TenantID, &p.PipelineStageID, &p.PublicToken, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(promiseNotFoundMsg)
	}
	if err != nil {
		return nil, fmt.Errorf("get promise: %w", err)
	}
	return &p, nil
}

// GetPromiseByPublicToken loads a promise via its portal token.
func (r *Repository) GetPromiseByPublicToken(ctx context.Context, token string) (*Promise, error) {
	query := `
		SELECT id, tenant_id, pipeline_stage_id, public_token, created_at, updated_at
		FROM promises
		WHERE public_token = $1`

	var p Promise
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&p.ID, &p.TenantID, &p.PipelineStageID, &p.PublicToken, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(promiseNotFoundMsg)
	}
	if err != nil {
		return nil, fmt.Errorf("get promise by token: %w", err)
	}
	return &p, nil
}

// ListQuoteSnapshots reads the status and selection flag of every
// non-archived quote belonging to a promise.
func (r *Repository) ListQuoteSnapshots(ctx context.Context, tenantID, promiseID uuid.UUID) ([]domain.QuoteSnapshot, error) {
	query := `
		SELECT id, status, selected_by_prospect
		FROM quotes
		WHERE promise_id = $1 AND tenant_id = $2 AND archived_at IS NULL
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, promiseID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list quote snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []domain.QuoteSnapshot
	for rows.Next() {
		var (
			id       uuid.UUID
			status   string
			selected *bool
		)
		if err := rows.Scan(&id, &status, &selected); err != nil {
			return nil, fmt.Errorf("scan quote snapshot: %w", err)
		}
		snapshots = append(snapshots, domain.NewQuoteSnapshot(id, status, selected))
	}
	return snapshots, rows.Err()
}

// UpdateStageWithHistory writes the promise's new stage and appends the audit
// entry in one transaction, so the stage field and the trail cannot diverge
// within a single sync.
func (r *Repository) UpdateStageWithHistory(ctx context.Context, promise *Promise, stage *PipelineStage, entry *StageHistoryEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin stage update: %w", err)
	}
	defer tx.Rollback(ctx)

	updateQuery := `
		UPDATE promises
		SET pipeline_stage_id = $1, updated_at = NOW()
		WHERE id = $2 AND tenant_id = $3`

	tag, err := tx.Exec(ctx, updateQuery, stage.ID, promise.ID, promise.TenantID)
	if err != nil {
		return fmt.Errorf("update pipeline stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(promiseNotFoundMsg)
	}

	if err := insertStageHistory(ctx, tx, entry); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListRecentlyTouchedPromises returns promises with at least one quote
// updated inside the window. Used by the periodic reconcile sweep.
func (r *Repository) ListRecentlyTouchedPromises(ctx context.Context, window time.Duration) ([]PromiseRef, error) {
	query := `
		SELECT DISTINCT p.id, p.tenant_id
		FROM promises p
		JOIN quotes q ON q.promise_id = p.id
		WHERE q.updated_at > NOW() - $1::interval AND q.archived_at IS NULL`

	rows, err := r.pool.Query(ctx, query, window.String())
	if err != nil {
		return nil, fmt.Errorf("list touched promises: %w", err)
	}
	defer rows.Close()

	var refs []PromiseRef
	for rows.Next() {
		var ref PromiseRef
		if err := rows.Scan(&ref.ID, &ref.TenantID); err != nil {
			return nil, fmt.Errorf("scan promise ref: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
