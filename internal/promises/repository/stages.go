package repository

import (
	"context"
	"errors"
	"fmt"

	"studio_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const stageNotFoundMsg = "pipeline stage not configured"

// FindActiveStageBySlug looks up an active stage in the tenant's catalog.
// Slugs are tenant-scoped and may be absent; callers handle the NotFound via
// the fallback table.
func (r *Repository) FindActiveStageBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*PipelineStage, error) {
	query := `
		SELECT id, tenant_id, slug, name, is_active
		FROM pipeline_stages
		WHERE tenant_id = $1 AND slug = $2 AND is_active = TRUE`

	var s PipelineStage
	err := r.pool.QueryRow(ctx, query, tenantID, slug).Scan(
		&s.ID, &s.TenantID, &s.Slug, &s.Name, &s.IsActive,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(stageNotFoundMsg)
	}
	if err != nil {
		return nil, fmt.Errorf("find stage by slug: %w", err)
	}
	return &s, nil
}

// GetStageByID loads a catalog entry by primary key, used to resolve the
// current stage's slug when building history entries.
func (r *Repository) GetStageByID(ctx context.Context, tenantID, stageID uuid.UUID) (*PipelineStage, error) {
	query := `
		SELECT id, tenant_id, slug, name, is_active
		FROM pipeline_stages
		WHERE id = $1 AND tenant_id = $2`

	var s PipelineStage
	err := r.pool.QueryRow(ctx, query, stageID, tenantID).Scan(
		&s.ID, &s.TenantID, &s.Slug, &s.Name, &s.IsActive,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(stageNotFoundMsg)
	}
	if err != nil {
		return nil, fmt.Errorf("get stage by id: %w", err)
	}
	return &s, nil
}

// ListActiveStages returns the tenant's configured catalog, for the staff UI.
func (r *Repository) ListActiveStages(ctx context.Context, tenantID uuid.UUID) ([]PipelineStage, error) {
	query := `
		SELECT id, tenant_id, slug, name, is_active
		FROM pipeline_stages
		WHERE tenant_id = $1 AND is_active = TRUE
		ORDER BY sort_order`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	defer rows.Close()

	var stages []PipelineStage
	for rows.Next() {
		var s PipelineStage
		if err := rows.Scan(&s.ID, &s.TenantID, &s.Slug, &s.Name, &s.IsActive); err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		stages = append(stages, s)
	}
	return stages, rows.Err()
}
