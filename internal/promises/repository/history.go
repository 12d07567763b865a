package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// StageHistoryEntry is the immutable audit record appended every time a
// promise's pipeline stage changes. Created only, never mutated or deleted.
type StageHistoryEntry struct {
	ID            uuid.UUID       `db:"id"`
	TenantID      uuid.UUID       `db:"tenant_id"`
	PromiseID     uuid.UUID       `db:"promise_id"`
	FromStageID   *uuid.UUID      `db:"from_stage_id"`
	FromStageSlug *string         `db:"from_stage_slug"`
	ToStageID     uuid.UUID       `db:"to_stage_id"`
	ToStageSlug   string          `db:"to_stage_slug"`
	ActorID       *uuid.UUID      `db:"actor_id"`
	Reason        string          `db:"reason"`
	QuoteStates   json.RawMessage `db:"quote_states"`
	CreatedAt     time.Time       `db:"created_at"`
}

func insertStageHistory(ctx context.Context, tx pgx.Tx, entry *StageHistoryEntry) error {
	query := `
		INSERT INTO promise_stage_history (
			id, tenant_id, promise_id,
			from_stage_id, from_stage_slug, to_stage_id, to_stage_slug,
			actor_id, reason, quote_states, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := tx.Exec(ctx, query,
		entry.ID, entry.TenantID, entry.PromiseID,
		entry.FromStageID, entry.FromStageSlug, entry.ToStageID, entry.ToStageSlug,
		entry.ActorID, entry.Reason, entry.QuoteStates, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stage history: %w", err)
	}
	return nil
}

// ListStageHistory returns a promise's audit trail, newest first.
func (r *Repository) ListStageHistory(ctx context.Context, tenantID, promiseID uuid.UUID) ([]StageHistoryEntry, error) {
	query := `
		SELECT id, tenant_id, promise_id,
		       from_stage_id, from_stage_slug, to_stage_id, to_stage_slug,
		       actor_id, reason, quote_states, created_at
		FROM promise_stage_history
		WHERE promise_id = $1 AND tenant_id = $2
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, promiseID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list stage history: %w", err)
	}
	defer rows.Close()

	var entries []StageHistoryEntry
	for rows.Next() {
		var e StageHistoryEntry
		if err := rows.Scan(
			&e.ID, &e.TenantID, &e.PromiseID,
			&e.FromStageID, &e.FromStageSlug, &e.ToStageID, &e.ToStageSlug,
			&e.ActorID, &e.Reason, &e.QuoteStates, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stage history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
