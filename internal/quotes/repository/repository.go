// Package repository provides database access for quotes, their line items
// and negotiation state.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studio_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ── Domain Models ─────────────────────────────────────────────────────────────

// Quote is the database model for a quote header.
type Quote struct {
	ID                 uuid.UUID  `db:"id"`
	TenantID           uuid.UUID  `db:"tenant_id"`
	PromiseID          uuid.UUID  `db:"promise_id"`
	Status             string     `db:"status"`
	SelectedByProspect *bool      `db:"selected_by_prospect"`
	ManualPriceCents   *int64     `db:"manual_price_cents"`
	FinalPriceCents    int64      `db:"final_price_cents"`
	ArchivedAt         *time.Time `db:"archived_at"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

// QuoteItem is the database model for a quote line item.
type QuoteItem struct {
	ID             uuid.UUID `db:"id"`
	QuoteID        uuid.UUID `db:"quote_id"`
	TenantID       uuid.UUID `db:"tenant_id"`
	Description    string    `db:"description"`
	Quantity       float64   `db:"quantity"`
	UnitPriceCents int64     `db:"unit_price_cents"`
	CostCents      int64     `db:"cost_cents"`
	ExpenseCents   int64     `db:"expense_cents"`
	IsCourtesy     bool      `db:"is_courtesy"`
	SortOrder      int       `db:"sort_order"`
	CreatedAt      time.Time `db:"created_at"`
}

// CommercialCondition is the database model for a quote's discount and
// advance-payment rule. A quote has at most one.
type CommercialCondition struct {
	QuoteID         uuid.UUID `db:"quote_id"`
	DiscountPercent float64   `db:"discount_percent"`
	AdvanceKind     string    `db:"advance_kind"`
	AdvanceValue    int64     `db:"advance_value"`
}

// ── Repository ────────────────────────────────────────────────────────────────

const quoteNotFoundMsg = "quote not found"

// Repository provides database operations for quotes.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new quotes repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetQuote fetches a quote header scoped to a tenant. Archived quotes are
// still readable; callers decide whether archived state matters.
func (r *Repository) GetQuote(ctx context.Context, tenantID, quoteID uuid.UUID) (*Quote, error) {
	query := `
		SELECT id, tenant_id, promise_id, status, selected_by_prospect,
		       manual_price_cents, final_price_cents, archived_at, created_at, updated_at
		FROM quotes
		WHERE id = $1 AND tenant_id = $2`

	var q Quote
	err := r.pool.QueryRow(ctx, query, quoteID, tenantID).Scan(
		&q.ID, &q.TenantID, &q.PromiseID, &q.Status, &q.SelectedByProspect,
		&q.ManualPriceCents, &q.FinalPriceCents, &q.ArchivedAt, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(quoteNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return &q, nil
}

// GetQuoteByPromiseToken fetches a quote reachable through a promise's public
// token. Used by the prospect portal where no staff identity exists.
func (r *Repository) GetQuoteByPromiseToken(ctx context.Context, token string, quoteID uuid.UUID) (*Quote, error) {
	query := `
		SELECT q.id, q.tenant_id, q.promise_id, q.status, q.selected_by_prospect,
		       q.manual_price_cents, q.final_price_cents, q.archived_at, q.created_at, q.updated_at
		FROM quotes q
		JOIN promises p ON p.id = q.promise_id
		WHERE q.id = $1 AND p.public_token = $2 AND q.archived_at IS NULL`

	var q Quote
	err := r.pool.QueryRow(ctx, query, quoteID, token).Scan(
		&q.ID, &q.TenantID, &q.PromiseID, &q.Status, &q.SelectedByProspect,
		&q.ManualPriceCents, &q.FinalPriceCents, &q.ArchivedAt, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(quoteNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get quote by token: %w", err)
	}
	return &q, nil
}

// ListItems returns the line items of a quote in display order.
func (r *Repository) ListItems(ctx context.Context, tenantID, quoteID uuid.UUID) ([]QuoteItem, error) {
	query := `
		SELECT id, quote_id, tenant_id, description, quantity,
		       unit_price_cents, cost_cents, expense_cents, is_courtesy, sort_order, created_at
		FROM quote_items
		WHERE quote_id = $1 AND tenant_id = $2
		ORDER BY sort_order, created_at`

	rows, err := r.pool.Query(ctx, query, quoteID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quote items: %w", err)
	}
	defer rows.Close()

	var items []QuoteItem
	for rows.Next() {
		var it QuoteItem
		if err := rows.Scan(
			&it.ID, &it.QuoteID, &it.TenantID, &it.Description, &it.Quantity,
			&it.UnitPriceCents, &it.CostCents, &it.ExpenseCents, &it.IsCourtesy, &it.SortOrder, &it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quote item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetCommercialCondition returns the quote's condition, or nil when none is
// configured.
func (r *Repository) GetCommercialCondition(ctx context.Context, tenantID, quoteID uuid.UUID) (*CommercialCondition, error) {
	query := `
		SELECT c.quote_id, c.discount_percent, c.advance_kind, c.advance_value
		FROM quote_commercial_conditions c
		JOIN quotes q ON q.id = c.quote_id
		WHERE c.quote_id = $1 AND q.tenant_id = $2`

	var c CommercialCondition
	err := r.pool.QueryRow(ctx, query, quoteID, tenantID).Scan(
		&c.QuoteID, &c.DiscountPercent, &c.AdvanceKind, &c.AdvanceValue,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get commercial condition: %w", err)
	}
	return &c, nil
}

// UpdateStatus writes a new status and returns the previous one. The
// returning clause makes the read-modify-write a single statement so
// concurrent updates cannot report the same previous status twice.
func (r *Repository) UpdateStatus(ctx context.Context, tenantID, quoteID uuid.UUID, status string) (string, error) {
	query := `
		UPDATE quotes q SET status = $3, updated_at = NOW()
		FROM (SELECT id, status FROM quotes WHERE id = $1 AND tenant_id = $2 FOR UPDATE) prev
		WHERE q.id = prev.id
		RETURNING prev.status`

	var previous string
	if err := r.pool.QueryRow(ctx, query, quoteID, tenantID, status).Scan(&previous); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound(quoteNotFoundMsg)
		}
		return "", fmt.Errorf("failed to update quote status: %w", err)
	}
	return previous, nil
}

// ApplyNegotiation persists the courtesy flags, manual price and computed
// final price in one transaction.
func (r *Repository) ApplyNegotiation(ctx context.Context, tenantID, quoteID uuid.UUID, courtesyItemIDs []uuid.UUID, manualPriceCents *int64, finalPriceCents int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	clearQuery := `
		UPDATE quote_items SET is_courtesy = FALSE
		WHERE quote_id = $1 AND tenant_id = $2`
	if _, err := tx.Exec(ctx, clearQuery, quoteID, tenantID); err != nil {
		return fmt.Errorf("failed to clear courtesy flags: %w", err)
	}

	if len(courtesyItemIDs) > 0 {
		markQuery := `
			UPDATE quote_items SET is_courtesy = TRUE
			WHERE quote_id = $1 AND tenant_id = $2 AND id = ANY($3)`
		if _, err := tx.Exec(ctx, markQuery, quoteID, tenantID, courtesyItemIDs); err != nil {
			return fmt.Errorf("failed to mark courtesy items: %w", err)
		}
	}

	quoteQuery := `
		UPDATE quotes SET manual_price_cents = $3, final_price_cents = $4, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2`
	tag, err := tx.Exec(ctx, quoteQuery, quoteID, tenantID, manualPriceCents, finalPriceCents)
	if err != nil {
		return fmt.Errorf("failed to update quote negotiation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(quoteNotFoundMsg)
	}

	return tx.Commit(ctx)
}

// SetSelectionByToken records a prospect's choice for a quote reached through
// its promise's public token.
func (r *Repository) SetSelectionByToken(ctx context.Context, token string, quoteID uuid.UUID, selected bool) (*Quote, error) {
	query := `
		UPDATE quotes q SET selected_by_prospect = $3, updated_at = NOW()
		FROM promises p
		WHERE q.id = $1 AND q.promise_id = p.id AND p.public_token = $2 AND q.archived_at IS NULL
		RETURNING q.id, q.tenant_id, q.promise_id, q.status, q.selected_by_prospect,
		          q.manual_price_cents, q.final_price_cents, q.archived_at, q.created_at, q.updated_at`

	var q Quote
	err := r.pool.QueryRow(ctx, query, quoteID, token, selected).Scan(
		&q.ID, &q.TenantID, &q.PromiseID, &q.Status, &q.SelectedByProspect,
		&q.ManualPriceCents, &q.FinalPriceCents, &q.ArchivedAt, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(quoteNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to set quote selection: %w", err)
	}
	return &q, nil
}
