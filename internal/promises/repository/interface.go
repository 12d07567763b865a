// Package repository provides database operations for the promises bounded
// context. The narrow interfaces below are what the service layer depends on,
// keeping the synchronizer testable with in-memory fakes.
package repository

import (
	"context"
	"time"

	"studio_portal_backend/internal/promises/domain"

	"github.com/google/uuid"
)

// QuoteSnapshotReader reads the non-archived quote set for one promise,
// fresh at decision time.
type QuoteSnapshotReader interface {
	ListQuoteSnapshots(ctx context.Context, tenantID, promiseID uuid.UUID) ([]domain.QuoteSnapshot, error)
}

// PromiseReader loads promise aggregates.
type PromiseReader interface {
	GetPromise(ctx context.Context, tenantID, promiseID uuid.UUID) (*Promise, error)
	GetPromiseByPublicToken(ctx context.Context, token string) (*Promise, error)
}

// StageCatalog resolves tenant pipeline stage slugs. FindActiveStageBySlug
// returns apperr.NotFound when the tenant has no active stage for the slug.
type StageCatalog interface {
	FindActiveStageBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*PipelineStage, error)
}

// StageWriter persists a derived stage change together with its audit entry.
type StageWriter interface {
	UpdateStageWithHistory(ctx context.Context, promise *Promise, stage *PipelineStage, entry *StageHistoryEntry) error
}

// HistoryReader lists the audit trail for a promise.
type HistoryReader interface {
	ListStageHistory(ctx context.Context, tenantID, promiseID uuid.UUID) ([]StageHistoryEntry, error)
}

// ReconcileLister enumerates promises whose quotes changed recently, for the
// periodic reconcile sweep.
type ReconcileLister interface {
	ListRecentlyTouchedPromises(ctx context.Context, window time.Duration) ([]PromiseRef, error)
}
