package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"studio_portal_backend/internal/events"
	"studio_portal_backend/internal/promises/domain"
	"studio_portal_backend/internal/promises/repository"
	"studio_portal_backend/platform/apperr"
	"studio_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// syncReason is the fixed audit reason for synchronizer-driven changes.
const syncReason = "automatic sync from quote status"

// SyncStore is the persistence surface the synchronizer needs.
// Implemented by *repository.Repository.
type SyncStore interface {
	GetPromise(ctx context.Context, tenantID, promiseID uuid.UUID) (*repository.Promise, error)
	ListQuoteSnapshots(ctx context.Context, tenantID, promiseID uuid.UUID) ([]domain.QuoteSnapshot, error)
	FindActiveStageBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*repository.PipelineStage, error)
	GetStageByID(ctx context.Context, tenantID, stageID uuid.UUID) (*repository.PipelineStage, error)
	UpdateStageWithHistory(ctx context.Context, promise *repository.Promise, stage *repository.PipelineStage, entry *repository.StageHistoryEntry) error
}

// Synchronizer derives a promise's pipeline stage from its quote set and
// persists it, appending an audit entry on every change.
//
// The outward contract is fail-soft: Sync never returns an error, because a
// failed derivation must not block or roll back the quote mutation that
// triggered it. Internally each attempt produces a typed *syncError so the
// failure paths stay testable.
type Synchronizer struct {
	store SyncStore
	bus   events.Bus
	log   *logger.Logger
}

// NewSynchronizer creates a pipeline stage synchronizer.
func NewSynchronizer(store SyncStore, bus events.Bus, log *logger.Logger) *Synchronizer {
	return &Synchronizer{store: store, bus: bus, log: log}
}

// syncError describes why one sync attempt aborted without mutating state.
type syncError struct {
	reason string
	err    error
}

func (e *syncError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.reason, e.err)
	}
	return e.reason
}

func (e *syncError) Unwrap() error { return e.err }

// quoteState is the metadata snapshot of one quote at decision time.
type quoteState struct {
	QuoteID   string `json:"quoteId"`
	Status    string `json:"status"`
	Selection string `json:"selection"`
}

// Sync re-derives and persists the pipeline stage for one promise.
// Failures are logged and swallowed.
func (s *Synchronizer) Sync(ctx context.Context, tenantID, promiseID uuid.UUID, actorID *uuid.UUID) {
	if serr := s.sync(ctx, tenantID, promiseID, actorID); serr != nil {
		s.log.SyncFailure(promiseID.String(), serr.reason, serr.err)
	}
}

// SyncChecked is the error-returning variant used by the task worker, where
// a returned error drives the retry policy instead of being swallowed.
func (s *Synchronizer) SyncChecked(ctx context.Context, tenantID, promiseID uuid.UUID, actorID *uuid.UUID) error {
	if serr := s.sync(ctx, tenantID, promiseID, actorID); serr != nil {
		return serr
	}
	return nil
}

func (s *Synchronizer) sync(ctx context.Context, tenantID, promiseID uuid.UUID, actorID *uuid.UUID) *syncError {
	promise, err := s.store.GetPromise(ctx, tenantID, promiseID)
	if err != nil {
		return &syncError{reason: "load promise", err: err}
	}

	quotes, err := s.store.ListQuoteSnapshots(ctx, tenantID, promiseID)
	if err != nil {
		return &syncError{reason: "load quote snapshots", err: err}
	}

	targetSlug := domain.DeriveStageSlug(quotes)
	stage, serr := s.resolveStage(ctx, tenantID, targetSlug)
	if serr != nil {
		return serr
	}

	// Idempotence: no write and no history entry when the stage is current.
	if promise.PipelineStageID != nil && *promise.PipelineStageID == stage.ID {
		return nil
	}

	entry := s.buildHistoryEntry(ctx, promise, stage, quotes, actorID)
	if err := s.store.UpdateStageWithHistory(ctx, promise, stage, entry); err != nil {
		return &syncError{reason: "persist stage change", err: err}
	}

	fromSlug := ""
	if entry.FromStageSlug != nil {
		fromSlug = *entry.FromStageSlug
	}
	s.log.StageChanged(promise.ID.String(), fromSlug, stage.Slug)

	if s.bus != nil {
		s.bus.Publish(ctx, events.PipelineStageChanged{
			BaseEvent: events.NewBaseEvent(),
			TenantID:  tenantID,
			PromiseID: promise.ID,
			FromSlug:  fromSlug,
			ToSlug:    stage.Slug,
		})
	}
	return nil
}

// resolveStage looks up the target slug in the tenant catalog, degrading via
// the fallback table when the slug is not configured.
func (s *Synchronizer) resolveStage(ctx context.Context, tenantID uuid.UUID, slug string) (*repository.PipelineStage, *syncError) {
	stage, err := s.store.FindActiveStageBySlug(ctx, tenantID, slug)
	if err == nil {
		return stage, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return nil, &syncError{reason: "look up stage " + slug, err: err}
	}

	fallback, ok := domain.FallbackStageSlug(slug)
	if !ok {
		return nil, &syncError{reason: fmt.Sprintf("stage %q not configured for tenant", slug)}
	}

	stage, err = s.store.FindActiveStageBySlug(ctx, tenantID, fallback)
	if err == nil {
		return stage, nil
	}
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, &syncError{reason: fmt.Sprintf("neither stage %q nor fallback %q configured for tenant", slug, fallback)}
	}
	return nil, &syncError{reason: "look up fallback stage " + fallback, err: err}
}

func (s *Synchronizer) buildHistoryEntry(ctx context.Context, promise *repository.Promise, stage *repository.PipelineStage, quotes []domain.QuoteSnapshot, actorID *uuid.UUID) *repository.StageHistoryEntry {
	var fromSlug *string
	if promise.PipelineStageID != nil {
		// Best effort: a stale stage reference still produces a history entry,
		// just without the old slug.
		if current, err := s.store.GetStageByID(ctx, promise.TenantID, *promise.PipelineStageID); err == nil {
			fromSlug = &current.Slug
		}
	}

	states := make([]quoteState, 0, len(quotes))
	for _, q := range quotes {
		states = append(states, quoteState{
			QuoteID:   q.ID.String(),
			Status:    string(q.Status),
			Selection: selectionLabel(q.Selection),
		})
	}
	// Marshal cannot fail for this shape.
	raw, _ := json.Marshal(states)

	return &repository.StageHistoryEntry{
		ID:            uuid.New(),
		TenantID:      promise.TenantID,
		PromiseID:     promise.ID,
		FromStageID:   promise.PipelineStageID,
		FromStageSlug: fromSlug,
		ToStageID:     stage.ID,
		ToStageSlug:   stage.Slug,
		ActorID:       actorID,
		Reason:        syncReason,
		QuoteStates:   raw,
		CreatedAt:     time.Now(),
	}
}

func selectionLabel(sel domain.Selection) string {
	switch sel {
	case domain.SelectionSelected:
		return "selected"
	case domain.SelectionNotSelected:
		return "not_selected"
	default:
		return "unknown"
	}
}
