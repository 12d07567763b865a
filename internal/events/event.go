// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"studio_portal_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event     = events.Event
	Bus       = events.Bus
	Handler   = events.Handler
	BaseEvent = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Quote Domain Events
// =============================================================================

// QuoteStatusChanged is published after a quote's status has been persisted.
// The promises module reacts by invalidating the route cache and re-deriving
// the owning promise's pipeline stage.
type QuoteStatusChanged struct {
	BaseEvent
	TenantID   uuid.UUID  `json:"tenantId"`
	PromiseID  uuid.UUID  `json:"promiseId"`
	QuoteID    uuid.UUID  `json:"quoteId"`
	FromStatus string     `json:"fromStatus"`
	ToStatus   string     `json:"toStatus"`
	ActorID    *uuid.UUID `json:"actorId,omitempty"`
}

// EventName returns the unique event identifier.
func (e QuoteStatusChanged) EventName() string { return "quotes.status_changed" }

// QuoteSelectionChanged is published when a prospect selects or deselects a
// quote in the public portal.
type QuoteSelectionChanged struct {
	BaseEvent
	TenantID  uuid.UUID `json:"tenantId"`
	PromiseID uuid.UUID `json:"promiseId"`
	QuoteID   uuid.UUID `json:"quoteId"`
	Selected  bool      `json:"selected"`
}

// EventName returns the unique event identifier.
func (e QuoteSelectionChanged) EventName() string { return "quotes.selection_changed" }

// =============================================================================
// Promise Domain Events
// =============================================================================

// PipelineStageChanged is published after a promise's pipeline stage has been
// updated by the synchronizer. Best-effort consumers only; the authoritative
// audit trail is the status history table.
type PipelineStageChanged struct {
	BaseEvent
	TenantID  uuid.UUID `json:"tenantId"`
	PromiseID uuid.UUID `json:"promiseId"`
	FromSlug  string    `json:"fromSlug"`
	ToSlug    string    `json:"toSlug"`
}

// EventName returns the unique event identifier.
func (e PipelineStageChanged) EventName() string { return "promises.pipeline_stage_changed" }
