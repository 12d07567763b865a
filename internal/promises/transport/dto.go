// Package transport defines request/response DTOs for the promises module.
package transport

import (
	"encoding/json"
	"time"
)

// RouteResponse is returned by the route resolution endpoints.
type RouteResponse struct {
	PromiseID string `json:"promiseId"`
	Route     string `json:"route"`
}

// RouteCheckRequest asks whether a client-held route tag is still valid.
type RouteCheckRequest struct {
	Route string `json:"route" binding:"required,oneof=negotiation-view closing-view pending-view no-match"`
}

// RouteCheckResponse reports validity plus the currently correct target so
// the client can redirect without a second round trip.
type RouteCheckResponse struct {
	Valid        bool   `json:"valid"`
	CurrentRoute string `json:"currentRoute"`
}

// SyncResponse acknowledges a forced pipeline re-sync.
type SyncResponse struct {
	PromiseID string `json:"promiseId"`
	Queued    bool   `json:"queued"`
}

// StageResponse describes one tenant stage catalog entry.
type StageResponse struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// StageHistoryEntryResponse is one immutable audit record.
type StageHistoryEntryResponse struct {
	ID            string          `json:"id"`
	FromStageID   *string         `json:"fromStageId,omitempty"`
	FromStageSlug *string         `json:"fromStageSlug,omitempty"`
	ToStageID     string          `json:"toStageId"`
	ToStageSlug   string          `json:"toStageSlug"`
	ActorID       *string         `json:"actorId,omitempty"`
	Reason        string          `json:"reason"`
	QuoteStates   json.RawMessage `json:"quoteStates"`
	CreatedAt     time.Time       `json:"createdAt"`
}
