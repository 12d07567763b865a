// Package domain provides core business rules for the promises bounded context:
// quote status canonicalization, prospect route resolution, and pipeline stage
// derivation. Everything in this package is pure and safe for concurrent use.
package domain

import "github.com/google/uuid"

// Status is a canonical quote status. The vocabulary is closed and
// case-sensitive; adding a value requires updating the derivation rules in
// route.go and stage.go.
type Status string

const (
	StatusPending           Status = "pending"
	StatusNegotiation       Status = "negotiation"
	StatusClosing           Status = "closing"
	StatusApproved          Status = "approved"
	StatusAuthorized        Status = "authorized"
	StatusContractPending   Status = "contract-pending"
	StatusContractGenerated Status = "contract-generated"
	StatusContractSigned    Status = "contract-signed"
	StatusCanceled          Status = "canceled"
)

// statusAliases maps deprecated spellings still present in older rows to
// their canonical form.
var statusAliases = map[string]Status{
	"cierre": StatusClosing,
}

var knownStatuses = map[Status]struct{}{
	StatusPending:           {},
	StatusNegotiation:       {},
	StatusClosing:           {},
	StatusApproved:          {},
	StatusAuthorized:        {},
	StatusContractPending:   {},
	StatusContractGenerated: {},
	StatusContractSigned:    {},
	StatusCanceled:          {},
}

// NormalizeStatus canonicalizes a raw quote-status string. It is total and
// idempotent: unrecognized values pass through unchanged so callers can still
// compare them, and normalizing an already-canonical value is a no-op.
func NormalizeStatus(raw string) Status {
	if canonical, ok := statusAliases[raw]; ok {
		return canonical
	}
	return Status(raw)
}

// IsKnownStatus reports whether the status belongs to the closed vocabulary.
func IsKnownStatus(s Status) bool {
	_, ok := knownStatuses[s]
	return ok
}

// approvedFamily are the statuses that count as a won deal for stage
// derivation purposes.
var approvedFamily = map[Status]struct{}{
	StatusApproved:          {},
	StatusAuthorized:        {},
	StatusContractPending:   {},
	StatusContractGenerated: {},
	StatusContractSigned:    {},
}

// IsApprovedFamily reports whether the status marks the quote as
// approved/authorized or anywhere in the contract flow.
func IsApprovedFamily(s Status) bool {
	_, ok := approvedFamily[s]
	return ok
}

// Selection is the prospect's tri-state selection flag on a quote. The
// persisted column is a nullable boolean; the explicit enumeration keeps the
// derivation branches exhaustive instead of relying on loose nil checks.
type Selection int

const (
	// SelectionUnknown means the prospect has not interacted with the quote.
	SelectionUnknown Selection = iota
	// SelectionSelected means the prospect explicitly picked this quote.
	SelectionSelected
	// SelectionNotSelected means the prospect explicitly passed on this quote.
	SelectionNotSelected
)

// SelectionFromNullableBool converts the persisted tri-state column.
func SelectionFromNullableBool(v *bool) Selection {
	switch {
	case v == nil:
		return SelectionUnknown
	case *v:
		return SelectionSelected
	default:
		return SelectionNotSelected
	}
}

// QuoteSnapshot is the read-model input for route resolution and stage
// derivation: one non-archived quote's status and selection flag, read fresh
// at decision time.
type QuoteSnapshot struct {
	ID        uuid.UUID
	Status    Status
	Selection Selection
}

// NewQuoteSnapshot builds a snapshot from raw persisted values, normalizing
// the status on the way in.
func NewQuoteSnapshot(id uuid.UUID, rawStatus string, selected *bool) QuoteSnapshot {
	return QuoteSnapshot{
		ID:        id,
		Status:    NormalizeStatus(rawStatus),
		Selection: SelectionFromNullableBool(selected),
	}
}
