package domain

// Pipeline stage slugs. These are tenant-catalog keys: a tenant is not
// guaranteed to have every slug configured, which is why stageFallbacks exists.
const (
	StagePending     = "pending"
	StageNegotiation = "negotiation"
	StageClosing     = "closing"
	StageApproved    = "approved"
	StageCanceled    = "canceled"
)

// stageFallbacks substitutes a slug that is absent from a tenant's catalog.
// Only closing and canceled degrade; the remaining slugs have no substitute
// and their absence aborts the sync.
var stageFallbacks = map[string]string{
	StageClosing:  StageNegotiation,
	StageCanceled: StagePending,
}

// FallbackStageSlug returns the substitute slug for a missing catalog entry,
// if one is defined.
func FallbackStageSlug(slug string) (string, bool) {
	fallback, ok := stageFallbacks[slug]
	return fallback, ok
}

// DeriveStageSlug computes the aggregate pipeline stage slug for a promise
// from its non-archived quotes. Fixed priority, first true rule wins:
//
//  1. any approved-family quote           -> approved
//  2. any selected closing quote          -> closing
//  3. any unselected negotiation quote    -> negotiation
//  4. non-empty list, all canceled        -> canceled
//  5. otherwise                           -> pending
//
// Note that the empty list lands on pending here while ResolveRoute maps it
// to RouteNone; the stage default and the routing default are intentionally
// independent.
func DeriveStageSlug(quotes []QuoteSnapshot) string {
	switch {
	case anyQuote(quotes, func(q QuoteSnapshot) bool { return IsApprovedFamily(q.Status) }):
		return StageApproved
	case anyQuote(quotes, func(q QuoteSnapshot) bool {
		return q.Status == StatusClosing && q.Selection == SelectionSelected
	}):
		return StageClosing
	case anyQuote(quotes, isOpenNegotiation):
		return StageNegotiation
	case len(quotes) > 0 && allCanceled(quotes):
		return StageCanceled
	default:
		return StagePending
	}
}

func allCanceled(quotes []QuoteSnapshot) bool {
	for _, q := range quotes {
		if q.Status != StatusCanceled {
			return false
		}
	}
	return true
}
