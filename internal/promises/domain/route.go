package domain

// RouteTarget is an opaque tag naming the public view a prospect should be
// sent to. Calling code maps tags to whatever page mechanism it uses.
type RouteTarget string

const (
	// RouteNegotiation sends the prospect to the negotiation view.
	RouteNegotiation RouteTarget = "negotiation-view"
	// RouteClosing sends the prospect to the closing view.
	RouteClosing RouteTarget = "closing-view"
	// RoutePending sends the prospect to the pending/catalog view.
	RoutePending RouteTarget = "pending-view"
	// RouteNone signals that no view applies; the caller must show an
	// explicit "not available" state rather than loop back into resolution.
	RouteNone RouteTarget = "no-match"
)

// Tier predicates. A quote in active negotiation is one the prospect has not
// yet committed to; once selected it belongs to the closing flow instead.

func isOpenNegotiation(q QuoteSnapshot) bool {
	return q.Status == StatusNegotiation && q.Selection != SelectionSelected
}

func isClosing(q QuoteSnapshot) bool {
	return q.Status == StatusClosing
}

func isPending(q QuoteSnapshot) bool {
	return q.Status == StatusPending
}

func anyQuote(quotes []QuoteSnapshot, pred func(QuoteSnapshot) bool) bool {
	for _, q := range quotes {
		if pred(q) {
			return true
		}
	}
	return false
}

// ResolveRoute computes the single target route for a promise's quote set.
// Priority order, first match wins: negotiation > closing > pending > none.
// The result depends only on which tiers are populated, never on which
// specific quote matched, so resolution is deterministic over the quote set
// regardless of ordering. Total over any finite list including the empty one.
func ResolveRoute(quotes []QuoteSnapshot) RouteTarget {
	switch {
	case anyQuote(quotes, isOpenNegotiation):
		return RouteNegotiation
	case anyQuote(quotes, isClosing):
		return RouteClosing
	case anyQuote(quotes, isPending):
		return RoutePending
	default:
		return RouteNone
	}
}

// IsRouteValid reports whether a client-held route tag is still the correct
// destination for the quote set. Defined as full re-resolution so the tier
// predicates cannot drift from ResolveRoute.
func IsRouteValid(tag RouteTarget, quotes []QuoteSnapshot) bool {
	return ResolveRoute(quotes) == tag
}
