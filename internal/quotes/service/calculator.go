package service

import (
	"math"

	"studio_portal_backend/internal/quotes/transport"
)

// roundCents rounds a float to the nearest cent (integer)
func roundCents(v float64) int64 {
	return int64(math.Round(v))
}

// lineAmount multiplies a per-unit cent amount by the line quantity.
func lineAmount(cents int64, qty float64) float64 {
	return float64(cents) * qty
}

// ComputeBreakdown computes the negotiation financials for a set of line
// items. Courtesy items keep their full cost and expense but contribute zero
// to the reference price. A manual price, when present and positive, replaces
// the reference price as the final price. All derived ratios are zero-guarded
// so an empty or fully-courtesy quote produces a valid breakdown.
func ComputeBreakdown(items []transport.NegotiationItem, courtesyIDs []string, manualPriceCents *int64, markup float64) transport.NegotiationBreakdown {
	courtesy := make(map[string]struct{}, len(courtesyIDs))
	for _, id := range courtesyIDs {
		courtesy[id] = struct{}{}
	}

	var costFloat, expenseFloat, referenceFloat, originalFloat float64
	for _, item := range items {
		costFloat += lineAmount(item.CostCents, item.Quantity)
		expenseFloat += lineAmount(item.ExpenseCents, item.Quantity)

		gross := lineAmount(item.UnitPriceCents, item.Quantity)
		originalFloat += gross
		if _, isCourtesy := courtesy[item.ID]; !isCourtesy {
			referenceFloat += gross
		}
	}

	costCents := roundCents(costFloat)
	expenseCents := roundCents(expenseFloat)
	referenceCents := roundCents(referenceFloat)

	finalCents := referenceCents
	if manualPriceCents != nil && *manualPriceCents > 0 {
		finalCents = *manualPriceCents
	}

	netProfitCents := finalCents - costCents - expenseCents

	marginPercent := 0.0
	if finalCents != 0 {
		marginPercent = float64(netProfitCents) / float64(finalCents) * 100.0
	}

	// Back out the markup to find the implied base, then subtract real costs.
	markupAdjusted := roundCents(float64(finalCents)/(1.0+markup)) - costCents - expenseCents

	originalCents := roundCents(originalFloat)
	discountRatio := 0.0
	if originalCents > 0 {
		discountRatio = float64(referenceCents-finalCents) / float64(originalCents)
	}

	return transport.NegotiationBreakdown{
		CostTotalCents:            costCents,
		ExpenseTotalCents:         expenseCents,
		ReferencePriceCents:       referenceCents,
		FinalPriceCents:           finalCents,
		NetProfitCents:            netProfitCents,
		MarginPercent:             marginPercent,
		MarkupAdjustedProfitCents: markupAdjusted,
		DiscountRatio:             discountRatio,
		MarginWarning:             discountRatio > markup,
	}
}
