// Package domain holds quote-level business rules that do not depend on
// storage or transport.
package domain

import "math"

// Advance payment kinds supported by commercial conditions.
const (
	AdvanceKindPercentage = "percentage"
	AdvanceKindFixed      = "fixed"
)

// CommercialCondition is the discount and advance-payment rule attached to a
// quote. Percentage advances are whole percent of the final price; fixed
// advances are already cents.
type CommercialCondition struct {
	DiscountPercent float64
	AdvanceKind     string
	AdvanceValue    int64
}

// AdvanceAmount resolves the advance payment against a final price, capped at
// the final price. Unknown kinds and non-positive values yield zero.
func (c CommercialCondition) AdvanceAmount(finalPriceCents int64) int64 {
	var amount int64
	switch c.AdvanceKind {
	case AdvanceKindPercentage:
		if c.AdvanceValue > 0 {
			amount = int64(math.Round(float64(finalPriceCents) * float64(c.AdvanceValue) / 100.0))
		}
	case AdvanceKindFixed:
		if c.AdvanceValue > 0 {
			amount = c.AdvanceValue
		}
	}
	if amount > finalPriceCents {
		return finalPriceCents
	}
	return amount
}
