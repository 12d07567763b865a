package service

import (
	"math"
	"testing"

	"studio_portal_backend/internal/quotes/transport"
)

func int64Ptr(v int64) *int64 { return &v }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeBreakdown_BasicTotals(t *testing.T) {
	items := []transport.NegotiationItem{
		{ID: "a", Quantity: 2, UnitPriceCents: 10000, CostCents: 4000, ExpenseCents: 1000},
		{ID: "b", Quantity: 1, UnitPriceCents: 5000, CostCents: 2000, ExpenseCents: 500},
	}

	result := ComputeBreakdown(items, nil, nil, 0.35)

	if result.CostTotalCents != 10000 {
		t.Fatalf("expected cost 10000, got %d", result.CostTotalCents)
	}
	if result.ExpenseTotalCents != 2500 {
		t.Fatalf("expected expense 2500, got %d", result.ExpenseTotalCents)
	}
	if result.ReferencePriceCents != 25000 {
		t.Fatalf("expected reference 25000, got %d", result.ReferencePriceCents)
	}
	if result.FinalPriceCents != 25000 {
		t.Fatalf("expected final 25000, got %d", result.FinalPriceCents)
	}
	if result.NetProfitCents != 12500 {
		t.Fatalf("expected net profit 12500, got %d", result.NetProfitCents)
	}
	if !almostEqual(result.MarginPercent, 50.0) {
		t.Fatalf("expected margin 50%%, got %f", result.MarginPercent)
	}
	if !almostEqual(result.DiscountRatio, 0) {
		t.Fatalf("expected zero discount ratio, got %f", result.DiscountRatio)
	}
	if result.MarginWarning {
		t.Fatal("expected no margin warning without a discount")
	}
}

func TestComputeBreakdown_CourtesyItemsKeepCostButPriceZero(t *testing.T) {
	items := []transport.NegotiationItem{
		{ID: "paid", Quantity: 1, UnitPriceCents: 20000, CostCents: 8000, ExpenseCents: 0},
		{ID: "gift", Quantity: 1, UnitPriceCents: 5000, CostCents: 3000, ExpenseCents: 500},
	}

	result := ComputeBreakdown(items, []string{"gift"}, nil, 0.35)

	if result.ReferencePriceCents != 20000 {
		t.Fatalf("expected reference to exclude courtesy item, got %d", result.ReferencePriceCents)
	}
	// Cost and expense of the courtesy item still count against profit.
	if result.CostTotalCents != 11000 {
		t.Fatalf("expected cost 11000, got %d", result.CostTotalCents)
	}
	if result.ExpenseTotalCents != 500 {
		t.Fatalf("expected expense 500, got %d", result.ExpenseTotalCents)
	}
	if result.NetProfitCents != 20000-11000-500 {
		t.Fatalf("expected net profit %d, got %d", 20000-11000-500, result.NetProfitCents)
	}
	// Discount ratio uses the original (all items) price as denominator:
	// (20000 - 20000) / 25000 = 0... reference already reflects the courtesy,
	// so marking an item courtesy alone does not register as a discount.
	if !almostEqual(result.DiscountRatio, 0) {
		t.Fatalf("expected zero discount ratio, got %f", result.DiscountRatio)
	}
}

func TestComputeBreakdown_ManualPriceOverridesReference(t *testing.T) {
	items := []transport.NegotiationItem{
		{ID: "a", Quantity: 1, UnitPriceCents: 30000, CostCents: 10000, ExpenseCents: 2000},
	}

	result := ComputeBreakdown(items, nil, int64Ptr(24000), 0.35)

	if result.FinalPriceCents != 24000 {
		t.Fatalf("expected final 24000, got %d", result.FinalPriceCents)
	}
	if result.NetProfitCents != 24000-12000 {
		t.Fatalf("expected net profit 12000, got %d", result.NetProfitCents)
	}
	if !almostEqual(result.DiscountRatio, float64(30000-24000)/30000.0) {
		t.Fatalf("expected discount ratio 0.2, got %f", result.DiscountRatio)
	}
}

func TestComputeBreakdown_ZeroManualPriceFallsBackToReference(t *testing.T) {
	items := []transport.NegotiationItem{
		{ID: "a", Quantity: 1, UnitPriceCents: 10000},
	}

	result := ComputeBreakdown(items, nil, int64Ptr(0), 0.35)

	if result.FinalPriceCents != 10000 {
		t.Fatalf("expected reference price used when manual price is zero, got %d", result.FinalPriceCents)
	}
}

func TestComputeBreakdown_EmptyItemsAllZero(t *testing.T) {
	result := ComputeBreakdown(nil, nil, nil, 0.35)

	if result.FinalPriceCents != 0 || result.NetProfitCents != 0 {
		t.Fatalf("expected all-zero breakdown, got %+v", result)
	}
	if !almostEqual(result.MarginPercent, 0) {
		t.Fatalf("expected zero margin on empty quote, got %f", result.MarginPercent)
	}
	if !almostEqual(result.DiscountRatio, 0) {
		t.Fatalf("expected zero discount ratio on empty quote, got %f", result.DiscountRatio)
	}
	if result.MarginWarning {
		t.Fatal("expected no warning on empty quote")
	}
}

func TestComputeBreakdown_AllCourtesyZeroFinalPrice(t *testing.T) {
	items := []transport.NegotiationItem{
		{ID: "gift", Quantity: 1, UnitPriceCents: 5000, CostCents: 3000},
	}

	result := ComputeBreakdown(items, []string{"gift"}, nil, 0.35)

	if result.FinalPriceCents != 0 {
		t.Fatalf("expected zero final price, got %d", result.FinalPriceCents)
	}
	if result.NetProfitCents != -3000 {
		t.Fatalf("expected net profit -3000, got %d", result.NetProfitCents)
	}
	if !almostEqual(result.MarginPercent, 0) {
		t.Fatalf("expected guarded margin of zero, got %f", result.MarginPercent)
	}
}

func TestComputeBreakdown_MarkupAdjustedProfit(t *testing.T) {
	items := []transport.NegotiationItem{
		{ID: "a", Quantity: 1, UnitPriceCents: 13500, CostCents: 8000, ExpenseCents: 2000},
	}

	// Base implied by 35% markup: 13500 / 1.35 = 10000. Against real
	// costs of 10000 the markup-adjusted profit is exactly zero.
	result := ComputeBreakdown(items, nil, nil, 0.35)

	if result.MarkupAdjustedProfitCents != 0 {
		t.Fatalf("expected markup-adjusted profit 0, got %d", result.MarkupAdjustedProfitCents)
	}
}

func TestComputeBreakdown_MarginWarningWhenDiscountExceedsMarkup(t *testing.T) {
	items := []transport.NegotiationItem{
		{ID: "a", Quantity: 1, UnitPriceCents: 10000, CostCents: 2000},
	}

	// 40% discount against a 35% markup trips the warning.
	withDeepDiscount := ComputeBreakdown(items, nil, int64Ptr(6000), 0.35)
	if !withDeepDiscount.MarginWarning {
		t.Fatal("expected margin warning when discount ratio exceeds the markup")
	}

	// 30% discount stays under the markup.
	withMildDiscount := ComputeBreakdown(items, nil, int64Ptr(7000), 0.35)
	if withMildDiscount.MarginWarning {
		t.Fatal("expected no margin warning when discount ratio is within the markup")
	}
}

func TestComputeBreakdown_QuantityScalesEveryComponent(t *testing.T) {
	single := ComputeBreakdown([]transport.NegotiationItem{
		{ID: "a", Quantity: 1, UnitPriceCents: 1000, CostCents: 300, ExpenseCents: 100},
	}, nil, nil, 0.35)
	tripled := ComputeBreakdown([]transport.NegotiationItem{
		{ID: "a", Quantity: 3, UnitPriceCents: 1000, CostCents: 300, ExpenseCents: 100},
	}, nil, nil, 0.35)

	if tripled.CostTotalCents != 3*single.CostTotalCents {
		t.Fatalf("expected cost scaled by quantity, got %d", tripled.CostTotalCents)
	}
	if tripled.ExpenseTotalCents != 3*single.ExpenseTotalCents {
		t.Fatalf("expected expense scaled by quantity, got %d", tripled.ExpenseTotalCents)
	}
	if tripled.ReferencePriceCents != 3*single.ReferencePriceCents {
		t.Fatalf("expected reference scaled by quantity, got %d", tripled.ReferencePriceCents)
	}
}
