package domain

import "testing"

func TestCommercialCondition_AdvanceAmount(t *testing.T) {
	tests := []struct {
		name       string
		cond       CommercialCondition
		finalCents int64
		want       int64
	}{
		{"percentage", CommercialCondition{AdvanceKind: AdvanceKindPercentage, AdvanceValue: 30}, 100000, 30000},
		{"fixed", CommercialCondition{AdvanceKind: AdvanceKindFixed, AdvanceValue: 25000}, 100000, 25000},
		{"fixed capped at final price", CommercialCondition{AdvanceKind: AdvanceKindFixed, AdvanceValue: 150000}, 100000, 100000},
		{"zero value", CommercialCondition{AdvanceKind: AdvanceKindPercentage, AdvanceValue: 0}, 100000, 0},
		{"unknown kind", CommercialCondition{AdvanceKind: "installments", AdvanceValue: 3}, 100000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cond.AdvanceAmount(tt.finalCents)
			if got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}
