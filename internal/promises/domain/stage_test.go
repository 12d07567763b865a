package domain

import "testing"

func TestDeriveStageSlug_Rules(t *testing.T) {
	tests := []struct {
		name   string
		quotes []QuoteSnapshot
		want   string
	}{
		{
			name:   "empty list defaults to pending",
			quotes: nil,
			want:   StagePending,
		},
		{
			name:   "single pending quote",
			quotes: []QuoteSnapshot{quote("pending", nil)},
			want:   StagePending,
		},
		{
			name: "approved wins over everything",
			quotes: []QuoteSnapshot{
				quote("negotiation", boolPtr(false)),
				quote("closing", boolPtr(true)),
				quote("approved", nil),
			},
			want: StageApproved,
		},
		{
			name:   "contract flow counts as approved",
			quotes: []QuoteSnapshot{quote("contract-signed", nil)},
			want:   StageApproved,
		},
		{
			name:   "authorized counts as approved",
			quotes: []QuoteSnapshot{quote("authorized", nil), quote("pending", nil)},
			want:   StageApproved,
		},
		{
			name: "selected closing quote",
			quotes: []QuoteSnapshot{
				quote("closing", boolPtr(true)),
				quote("pending", nil),
			},
			want: StageClosing,
		},
		{
			name: "unselected closing quote does not trigger closing stage",
			quotes: []QuoteSnapshot{
				quote("closing", nil),
				quote("pending", nil),
			},
			want: StagePending,
		},
		{
			name: "legacy alias with selection reaches closing",
			quotes: []QuoteSnapshot{
				quote("cierre", boolPtr(true)),
			},
			want: StageClosing,
		},
		{
			name: "open negotiation",
			quotes: []QuoteSnapshot{
				quote("negotiation", boolPtr(false)),
				quote("pending", nil),
			},
			want: StageNegotiation,
		},
		{
			name: "negotiation with unknown selection is still open",
			quotes: []QuoteSnapshot{
				quote("negotiation", nil),
			},
			want: StageNegotiation,
		},
		{
			name: "all canceled",
			quotes: []QuoteSnapshot{
				quote("canceled", nil),
				quote("canceled", nil),
			},
			want: StageCanceled,
		},
		{
			name: "canceled mixed with pending falls through to pending",
			quotes: []QuoteSnapshot{
				quote("canceled", nil),
				quote("pending", nil),
			},
			want: StagePending,
		},
		{
			name: "unknown status prevents all-canceled rule",
			quotes: []QuoteSnapshot{
				quote("canceled", nil),
				quote("draft", nil),
			},
			want: StagePending,
		},
	}

	for _, tc := range tests {
		if got := DeriveStageSlug(tc.quotes); got != tc.want {
			t.Errorf("%s: DeriveStageSlug = %q, want %q", tc.name, got, tc.want)
		}
	}
}

// Routing and stage derivation intentionally disagree on the empty quote set:
// routing has no view to offer while the funnel position defaults to pending.
func TestEmptyQuoteSet_RouteAndStageDefaultsDiffer(t *testing.T) {
	if got := ResolveRoute(nil); got != RouteNone {
		t.Fatalf("ResolveRoute(empty) = %q, want %q", got, RouteNone)
	}
	if got := DeriveStageSlug(nil); got != StagePending {
		t.Fatalf("DeriveStageSlug(empty) = %q, want %q", got, StagePending)
	}
}

func TestFallbackStageSlug(t *testing.T) {
	tests := []struct {
		slug     string
		want     string
		hasEntry bool
	}{
		{StageClosing, StageNegotiation, true},
		{StageCanceled, StagePending, true},
		{StageApproved, "", false},
		{StageNegotiation, "", false},
		{StagePending, "", false},
	}

	for _, tc := range tests {
		got, ok := FallbackStageSlug(tc.slug)
		if ok != tc.hasEntry || got != tc.want {
			t.Errorf("FallbackStageSlug(%q) = (%q, %v), want (%q, %v)", tc.slug, got, ok, tc.want, tc.hasEntry)
		}
	}
}
