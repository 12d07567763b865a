package domain

import (
	"testing"

	"github.com/google/uuid"
)

func quote(status string, selected *bool) QuoteSnapshot {
	return NewQuoteSnapshot(uuid.New(), status, selected)
}

func boolPtr(v bool) *bool { return &v }

func TestResolveRoute_PriorityOrder(t *testing.T) {
	tests := []struct {
		name   string
		quotes []QuoteSnapshot
		want   RouteTarget
	}{
		{
			name:   "single pending quote",
			quotes: []QuoteSnapshot{quote("pending", nil)},
			want:   RoutePending,
		},
		{
			name: "negotiation beats pending",
			quotes: []QuoteSnapshot{
				quote("negotiation", boolPtr(false)),
				quote("pending", nil),
			},
			want: RouteNegotiation,
		},
		{
			name: "negotiation with unknown selection still wins",
			quotes: []QuoteSnapshot{
				quote("pending", nil),
				quote("negotiation", nil),
			},
			want: RouteNegotiation,
		},
		{
			name: "selected negotiation quote does not count as open negotiation",
			quotes: []QuoteSnapshot{
				quote("negotiation", boolPtr(true)),
				quote("pending", nil),
			},
			want: RoutePending,
		},
		{
			name: "closing beats pending",
			quotes: []QuoteSnapshot{
				quote("pending", nil),
				quote("closing", boolPtr(true)),
			},
			want: RouteClosing,
		},
		{
			name: "negotiation beats closing",
			quotes: []QuoteSnapshot{
				quote("closing", boolPtr(true)),
				quote("negotiation", boolPtr(false)),
			},
			want: RouteNegotiation,
		},
		{
			name: "legacy alias routes as closing",
			quotes: []QuoteSnapshot{
				quote("cierre", nil),
			},
			want: RouteClosing,
		},
		{
			name: "closing amid canceled quotes",
			quotes: []QuoteSnapshot{
				quote("canceled", nil),
				quote("closing", nil),
				quote("canceled", nil),
			},
			want: RouteClosing,
		},
		{
			name:   "empty list yields no match",
			quotes: nil,
			want:   RouteNone,
		},
		{
			name: "all canceled yields no match",
			quotes: []QuoteSnapshot{
				quote("canceled", nil),
				quote("canceled", boolPtr(true)),
			},
			want: RouteNone,
		},
		{
			name: "approved quotes alone yield no match",
			quotes: []QuoteSnapshot{
				quote("approved", boolPtr(true)),
			},
			want: RouteNone,
		},
		{
			name: "unknown statuses match no tier",
			quotes: []QuoteSnapshot{
				quote("draft", nil),
			},
			want: RouteNone,
		},
	}

	for _, tc := range tests {
		if got := ResolveRoute(tc.quotes); got != tc.want {
			t.Errorf("%s: ResolveRoute = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestResolveRoute_OrderIndependent(t *testing.T) {
	a := quote("negotiation", boolPtr(false))
	b := quote("closing", nil)
	c := quote("pending", nil)

	forward := ResolveRoute([]QuoteSnapshot{a, b, c})
	reverse := ResolveRoute([]QuoteSnapshot{c, b, a})

	if forward != reverse {
		t.Fatalf("resolution depends on ordering: %q vs %q", forward, reverse)
	}
	if forward != RouteNegotiation {
		t.Fatalf("expected negotiation tier, got %q", forward)
	}
}

func TestIsRouteValid_AgreesWithResolveRoute(t *testing.T) {
	quoteSets := [][]QuoteSnapshot{
		nil,
		{quote("pending", nil)},
		{quote("negotiation", nil), quote("pending", nil)},
		{quote("closing", boolPtr(true))},
		{quote("canceled", nil)},
		{quote("cierre", nil), quote("negotiation", boolPtr(true))},
	}
	tags := []RouteTarget{RouteNegotiation, RouteClosing, RoutePending, RouteNone}

	for _, quotes := range quoteSets {
		resolved := ResolveRoute(quotes)
		for _, tag := range tags {
			want := tag == resolved
			if got := IsRouteValid(tag, quotes); got != want {
				t.Errorf("IsRouteValid(%q) = %v, want %v (resolved %q)", tag, got, want, resolved)
			}
		}
	}
}
