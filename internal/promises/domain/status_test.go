package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNormalizeStatus_LegacyAlias(t *testing.T) {
	if got := NormalizeStatus("cierre"); got != StatusClosing {
		t.Fatalf(`NormalizeStatus("cierre") = %q, want %q`, got, StatusClosing)
	}
	if NormalizeStatus("cierre") != NormalizeStatus(string(StatusClosing)) {
		t.Fatal("alias and canonical form must normalize identically")
	}
}

func TestNormalizeStatus_Idempotent(t *testing.T) {
	samples := []string{
		"cierre",
		"closing",
		"pending",
		"negotiation",
		"approved",
		"authorized",
		"contract-pending",
		"contract-generated",
		"contract-signed",
		"canceled",
		"",
		"something-unrecognized",
		"CIERRE", // case-sensitive vocabulary: must pass through untouched
	}

	for _, raw := range samples {
		once := NormalizeStatus(raw)
		twice := NormalizeStatus(string(once))
		if once != twice {
			t.Errorf("NormalizeStatus not idempotent for %q: %q then %q", raw, once, twice)
		}
	}
}

func TestNormalizeStatus_UnknownPassesThrough(t *testing.T) {
	if got := NormalizeStatus("draft"); got != Status("draft") {
		t.Fatalf("unknown status should pass through, got %q", got)
	}
	if IsKnownStatus(Status("draft")) {
		t.Fatal("draft must not be part of the closed vocabulary")
	}
}

func TestSelectionFromNullableBool(t *testing.T) {
	yes, no := true, false

	tests := []struct {
		name string
		in   *bool
		want Selection
	}{
		{"nil is unknown", nil, SelectionUnknown},
		{"true is selected", &yes, SelectionSelected},
		{"false is not selected", &no, SelectionNotSelected},
	}

	for _, tc := range tests {
		if got := SelectionFromNullableBool(tc.in); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestNewQuoteSnapshot_NormalizesOnConstruction(t *testing.T) {
	id := uuid.New()
	snap := NewQuoteSnapshot(id, "cierre", nil)

	if snap.Status != StatusClosing {
		t.Fatalf("snapshot status = %q, want %q", snap.Status, StatusClosing)
	}
	if snap.Selection != SelectionUnknown {
		t.Fatalf("snapshot selection = %v, want unknown", snap.Selection)
	}
	if snap.ID != id {
		t.Fatalf("snapshot id mismatch")
	}
}
