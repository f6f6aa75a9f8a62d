package identity

import (
	"strings"
	"testing"
)

func TestNormalizeIdentityNumericForms(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"1", "item_1"},
		{"001", "item_1"},
		{"1.0", "item_1"},
		{"42.0", "item_42"},
		{"  7  ", "item_7"},
		{"HU-001", "item_1"},
		{"HU-1", "item_1"},
		{"hu_12", "item_12"},
		{"HU 3", "item_3"},
		{"15b", "item_15"},
		{"Login flow", "login flow"},
		{"  Mixed Case Text ", "mixed case text"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeIdentity(tc.raw, "HU"); got != tc.want {
			t.Errorf("NormalizeIdentity(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeIdentityFormatInsensitive(t *testing.T) {
	// "1.0" and "1" name the same record no matter how the spreadsheet
	// coerced them.
	if NormalizeIdentity("1.0", "HU") != NormalizeIdentity("1", "HU") {
		t.Fatal("expected 1.0 and 1 to normalize to the same key")
	}
	if NormalizeIdentity("HU-007", "HU") != NormalizeIdentity("7", "HU") {
		t.Fatal("expected HU-007 and 7 to normalize to the same key")
	}
}

func TestNormalizeIdentityStableFixedPoint(t *testing.T) {
	for _, raw := range []string{"HU-003", "17", "2.0", "free text id", ""} {
		once := NormalizeIdentity(raw, "HU")
		twice := NormalizeIdentity(once, "HU")
		if twice != NormalizeIdentity(twice, "HU") {
			t.Errorf("normalization of %q is not a fixed point after two passes", raw)
		}
	}
}

func TestNormalizeTitle(t *testing.T) {
	if got := NormalizeTitle("  Login   Flow \t V2 "); got != "login flow v2" {
		t.Fatalf("NormalizeTitle = %q", got)
	}
	if got := NormalizeTitle(""); got != "" {
		t.Fatalf("NormalizeTitle empty = %q", got)
	}
}

func TestNormalizeDescriptionTruncates(t *testing.T) {
	long := strings.Repeat("a", 500)
	got := NormalizeDescription(long)
	if len(got) != 300 {
		t.Fatalf("expected 300-char truncation, got %d", len(got))
	}
}
