package identity

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Identifiers drift across runs: the same record may appear as "HU-001",
// "HU 1", "001", "1" or, after a spreadsheet numeric coercion, "1.0".
// All those collapse to one canonical key so cross-run matching survives
// the drift.

const maxDescriptionLen = 300

var leadingDigits = regexp.MustCompile(`^(\d+)`)

var prefixPatterns = map[string]*regexp.Regexp{}

func prefixPattern(prefix string) *regexp.Regexp {
	if re, ok := prefixPatterns[prefix]; ok {
		return re
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(prefix) + `[-_]?\s*(\d+)`)
	prefixPatterns[prefix] = re
	return re
}

// NormalizeIdentity canonicalizes a raw identifier into a matching key.
// Purely numeric forms (including "7.0") become "item_7"; a known prefix
// followed by digits ("HU-007") becomes "item_7"; a bare leading digit
// run is keyed by its digits; anything else is lowercased and trimmed.
// Empty input yields an empty key.
func NormalizeIdentity(raw, prefix string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if isNumeric(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return fmt.Sprintf("item_%d", int64(f))
		}
	}
	if prefix != "" {
		if m := prefixPattern(prefix).FindStringSubmatch(s); m != nil {
			n, _ := strconv.ParseInt(m[1], 10, 64)
			return fmt.Sprintf("item_%d", n)
		}
	}
	if m := leadingDigits.FindStringSubmatch(s); m != nil {
		n, _ := strconv.ParseInt(m[1], 10, 64)
		return fmt.Sprintf("item_%d", n)
	}
	return strings.ToLower(s)
}

// isNumeric reports whether s is all digits once a single embedded
// decimal point is removed.
func isNumeric(s string) bool {
	if strings.Count(s, ".") > 1 {
		return false
	}
	stripped := strings.ReplaceAll(s, ".", "")
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NormalizeTitle lowercases and collapses internal whitespace.
func NormalizeTitle(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// NormalizeDescription is NormalizeTitle plus a fixed-length truncation
// that keeps similarity comparison cheap on long descriptions.
func NormalizeDescription(s string) string {
	out := NormalizeTitle(s)
	if len(out) > maxDescriptionLen {
		out = out[:maxDescriptionLen]
	}
	return out
}
