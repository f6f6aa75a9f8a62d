package tabular

import "strings"

// Locator resolves the columns the pipeline cares about from a table's
// headers. Index building and record loading depend only on this
// resolution, never on fixed cell coordinates, so sources with renamed
// or shuffled columns still load.
type Locator struct {
	Identity    int
	Title       int
	Description int
	ScoreAnchor int // first score column of a prior run's output; -1 if absent
}

// LocatorFunc resolves a Locator for one table. The default heuristics
// can be swapped out in tests or for exotic layouts.
type LocatorFunc func(headers []string) Locator

var identityHeaders = []string{"id", "no. item", "no item", "item id", "identity", "code", "key"}
var titleHeaders = []string{"title", "name", "story"}
var descriptionHeaders = []string{"description", "definition", "functional definition", "details"}

// Locate applies the default header heuristics. Identity falls back to
// the first column, title to the second, description to the third, which
// matches the dominant source layout.
func Locate(headers []string) Locator {
	loc := Locator{
		Identity:    matchHeader(headers, identityHeaders, 0),
		Title:       matchHeader(headers, titleHeaders, 1),
		Description: matchHeader(headers, descriptionHeaders, 2),
		ScoreAnchor: -1,
	}
	for i, h := range headers {
		u := strings.ToUpper(h)
		if strings.Contains(u, "SCORE") && strings.Contains(u, "TOTAL") {
			loc.ScoreAnchor = i
			break
		}
	}
	return loc
}

func matchHeader(headers []string, candidates []string, fallback int) int {
	for i, h := range headers {
		lower := strings.ToLower(strings.TrimSpace(h))
		for _, c := range candidates {
			if lower == c {
				return i
			}
		}
	}
	return fallback
}
