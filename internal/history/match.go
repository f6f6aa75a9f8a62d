package history

import (
	"github.com/pmezard/go-difflib/difflib"

	"storyscore/internal/domain"
	"storyscore/internal/identity"
)

// MatchPolicy holds the tier-3 weighting and acceptance threshold. The
// constants have no derived optimum; they are policy, injected from
// config rather than baked in.
type MatchPolicy struct {
	TitleWeight       float64
	DescriptionWeight float64
	Threshold         float64
}

// DefaultMatchPolicy mirrors the values the tool has always shipped with.
func DefaultMatchPolicy() MatchPolicy {
	return MatchPolicy{TitleWeight: 0.6, DescriptionWeight: 0.4, Threshold: 0.70}
}

// FindMatch locates the best previous counterpart of a record, or nil.
// Three tiers, first match wins: exact normalized identity, exact
// normalized title within the group, then weighted title/description
// similarity accepted only at or above the policy threshold.
func (idx *Index) FindMatch(rec domain.Record, policy MatchPolicy) *domain.HistoricalEntry {
	if idx == nil || len(idx.byKey) == 0 {
		return nil
	}

	if key := identity.NormalizeIdentity(rec.Identity, idx.prefix); key != "" {
		if entry, ok := idx.byKey[groupKey{rec.Group, key}]; ok {
			return entry
		}
	}

	candidates := idx.byGroup[rec.Group]
	normTitle := identity.NormalizeTitle(rec.Title)
	if normTitle != "" {
		for _, c := range candidates {
			if c.normTitle == normTitle {
				return c.entry
			}
		}
	}

	normDesc := identity.NormalizeDescription(rec.Description)
	if normTitle == "" && normDesc == "" {
		return nil
	}

	var best *domain.HistoricalEntry
	bestScore := 0.0
	for _, c := range candidates {
		titleSim := 0.0
		if normTitle != "" && c.normTitle != "" {
			titleSim = Similarity(normTitle, c.normTitle)
		}
		descSim := 0.0
		if normDesc != "" && c.normDesc != "" {
			descSim = Similarity(normDesc, c.normDesc)
		}
		combined := policy.TitleWeight*titleSim + policy.DescriptionWeight*descSim
		// Strictly-greater keeps the first candidate reaching the
		// maximum; ties are not re-ranked.
		if combined >= policy.Threshold && combined > bestScore {
			bestScore = combined
			best = c.entry
		}
	}
	return best
}

// Similarity is the character-sequence similarity ratio in [0, 1],
// computed with difflib's SequenceMatcher over individual characters.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	m := difflib.NewMatcher(splitChars(a), splitChars(b))
	return m.Ratio()
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
